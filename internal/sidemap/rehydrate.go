package sidemap

import (
	"sort"

	"editiongen/internal/canon"
	"editiongen/internal/models"
)

// AnomalyKind classifies a non-fatal rehydration problem.
type AnomalyKind string

// Rehydration anomalies. All are collected and surfaced, never fatal; the
// merge proceeds best-effort for every other entity.
const (
	AnomalyLocaleDetailsMissing  AnomalyKind = "locale preserved-data missing"
	AnomalyProductDetailsMissing AnomalyKind = "product preserved-data missing"
	AnomalyFieldRenamed          AnomalyKind = "field renamed"
)

// Anomaly records one rehydration irregularity.
type Anomaly struct {
	Kind      AnomalyKind
	LocaleKey string
	EditionID string
	Field     string
}

var acaiPattern = canon.VariantPattern("Açaí")

// Rehydrate merges the service output with the side-maps, repairs known
// field-naming drift and re-applies text canonicalization to the
// service-authored free-text fields. Anomalies come back ordered by locale
// key for reproducible reports.
func Rehydrate(result models.NormalizedCatalog, maps Maps) (models.Catalog, []Anomaly) {
	catalog := make(models.Catalog, len(result))

	var anomalies []Anomaly

	keys := make([]string, 0, len(result))
	for key := range result {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		normalized := result[key]
		loc := models.CatalogLocale{Flag: normalized.Flag}

		if details, ok := maps.Locales[key]; ok {
			loc.FlagURL = details.FlagURL
		} else {
			anomalies = append(anomalies, Anomaly{Kind: AnomalyLocaleDetailsMissing, LocaleKey: key})
		}

		loc.Editions = make([]models.CatalogEdition, 0, len(normalized.Editions))

		for _, edition := range normalized.Editions {
			merged, editionAnomalies := rehydrateEdition(edition, key, maps)
			loc.Editions = append(loc.Editions, merged)
			anomalies = append(anomalies, editionAnomalies...)
		}

		catalog[key] = loc
	}

	return catalog, anomalies
}

func rehydrateEdition(edition models.NormalizedEdition, localeKey string, maps Maps) (models.CatalogEdition, []Anomaly) {
	var anomalies []Anomaly

	// The service sometimes writes "description" where "flavor_description"
	// is expected; rename rather than drop.
	if edition.FlavorDescription == "" && edition.Description != "" {
		edition.FlavorDescription = edition.Description
		edition.Description = ""
		anomalies = append(anomalies, Anomaly{
			Kind:      AnomalyFieldRenamed,
			LocaleKey: localeKey,
			EditionID: edition.ID,
			Field:     "flavor_description",
		})
	}

	merged := models.CatalogEdition{
		Name:              canonicalizeName(edition.Name),
		Flavour:           canonicalizeFlavour(edition.Flavour),
		FlavorDescription: canonicalizeDescription(edition.FlavorDescription),
	}

	if details, ok := maps.Products[edition.ID]; ok {
		merged.Color = details.Color
		merged.ImageURL = details.ImageURL
		merged.AltText = details.AltText
		merged.ProductURL = details.ProductURL
	} else {
		anomalies = append(anomalies, Anomaly{
			Kind:      AnomalyProductDetailsMissing,
			LocaleKey: localeKey,
			EditionID: edition.ID,
		})
	}

	return merged, anomalies
}

// Service-authored text is cleaned in a fixed order: character strip,
// punctuation-spacing repair (which strips one trailing period), controlled
// vocabulary normalization, then field-specific casing rules.

func canonicalizeName(name string) string {
	// Path separators survive the strip so the duplicate-word collapse can
	// see them.
	cleaned := canon.StripDisallowedCharacters(name, OutboundPunctuation+`/\`)
	cleaned = canon.RepairPunctuationSpacing(cleaned)
	cleaned = canon.CollapseDuplicateWords(cleaned)
	cleaned = canon.FoldDiacriticVariant(cleaned, "Açaí", acaiPattern)

	return canon.TitlecaseAllCapsWords(cleaned)
}

func canonicalizeFlavour(flavour string) string {
	cleaned := canon.StripDisallowedCharacters(flavour, OutboundPunctuation)
	cleaned = canon.RepairPunctuationSpacing(cleaned)
	cleaned = canon.NormalizeVocabulary(cleaned, canon.DefaultVocabulary)

	return canon.CapitalizeSecondToken(cleaned)
}

func canonicalizeDescription(description string) string {
	cleaned := canon.StripDisallowedCharacters(description, OutboundPunctuation)
	cleaned = canon.RepairPunctuationSpacing(cleaned)

	return canon.NormalizeVocabulary(cleaned, canon.DefaultVocabulary)
}
