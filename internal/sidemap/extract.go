// Package sidemap carries preserved fields across the external normalization
// boundary: extraction strips them into lookup maps before the call, and
// rehydration merges them back afterwards.
package sidemap

import (
	"editiongen/internal/canon"
	"editiongen/internal/models"
)

// OutboundPunctuation is the punctuation allowed to cross the service
// boundary inside free-text fields.
const OutboundPunctuation = "-'&.,!?"

// ProductDetails holds the preserved per-edition fields, keyed by entity id.
type ProductDetails struct {
	Color      string `json:"color,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	AltText    string `json:"alt_text,omitempty"`
	ProductURL string `json:"product_url,omitempty"`
}

// LocaleDetails holds the preserved per-locale fields, keyed by locale key.
type LocaleDetails struct {
	FlagURL string `json:"flag_url,omitempty"`
}

// Maps is the side-map pair bridging extraction and rehydration. Built once
// per run right before the external call and consumed exactly once after it;
// passed by value, never persisted.
type Maps struct {
	Products map[string]ProductDetails
	Locales  map[string]LocaleDetails
}

// Extract partitions the snapshot into the reduced payload the normalization
// service needs and the side-maps holding everything removed. Free-text
// fields in the payload are passed through the disallowed-character stripper.
// The input snapshot is not modified.
func Extract(snap models.Snapshot) (models.Snapshot, Maps) {
	maps := Maps{
		Products: make(map[string]ProductDetails, snap.EditionCount()),
		Locales:  make(map[string]LocaleDetails, len(snap.Locales)),
	}

	stripped := snap.Clone()

	for key, loc := range stripped.Locales {
		maps.Locales[key] = LocaleDetails{FlagURL: loc.FlagURL}
		loc.FlagURL = ""

		for i := range loc.Editions {
			edition := &loc.Editions[i]

			maps.Products[edition.ID] = ProductDetails{
				Color:      edition.Color,
				ImageURL:   edition.ImageURL,
				AltText:    edition.AltText,
				ProductURL: edition.ProductURL,
			}

			edition.Color = ""
			edition.ImageURL = ""
			edition.AltText = ""
			edition.ProductURL = ""

			edition.Name = canon.StripDisallowedCharacters(edition.Name, OutboundPunctuation)
			edition.Flavour = canon.StripDisallowedCharacters(edition.Flavour, OutboundPunctuation)
			edition.Standfirst = canon.StripDisallowedCharacters(edition.Standfirst, OutboundPunctuation)
		}

		stripped.Locales[key] = loc
	}

	return stripped, maps
}

// Merge reverses Extract on a stripped payload by restoring the preserved
// fields from the side-maps. Used to verify the extraction round trip.
func Merge(stripped models.Snapshot, maps Maps) models.Snapshot {
	merged := stripped.Clone()

	for key, loc := range merged.Locales {
		if details, ok := maps.Locales[key]; ok {
			loc.FlagURL = details.FlagURL
		}

		for i := range loc.Editions {
			edition := &loc.Editions[i]

			if details, ok := maps.Products[edition.ID]; ok {
				edition.Color = details.Color
				edition.ImageURL = details.ImageURL
				edition.AltText = details.AltText
				edition.ProductURL = details.ProductURL
			}
		}

		merged.Locales[key] = loc
	}

	return merged
}
