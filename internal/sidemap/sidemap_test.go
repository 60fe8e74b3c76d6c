package sidemap

import (
	"reflect"
	"testing"

	"editiongen/internal/models"
)

func rawSnapshot() models.Snapshot {
	return models.Snapshot{
		Locales: map[string]models.Locale{
			"Austria": {
				Flag:    "AT",
				FlagURL: "https://flags.example/AT.svg",
				Editions: []models.Edition{
					{
						ID:         "summer-edition",
						Name:       "The Summer Edition",
						Flavour:    "Curuba-Elderflower",
						Standfirst: "Tastes like summer",
						Color:      "#f4a21b",
						ImageURL:   "https://img.example/summer.png",
						AltText:    "A can of Summer Edition",
						ProductURL: "https://shop.example/summer",
					},
				},
			},
			"Germany": {
				Flag:    "DE",
				FlagURL: "https://flags.example/DE.svg",
				Editions: []models.Edition{
					{
						ID:         "winter-edition",
						Name:       "The Winter Edition",
						Flavour:    "Pear Cinnamon",
						Color:      "#ffffff",
						ImageURL:   "https://img.example/winter.png",
						AltText:    "A can of Winter Edition",
						ProductURL: "https://shop.example/winter",
					},
					{
						ID:      "red-edition",
						Name:    "Red Edition",
						Flavour: "Watermelon",
						Color:   "#cc0000",
					},
				},
			},
		},
	}
}

func TestExtract_StripsPreservedFields(t *testing.T) {
	snap := rawSnapshot()
	stripped, maps := Extract(snap)

	for key, loc := range stripped.Locales {
		if loc.FlagURL != "" {
			t.Errorf("locale %s kept flag_url %q", key, loc.FlagURL)
		}

		for _, edition := range loc.Editions {
			if edition.Color != "" || edition.ImageURL != "" || edition.AltText != "" || edition.ProductURL != "" {
				t.Errorf("edition %s kept preserved fields: %+v", edition.ID, edition)
			}
		}
	}

	if len(maps.Products) != snap.EditionCount() {
		t.Errorf("product map size = %d, want %d", len(maps.Products), snap.EditionCount())
	}

	if len(maps.Locales) != len(snap.Locales) {
		t.Errorf("locale map size = %d, want %d", len(maps.Locales), len(snap.Locales))
	}

	details := maps.Products["summer-edition"]
	if details.Color != "#f4a21b" || details.ProductURL != "https://shop.example/summer" {
		t.Errorf("unexpected product details: %+v", details)
	}

	if maps.Locales["Austria"].FlagURL != "https://flags.example/AT.svg" {
		t.Errorf("unexpected locale details: %+v", maps.Locales["Austria"])
	}
}

func TestExtract_DoesNotMutateInput(t *testing.T) {
	snap := rawSnapshot()
	Extract(snap)

	if !reflect.DeepEqual(snap, rawSnapshot()) {
		t.Error("input snapshot was modified by Extract")
	}
}

func TestExtract_RoundTrip(t *testing.T) {
	// Free text here is already canonical, so strip is the identity and
	// merging the side-maps back must reconstruct the original exactly.
	snap := rawSnapshot()
	stripped, maps := Extract(snap)

	merged := Merge(stripped, maps)

	if !reflect.DeepEqual(merged, snap) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", merged, snap)
	}
}

func TestExtract_StripsDisallowedText(t *testing.T) {
	snap := models.Snapshot{
		Locales: map[string]models.Locale{
			"Austria": {
				Editions: []models.Edition{
					{ID: "x", Name: "Red\x00 Edition", Flavour: "Berry * Mix"},
				},
			},
		},
	}

	stripped, _ := Extract(snap)

	edition := stripped.Locales["Austria"].Editions[0]
	if edition.Name != "Red Edition" {
		t.Errorf("name = %q, want %q", edition.Name, "Red Edition")
	}

	if edition.Flavour != "Berry Mix" {
		t.Errorf("flavour = %q, want %q", edition.Flavour, "Berry Mix")
	}
}

func TestRehydrate_MergesDetails(t *testing.T) {
	_, maps := Extract(rawSnapshot())

	result := models.NormalizedCatalog{
		"Austria": {
			Flag: "AT",
			Editions: []models.NormalizedEdition{
				{
					ID:                "summer-edition",
					Name:              "The Summer Edition",
					Flavour:           "Curuba-Elderflower",
					FlavorDescription: "Tastes like summer",
				},
			},
		},
	}

	catalog, anomalies := Rehydrate(result, maps)

	if len(anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %+v", anomalies)
	}

	loc := catalog["Austria"]
	if loc.FlagURL != "https://flags.example/AT.svg" {
		t.Errorf("flag_url = %q", loc.FlagURL)
	}

	edition := loc.Editions[0]
	if edition.Color != "#f4a21b" || edition.ImageURL != "https://img.example/summer.png" {
		t.Errorf("preserved fields not merged: %+v", edition)
	}

	if edition.Flavour != "Curuba-Elderflower" {
		t.Errorf("flavour = %q", edition.Flavour)
	}
}

func TestRehydrate_FieldRenamed(t *testing.T) {
	_, maps := Extract(rawSnapshot())

	result := models.NormalizedCatalog{
		"Austria": {
			Editions: []models.NormalizedEdition{
				{
					ID:          "summer-edition",
					Name:        "The Summer Edition",
					Description: "Tastes like summer",
				},
			},
		},
	}

	catalog, anomalies := Rehydrate(result, maps)

	if len(anomalies) != 1 {
		t.Fatalf("anomalies = %+v, want exactly one", anomalies)
	}

	anomaly := anomalies[0]
	if anomaly.Kind != AnomalyFieldRenamed || anomaly.EditionID != "summer-edition" {
		t.Errorf("unexpected anomaly: %+v", anomaly)
	}

	if got := catalog["Austria"].Editions[0].FlavorDescription; got != "Tastes like summer" {
		t.Errorf("flavor_description = %q", got)
	}
}

func TestRehydrate_MissingSideMapEntries(t *testing.T) {
	maps := Maps{
		Products: map[string]ProductDetails{},
		Locales:  map[string]LocaleDetails{},
	}

	result := models.NormalizedCatalog{
		"Atlantis": {
			Editions: []models.NormalizedEdition{
				{ID: "ghost-edition", Name: "Ghost Edition"},
			},
		},
	}

	catalog, anomalies := Rehydrate(result, maps)

	if len(anomalies) != 2 {
		t.Fatalf("anomalies = %+v, want locale and product misses", anomalies)
	}

	kinds := map[AnomalyKind]bool{}
	for _, a := range anomalies {
		kinds[a.Kind] = true
	}

	if !kinds[AnomalyLocaleDetailsMissing] || !kinds[AnomalyProductDetailsMissing] {
		t.Errorf("unexpected anomaly kinds: %+v", anomalies)
	}

	// Best-effort merge still emits the edition.
	if len(catalog["Atlantis"].Editions) != 1 {
		t.Error("edition dropped on side-map miss")
	}
}

func TestRehydrate_CanonicalizesServiceText(t *testing.T) {
	maps := Maps{
		Products: map[string]ProductDetails{"x": {}},
		Locales:  map[string]LocaleDetails{"Brazil": {}},
	}

	result := models.NormalizedCatalog{
		"Brazil": {
			Editions: []models.NormalizedEdition{
				{
					ID:                "x",
					Name:              "AMBER/AMBER Edition",
					Flavour:           "strawberry-apricot",
					FlavorDescription: "Wild Berries , sweet and juicy.",
				},
			},
		},
	}

	catalog, _ := Rehydrate(result, maps)
	edition := catalog["Brazil"].Editions[0]

	if edition.Name != "Amber Edition" {
		t.Errorf("name = %q, want %q", edition.Name, "Amber Edition")
	}

	if edition.Flavour != "strawberry-Apricot" {
		t.Errorf("flavour = %q, want %q", edition.Flavour, "strawberry-Apricot")
	}

	if edition.FlavorDescription != "Wild Berry, sweet and juicy" {
		t.Errorf("flavor_description = %q", edition.FlavorDescription)
	}
}

func TestRehydrate_FoldsDiacriticVariants(t *testing.T) {
	maps := Maps{
		Products: map[string]ProductDetails{"acai": {}},
		Locales:  map[string]LocaleDetails{"Brazil": {}},
	}

	result := models.NormalizedCatalog{
		"Brazil": {
			Editions: []models.NormalizedEdition{
				{ID: "acai", Name: "The ACAI Edition"},
			},
		},
	}

	catalog, _ := Rehydrate(result, maps)

	if got := catalog["Brazil"].Editions[0].Name; got != "The Açaí Edition" {
		t.Errorf("name = %q, want %q", got, "The Açaí Edition")
	}
}
