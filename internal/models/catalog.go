// Package models defines the catalog document shapes shared across the worker.
package models

// Snapshot is one full fetch cycle: every locale keyed by its display name.
// Snapshots are replaced wholesale between cycles, never patched in place.
type Snapshot struct {
	Locales map[string]Locale `json:"raw_data_by_locale"`
}

// Locale is a country/region slice of the catalog.
type Locale struct {
	Flag     string    `json:"flag"`
	Editions []Edition `json:"editions"`
	FlagURL  string    `json:"flag_url,omitempty"`
}

// Edition is one product variant. ID is stable across locales and runs and is
// the join key for every side-map.
type Edition struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Flavour    string `json:"flavour,omitempty"`
	Standfirst string `json:"standfirst,omitempty"`
	Color      string `json:"color,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	AltText    string `json:"alt_text,omitempty"`
	ProductURL string `json:"product_url,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Locales: make(map[string]Locale, len(s.Locales))}

	for key, loc := range s.Locales {
		editions := make([]Edition, len(loc.Editions))
		copy(editions, loc.Editions)
		loc.Editions = editions
		out.Locales[key] = loc
	}

	return out
}

// EditionCount returns the total number of editions across all locales.
func (s Snapshot) EditionCount() int {
	total := 0
	for _, loc := range s.Locales {
		total += len(loc.Editions)
	}

	return total
}

// Field returns the named free-text field of an edition. The second return
// value reports whether the field name is known.
func (e *Edition) Field(name string) (string, bool) {
	switch name {
	case "name":
		return e.Name, true
	case "flavour":
		return e.Flavour, true
	case "standfirst":
		return e.Standfirst, true
	}

	return "", false
}

// SetField assigns the named free-text field of an edition.
func (e *Edition) SetField(name, value string) bool {
	switch name {
	case "name":
		e.Name = value
	case "flavour":
		e.Flavour = value
	case "standfirst":
		e.Standfirst = value
	default:
		return false
	}

	return true
}

// NormalizedCatalog is the document shape returned by the normalization
// service: locale key to normalized locale content.
type NormalizedCatalog map[string]NormalizedLocale

// NormalizedLocale holds the service-normalized editions for one locale.
type NormalizedLocale struct {
	Flag     string              `json:"flag,omitempty"`
	Editions []NormalizedEdition `json:"editions"`
}

// NormalizedEdition carries the service-authored free-text fields. The
// service occasionally emits "description" where "flavor_description" is
// expected; both are decoded so rehydration can repair the drift.
type NormalizedEdition struct {
	ID                string `json:"id"`
	Name              string `json:"name,omitempty"`
	Flavour           string `json:"flavour,omitempty"`
	FlavorDescription string `json:"flavor_description,omitempty"`
	Description       string `json:"description,omitempty"`
}

// Catalog is the final durable artifact: normalized content merged with the
// preserved fields the service was never shown.
type Catalog map[string]CatalogLocale

// CatalogLocale is one locale of the final catalog.
type CatalogLocale struct {
	Flag     string           `json:"flag,omitempty"`
	Editions []CatalogEdition `json:"editions"`
	FlagURL  string           `json:"flag_url,omitempty"`
}

// CatalogEdition is one edition of the final catalog. The entity id is
// consumed during rehydration and does not appear in the output document.
type CatalogEdition struct {
	Name              string `json:"name,omitempty"`
	Flavour           string `json:"flavour,omitempty"`
	FlavorDescription string `json:"flavor_description,omitempty"`
	Color             string `json:"color,omitempty"`
	ImageURL          string `json:"image_url,omitempty"`
	AltText           string `json:"alt_text,omitempty"`
	ProductURL        string `json:"product_url,omitempty"`
}
