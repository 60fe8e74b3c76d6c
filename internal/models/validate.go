package models

import (
	"errors"
	"sort"
)

// Snapshot validation errors.
var (
	ErrNoLocales          = errors.New("snapshot contains no locales")
	ErrNoEditions         = errors.New("locale contains no editions")
	ErrMissingEditionID   = errors.New("edition missing entity id")
	ErrDuplicateEditionID = errors.New("duplicate entity id within locale")
)

// Issue describes a per-item validation problem. Issues are recoverable:
// the pipeline logs them and keeps processing the remaining items.
type Issue struct {
	Err       error
	LocaleKey string
	EditionID string
	Index     int
}

// Validate checks snapshot invariants and returns one issue per violation,
// ordered by locale key. An empty snapshot yields a single ErrNoLocales issue.
func (s Snapshot) Validate() []Issue {
	if len(s.Locales) == 0 {
		return []Issue{{Err: ErrNoLocales}}
	}

	keys := make([]string, 0, len(s.Locales))
	for key := range s.Locales {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var issues []Issue

	for _, key := range keys {
		loc := s.Locales[key]
		if len(loc.Editions) == 0 {
			issues = append(issues, Issue{Err: ErrNoEditions, LocaleKey: key})

			continue
		}

		seen := make(map[string]bool, len(loc.Editions))

		for i, edition := range loc.Editions {
			if edition.ID == "" {
				issues = append(issues, Issue{Err: ErrMissingEditionID, LocaleKey: key, Index: i})

				continue
			}

			if seen[edition.ID] {
				issues = append(issues, Issue{
					Err:       ErrDuplicateEditionID,
					LocaleKey: key,
					EditionID: edition.ID,
					Index:     i,
				})
			}

			seen[edition.ID] = true
		}
	}

	return issues
}
