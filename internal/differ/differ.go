// Package differ compares two raw snapshots and decides whether a run should
// proceed.
package differ

import (
	"fmt"
	"reflect"
	"sort"

	"editiongen/internal/models"
)

// Summary is the structured change report for one comparison. Slices are
// alphabetically sorted by locale key so changelogs are reproducible.
type Summary struct {
	Initial bool     `json:"initial,omitempty"`
	Note    string   `json:"note,omitempty"`
	Updated []string `json:"updated"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// HasChanges reports whether the summary describes any difference.
func (s Summary) HasChanges() bool {
	return s.Initial || len(s.Updated) > 0 || len(s.Added) > 0 || len(s.Removed) > 0
}

// Diff compares the new snapshot against the prior one. A nil prior means
// first run: changed with an initial-release summary. Locales present in both
// snapshots count as updated when their full record content differs
// structurally.
func Diff(current models.Snapshot, prior *models.Snapshot) (bool, Summary) {
	if prior == nil {
		return true, InitialSummary()
	}

	var summary Summary

	for key, loc := range current.Locales {
		old, ok := prior.Locales[key]
		switch {
		case !ok:
			summary.Added = append(summary.Added, key)
		case !reflect.DeepEqual(old, loc):
			summary.Updated = append(summary.Updated, key)
		}
	}

	for key := range prior.Locales {
		if _, ok := current.Locales[key]; !ok {
			summary.Removed = append(summary.Removed, key)
		}
	}

	sort.Strings(summary.Updated)
	sort.Strings(summary.Added)
	sort.Strings(summary.Removed)

	return summary.HasChanges(), summary
}

// InitialSummary is the report for a first run with no prior snapshot.
func InitialSummary() Summary {
	return Summary{
		Initial: true,
		Note:    "First-time generation of all edition data.",
	}
}

// FailOpen is the report used when the prior snapshot could not be read or
// parsed: the run proceeds as changed rather than silently skipping.
func FailOpen(err error) Summary {
	return Summary{
		Note: fmt.Sprintf("Could not compare with previous data due to an error: %v", err),
	}
}
