// Package override applies targeted manual corrections to raw snapshot data
// before any automated processing.
package override

import (
	"regexp"
	"sort"
	"strings"

	"editiongen/internal/models"
)

// Rule is one targeted correction: replace search with replace inside the
// named field of the edition carrying the entity id.
type Rule struct {
	EditionID string `yaml:"edition_id"`
	Field     string `yaml:"field"`
	Search    string `yaml:"search"`
	Replace   string `yaml:"replace"`
}

// Status classifies the outcome of one rule.
type Status string

// Rule outcomes. Skipped rules are surfaced for human review, never raised
// as errors.
const (
	StatusApplied       Status = "applied"
	StatusNotFound      Status = "not found"
	StatusNotApplicable Status = "not applicable"
)

// ReportEntry records the outcome of one rule in table order.
type ReportEntry struct {
	Rule   Rule
	Status Status
	Locale string
}

// Engine applies an ordered rule table to snapshots. Stateless given its
// table, so one engine can serve every run.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine for the given rule table.
func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Apply patches a copy of the snapshot with every matching rule and reports
// an outcome per rule. The input snapshot is not modified. Locales are
// scanned in key order so the first-match rule semantics are deterministic.
func (e *Engine) Apply(snap models.Snapshot) (models.Snapshot, []ReportEntry) {
	patched := snap.Clone()
	report := make([]ReportEntry, 0, len(e.rules))

	keys := make([]string, 0, len(patched.Locales))
	for key := range patched.Locales {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, rule := range e.rules {
		report = append(report, e.applyRule(patched, keys, rule))
	}

	return patched, report
}

func (e *Engine) applyRule(snap models.Snapshot, keys []string, rule Rule) ReportEntry {
	entry := ReportEntry{Rule: rule, Status: StatusNotFound}

	for _, key := range keys {
		loc := snap.Locales[key]

		for i := range loc.Editions {
			edition := &loc.Editions[i]
			if edition.ID != rule.EditionID {
				continue
			}

			// Entity ids are expected unique snapshot-wide; stop at the
			// first match either way.
			entry.Locale = key

			value, known := edition.Field(rule.Field)
			if !known || !strings.Contains(strings.ToLower(value), strings.ToLower(rule.Search)) {
				entry.Status = StatusNotApplicable

				return entry
			}

			edition.SetField(rule.Field, replace(value, rule.Search, rule.Replace))
			entry.Status = StatusApplied

			return entry
		}
	}

	return entry
}

// replace keeps the original engine's casing policy: an already lower-case
// search string gets a case-sensitive substring replacement, anything else a
// case-insensitive one.
func replace(value, search, replacement string) string {
	if search == strings.ToLower(search) {
		return strings.ReplaceAll(value, search, replacement)
	}

	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(search))

	return pattern.ReplaceAllLiteralString(value, replacement)
}
