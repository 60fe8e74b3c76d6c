package canon

import (
	"strings"
	"unicode"
)

// DefaultVocabulary unifies word forms the normalization service is known to
// waver on, mostly plural fruit names in flavour text.
var DefaultVocabulary = map[string]string{
	"berries":      "Berry",
	"blueberries":  "Blueberry",
	"cherries":     "Cherry",
	"cranberries":  "Cranberry",
	"raspberries":  "Raspberry",
	"strawberries": "Strawberry",
	"grapefruits":  "Grapefruit",
	"apricots":     "Apricot",
	"peaches":      "Peach",
}

// NormalizeVocabulary replaces whole words that appear in the vocabulary
// (matched case-insensitively, ignoring attached punctuation) with their
// canonical form. Words not listed are preserved verbatim.
func NormalizeVocabulary(text string, vocabulary map[string]string) string {
	words := strings.Fields(text)

	for i, word := range words {
		core := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if core == "" {
			continue
		}

		if canonical, ok := vocabulary[strings.ToLower(core)]; ok {
			idx := strings.Index(word, core)
			words[i] = word[:idx] + canonical + word[idx+len(core):]
		}
	}

	return strings.Join(words, " ")
}
