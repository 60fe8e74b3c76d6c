// Package canon provides deterministic cleanup rules for noisy scraped and
// service-authored text. All functions are pure and total over strings.
package canon

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var pathSeparators = strings.NewReplacer("/", " ", "\\", " ")

// CollapseDuplicateWords replaces path separators with spaces, collapses
// whitespace runs and removes an immediately repeated whole word
// (case-insensitive), keeping the first occurrence's casing.
// "Tropical/Tropical Edition" becomes "Tropical Edition".
func CollapseDuplicateWords(text string) string {
	words := strings.Fields(pathSeparators.Replace(text))

	out := make([]string, 0, len(words))
	for _, word := range words {
		if len(out) > 0 && strings.EqualFold(out[len(out)-1], word) {
			continue
		}

		out = append(out, word)
	}

	return strings.Join(out, " ")
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// VariantPattern builds a tolerant pattern for a word family: it matches the
// word's base letters in any casing with any combination of combining marks.
// Intended for use with FoldDiacriticVariant.
func VariantPattern(word string) *regexp.Regexp {
	base, _, _ := transform.String(stripMarks, word)

	var b strings.Builder
	b.WriteString("(?i)")

	for _, r := range base {
		b.WriteString(regexp.QuoteMeta(string(r)))
		b.WriteString(`\pM*`)
	}

	return regexp.MustCompile(b.String())
}

// FoldDiacriticVariant rewrites every match of variant to the canonical
// spelling. Matching happens over the decomposed (NFD) form so any mix of
// precomposed and combining-mark input is caught; the result is recomposed to
// NFC. Idempotent: the canonical spelling matches its own variant pattern and
// folds to itself.
func FoldDiacriticVariant(text, canonical string, variant *regexp.Regexp) string {
	decomposed := norm.NFD.String(text)
	folded := variant.ReplaceAllLiteralString(decomposed, norm.NFD.String(canonical))

	return norm.NFC.String(folded)
}

// StripDisallowedCharacters removes every character outside letters, digits,
// space and the given extra punctuation set, then collapses whitespace runs
// and trims the ends.
func StripDisallowedCharacters(text, allowedPunctuation string) string {
	var b strings.Builder

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case strings.ContainsRune(allowedPunctuation, r):
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

var (
	spaceBeforePunct = regexp.MustCompile(`\s+([.,!?])`)
	punctNoSpace     = regexp.MustCompile(`([.,!?])([\p{L}\p{N}])`)
)

// RepairPunctuationSpacing removes whitespace before sentence punctuation,
// inserts a following space where the next character is alphanumeric, and
// strips a single trailing period from the very end of the string.
func RepairPunctuationSpacing(text string) string {
	repaired := spaceBeforePunct.ReplaceAllString(text, "$1")
	repaired = punctNoSpace.ReplaceAllString(repaired, "$1 $2")

	return TrimTrailingPeriod(repaired)
}

// TrimTrailingPeriod strips one period from the very end of the string.
// Internal periods are untouched.
func TrimTrailingPeriod(text string) string {
	return strings.TrimSuffix(text, ".")
}

// CapitalizeSecondToken splits on a hyphen and capitalizes the first letter
// of the second token only. Single-token input is returned unchanged.
// "strawberry-apricot" becomes "strawberry-Apricot".
func CapitalizeSecondToken(text string) string {
	tokens := strings.Split(text, "-")
	if len(tokens) < 2 {
		return text
	}

	tokens[1] = upperFirst(tokens[1])

	return strings.Join(tokens, "-")
}

func upperFirst(s string) string {
	for i, r := range s {
		return s[:i] + string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}

	return s
}

var titleCaser = cases.Title(language.English)

// TitlecaseAllCapsWords converts tokens that are entirely upper-case to
// capitalized form. Mixed-case tokens are preserved verbatim; this is not a
// blanket lowercase.
func TitlecaseAllCapsWords(text string) string {
	words := strings.Fields(text)

	for i, word := range words {
		if isAllCaps(word) {
			words[i] = titleCaser.String(strings.ToLower(word))
		}
	}

	return strings.Join(words, " ")
}

func isAllCaps(word string) bool {
	hasLetter := false

	for _, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}

		hasLetter = true
		if !unicode.IsUpper(r) {
			return false
		}
	}

	return hasLetter
}
