package canon

import "testing"

func TestCollapseDuplicateWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"path separator duplicate", "Tropical/Tropical Edition", "Tropical Edition"},
		{"case insensitive duplicate", "TROPICAL tropical Edition", "TROPICAL Edition"},
		{"backslash separator", "Summer\\Summer Edition", "Summer Edition"},
		{"no duplicates", "Red Edition", "Red Edition"},
		{"whitespace runs", "  Blue   Edition ", "Blue Edition"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CollapseDuplicateWords(tt.input); got != tt.want {
				t.Errorf("CollapseDuplicateWords(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCollapseDuplicateWords_Idempotent(t *testing.T) {
	inputs := []string{"Tropical/Tropical Edition", "a a a b", "Winter Edition", ""}

	for _, input := range inputs {
		once := CollapseDuplicateWords(input)
		twice := CollapseDuplicateWords(once)

		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestFoldDiacriticVariant(t *testing.T) {
	pattern := VariantPattern("Açaí")

	tests := []struct {
		input string
		want  string
	}{
		{"AÇAI", "Açaí"},
		{"açaí", "Açaí"},
		{"acai", "Açaí"},
		{"Açai Berry", "Açaí Berry"},
		{"no match here", "no match here"},
	}

	for _, tt := range tests {
		if got := FoldDiacriticVariant(tt.input, "Açaí", pattern); got != tt.want {
			t.Errorf("FoldDiacriticVariant(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFoldDiacriticVariant_Idempotent(t *testing.T) {
	pattern := VariantPattern("Açaí")

	for _, input := range []string{"AÇAI", "açaí", "acai", "The Açaí Edition"} {
		once := FoldDiacriticVariant(input, "Açaí", pattern)
		twice := FoldDiacriticVariant(once, "Açaí", pattern)

		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestStripDisallowedCharacters(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		allowed string
		want    string
	}{
		{"control characters", "Red\x00 Bull​", "", "Red Bull"},
		{"keeps accents", "Açaí Edition", "", "Açaí Edition"},
		{"allowed punctuation", "Berry-Mix!", "-!", "Berry-Mix!"},
		{"disallowed punctuation", "Berry*Mix#", "", "BerryMix"},
		{"collapses whitespace", " a \t b\n c ", "", "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripDisallowedCharacters(tt.input, tt.allowed); got != tt.want {
				t.Errorf("StripDisallowedCharacters(%q, %q) = %q, want %q", tt.input, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestRepairPunctuationSpacing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"space before comma", "Sweet , fruity", "Sweet, fruity"},
		{"missing space after period", "Sweet.Fruity", "Sweet. Fruity"},
		{"no space before non-alnum", "Sweet. (fruity)", "Sweet. (fruity)"},
		{"trailing period stripped", "A refreshing taste.", "A refreshing taste"},
		{"internal periods kept", "Approx. 250 ml. of taste", "Approx. 250 ml. of taste"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairPunctuationSpacing(tt.input); got != tt.want {
				t.Errorf("RepairPunctuationSpacing(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCapitalizeSecondToken(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"strawberry-apricot", "strawberry-Apricot"},
		{"single", "single"},
		{"a-b-c", "a-B-c"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CapitalizeSecondToken(tt.input); got != tt.want {
			t.Errorf("CapitalizeSecondToken(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTitlecaseAllCapsWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"all caps word", "OCEAN Blast", "Ocean Blast"},
		{"mixed case preserved", "McIntosh Apple", "McIntosh Apple"},
		{"lowercase preserved", "juicy peach", "juicy peach"},
		{"multiple caps words", "THE SUMMER Edition", "The Summer Edition"},
		{"digits only token", "250 ML", "250 Ml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitlecaseAllCapsWords(tt.input); got != tt.want {
				t.Errorf("TitlecaseAllCapsWords(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeVocabulary(t *testing.T) {
	got := NormalizeVocabulary("Wild Berries and cream", DefaultVocabulary)
	if got != "Wild Berry and cream" {
		t.Errorf("NormalizeVocabulary = %q, want %q", got, "Wild Berry and cream")
	}

	got = NormalizeVocabulary("Unlisted words stay", DefaultVocabulary)
	if got != "Unlisted words stay" {
		t.Errorf("NormalizeVocabulary changed unlisted words: %q", got)
	}

	got = NormalizeVocabulary("Berries, sweet and juicy", DefaultVocabulary)
	if got != "Berry, sweet and juicy" {
		t.Errorf("NormalizeVocabulary with attached punctuation = %q", got)
	}
}
