package catalog

import (
	"strings"
	"testing"
)

func containsTerm(terms []string, want string) bool {
	for _, term := range terms {
		if term == want {
			return true
		}
	}
	return false
}

func TestExpander_IncludesTermItself(t *testing.T) {
	e := NewExpander()

	variants := e.Run("חלב")
	if !containsTerm(variants, "חלב") {
		t.Errorf("Expansion must include the term itself, got %v", variants)
	}
}

func TestExpander_UnitSynonyms(t *testing.T) {
	e := NewExpander()

	variants := e.Run("גרם")
	for _, want := range []string{"גרם", "גר", "ג"} {
		if !containsTerm(variants, want) {
			t.Errorf("Expected unit co-synonym %q in %v", want, variants)
		}
	}
}

func TestExpander_CategorySynonyms(t *testing.T) {
	e := NewExpander()

	variants := e.Run("בשר")
	for _, want := range []string{"אנטריקוט", "סינטה", "פילה"} {
		if !containsTerm(variants, want) {
			t.Errorf("Expected category sibling %q in %v", want, variants)
		}
	}
}

func TestExpander_FeminineSuffixSwap(t *testing.T) {
	e := NewExpander()

	// A feminine form should expand to its masculine and plural variants.
	variants := e.Run("לבנה")
	if !containsTerm(variants, "לבן") {
		t.Errorf("Expected masculine variant in %v", variants)
	}
	if !containsTerm(variants, "לבנים") {
		t.Errorf("Expected plural variant in %v", variants)
	}
}

func TestExpander_FinalLetterSuffixing(t *testing.T) {
	e := NewExpander()

	// A masculine form ending in a final letter must medialize it before
	// suffixing: "לבן" gains "לבנה", not "לבןה".
	variants := e.Run("לבן")
	if !containsTerm(variants, "לבנה") {
		t.Errorf("Expected feminine variant in %v", variants)
	}
	if !containsTerm(variants, "לבנים") {
		t.Errorf("Expected plural variant in %v", variants)
	}
	if containsTerm(variants, "לבןה") || containsTerm(variants, "לבןים") {
		t.Errorf("Final letter must not appear mid-word, got %v", variants)
	}
}

func TestExpander_BuildQueryUnionsVariants(t *testing.T) {
	e := NewExpander()

	query := e.BuildQuery("בשר טחון")
	for _, want := range []string{"בשר", "אנטריקוט", "סינטה", "טחון"} {
		if !containsTerm(strings.Fields(query), want) {
			t.Errorf("Expected %q in index query %q", want, query)
		}
	}
}

func TestExpander_ShortTermsNotMangled(t *testing.T) {
	e := NewExpander()

	variants := e.Run("גת")
	if len(variants) != 1 || variants[0] != "גת" {
		t.Errorf("Terms under three runes must not get suffix variants, got %v", variants)
	}
}

func TestExpander_EmptyTerm(t *testing.T) {
	e := NewExpander()

	if variants := e.Run("  "); variants != nil {
		t.Errorf("Expected nil for blank term, got %v", variants)
	}
}

func TestExpander_MatchesQuery_AndAcrossTokens(t *testing.T) {
	e := NewExpander()

	// Both tokens must match; each may match through any of its variants.
	if !e.MatchesQuery("גבינה לבנה תנובה", "גבינה לבן") {
		t.Error("Expected match: both tokens present via variants")
	}

	if e.MatchesQuery("גבינה צהובה", "גבינה לבן") {
		t.Error("Expected no match: second token absent")
	}

	if e.MatchesQuery("שום דבר", "") {
		t.Error("Empty query must not match")
	}
}
