package catalog

import (
	"sort"
	"strings"
)

// Expander widens a single search token into its linguistic, unit, and
// category variants. A multi-token query matches when every token matches
// through at least one of its own variants (AND across tokens, OR across each
// token's expansion).
type Expander struct {
	unitGroups map[string][]string
}

// unitSynonymGroups are co-synonyms expanded together: a query for any member
// should match products labeled with any other member.
var unitSynonymGroups = [][]string{
	{"גרם", "גר", "ג"},
	{"קילוגרם", "קילו", "קג"},
	{"ליטר", "לטר"},
	{"מיליליטר", "מל"},
	{"יחידות", "יח"},
}

// categorySynonyms map a general query term to the concrete names retailers
// use. A shopper searching the general term expects all of them.
var categorySynonyms = map[string][]string{
	"בשר":  {"אנטריקוט", "סינטה", "פילה", "כתף", "צלעות", "טחון"},
	"עוף":  {"חזה", "שניצל", "כרעיים", "פרגית", "שוקיים"},
	"גבינה": {"צהובה", "גאודה", "מוצרלה", "בולגרית", "קוטג"},
	"דג":   {"סלמון", "אמנון", "טונה", "מושט"},
}

func NewExpander() *Expander {
	groups := make(map[string][]string)
	for _, group := range unitSynonymGroups {
		for _, member := range group {
			groups[member] = group
		}
	}
	return &Expander{unitGroups: groups}
}

// Run expands a single search token. The returned slice always contains the
// term itself and is sorted for deterministic output.
func (e *Expander) Run(term string) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	variants := map[string]bool{term: true}

	if group, ok := e.unitGroups[term]; ok {
		for _, member := range group {
			variants[member] = true
		}
	}

	if siblings, ok := categorySynonyms[term]; ok {
		for _, sibling := range siblings {
			variants[sibling] = true
		}
	}

	for _, v := range suffixVariants(term) {
		variants[v] = true
	}

	out := make([]string, 0, len(variants))
	for v := range variants {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Hebrew letters with a word-final form. A stripped base ending in a medial
// letter must be finalized to spell a real word, and a final letter must be
// medialized before a suffix is appended.
var finalToMedial = map[rune]rune{'ך': 'כ', 'ם': 'מ', 'ן': 'נ', 'ף': 'פ', 'ץ': 'צ'}
var medialToFinal = map[rune]rune{'כ': 'ך', 'מ': 'ם', 'נ': 'ן', 'פ': 'ף', 'צ': 'ץ'}

// finalizeLast rewrites the last letter into its word-final form, so a base
// stripped of its suffix ("לבנה" -> "לבנ") becomes the standalone word "לבן".
func finalizeLast(base string) string {
	runes := []rune(base)
	if f, ok := medialToFinal[runes[len(runes)-1]]; ok {
		runes[len(runes)-1] = f
	}
	return string(runes)
}

// medializeLast rewrites a word-final last letter into its medial form before
// a suffix is appended ("לבן" -> "לבנ" -> "לבנה").
func medializeLast(term string) string {
	runes := []rune(term)
	if m, ok := finalToMedial[runes[len(runes)-1]]; ok {
		runes[len(runes)-1] = m
	}
	return string(runes)
}

// suffixVariants swaps Hebrew gender/number endings so a feminine or plural
// spelling still matches its counterparts. Applied only to terms of at least
// three runes to avoid mangling short words.
func suffixVariants(term string) []string {
	runes := []rune(term)
	if len(runes) < 3 {
		return nil
	}

	var out []string
	switch {
	case strings.HasSuffix(term, "ות"):
		base := string(runes[:len(runes)-2])
		out = append(out, finalizeLast(base), base+"ה", base+"ים")
	case strings.HasSuffix(term, "ים"):
		base := string(runes[:len(runes)-2])
		out = append(out, finalizeLast(base), base+"ה", base+"ות")
	case strings.HasSuffix(term, "ה"):
		base := string(runes[:len(runes)-1])
		out = append(out, finalizeLast(base), base+"ים", base+"ות")
	default:
		stem := medializeLast(term)
		out = append(out, stem+"ה", stem+"ים", stem+"ות")
	}
	return out
}

// BuildQuery widens an item name into the search string sent to the index:
// the union of every token's variants. Without this a category query could
// never retrieve a product named only by a concrete sibling term.
func (e *Expander) BuildQuery(itemName string) string {
	seen := make(map[string]bool)
	var words []string
	for _, token := range strings.Fields(itemName) {
		for _, variant := range e.Run(token) {
			if !seen[variant] {
				seen[variant] = true
				words = append(words, variant)
			}
		}
	}
	return strings.Join(words, " ")
}

// MatchesQuery reports whether a standardized product name satisfies the
// query: every query token must be present via at least one of its variants.
func (e *Expander) MatchesQuery(name string, query string) bool {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return false
	}

	for _, token := range tokens {
		matched := false
		for _, variant := range e.Run(token) {
			if strings.Contains(name, variant) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
