package catalog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Standardizer turns inconsistent retailer product names into a canonical
// display form. The pipeline is a pure function of its input: marketing noise
// is stripped, unit spellings are canonicalized, a single known brand token is
// pulled out and re-appended at the end, and duplicated packaging fragments
// (the same number+unit pair repeated) are collapsed.
type Standardizer struct {
	brands []string
}

// marketingTokens are dropped outright. Retailers decorate names with sale
// markers that carry no product identity.
var marketingTokens = map[string]bool{
	"מבצע":   true,
	"במבצע":  true,
	"חדש":    true,
	"חדשה":   true,
	"בלעדי":  true,
	"בלעדית": true,
	"מוזל":   true,
	"מוזלת":  true,
}

// unitCanonical maps every observed unit spelling to its short form. Matching
// is done per token, never inside a word, so spellings that happen to be a
// substring of an unrelated Hebrew word are safe.
var unitCanonical = map[string]string{
	"גרם":      "גר",
	"גר'":      "גר",
	"ג'":       "גר",
	"גר":       "גר",
	"קילוגרם":  "קג",
	"קילו":     "קג",
	"ק\"ג":     "קג",
	"קג":       "קג",
	"ליטר":     "ליטר",
	"לטר":      "ליטר",
	"מיליליטר": "מל",
	"מ\"ל":     "מל",
	"מל":       "מל",
	"יחידות":   "יח",
	"יח'":      "יח",
	"יח":       "יח",
}

// knownBrands is the fixed brand vocabulary. Multi-word brands are matched
// before their single-word prefixes (longest first).
var knownBrands = []string{
	"קוקה קולה",
	"מאמא עוף",
	"עוף טוב",
	"תנובה",
	"שטראוס",
	"אסם",
	"עלית",
	"תלמה",
	"יטבתה",
	"זוגלובק",
	"סוגת",
	"ויסוצקי",
	"פריגת",
	"טרה",
	"שופרסל",
	"עמק",
}

var punctuationRe = regexp.MustCompile(`[()\[\]!]+`)

// numberWithUnitRe matches a fused quantity token such as "100גרם".
var numberWithUnitRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)(\D+)$`)

func NewStandardizer() *Standardizer {
	brands := make([]string, len(knownBrands))
	copy(brands, knownBrands)
	sort.Slice(brands, func(i, j int) bool {
		return len(brands[i]) > len(brands[j])
	})
	return &Standardizer{brands: brands}
}

// Run standardizes a single product name. Same input always yields the same
// output, and the transformation is idempotent.
func (s *Standardizer) Run(name string) string {
	cleaned := punctuationRe.ReplaceAllString(name, " ")

	tokens := make([]string, 0, 8)
	for _, tok := range strings.Fields(cleaned) {
		if marketingTokens[tok] {
			continue
		}
		tokens = append(tokens, canonicalizeUnitToken(tok))
	}

	tokens, brand := s.extractBrand(tokens)
	tokens = dedupeTokens(tokens)

	if brand != "" {
		tokens = append(tokens, brand)
	}

	return strings.Join(tokens, " ")
}

// canonicalizeUnitToken rewrites unit spellings to their canonical short form.
// Fused tokens like "400גרם" are split into "400גר" keeping the number intact.
func canonicalizeUnitToken(tok string) string {
	if canon, ok := unitCanonical[tok]; ok {
		return canon
	}
	if m := numberWithUnitRe.FindStringSubmatch(tok); m != nil {
		if canon, ok := unitCanonical[m[2]]; ok {
			return m[1] + canon
		}
	}
	return tok
}

// extractBrand removes every occurrence of the first (longest) known brand
// found in the token stream and returns the remaining tokens plus the brand.
// Removing all occurrences keeps the pipeline idempotent when the brand is
// re-appended at the end.
func (s *Standardizer) extractBrand(tokens []string) ([]string, string) {
	for _, brand := range s.brands {
		brandTokens := strings.Fields(brand)
		idx := indexOfSubsequence(tokens, brandTokens)
		if idx < 0 {
			continue
		}
		out := tokens
		for idx >= 0 {
			trimmed := make([]string, 0, len(out)-len(brandTokens))
			trimmed = append(trimmed, out[:idx]...)
			trimmed = append(trimmed, out[idx+len(brandTokens):]...)
			out = trimmed
			idx = indexOfSubsequence(out, brandTokens)
		}
		return out, brand
	}
	return tokens, ""
}

func indexOfSubsequence(tokens, sub []string) int {
	if len(sub) == 0 || len(sub) > len(tokens) {
		return -1
	}
	for i := 0; i+len(sub) <= len(tokens); i++ {
		match := true
		for j := range sub {
			if tokens[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// dedupeTokens rebuilds the token stream keeping the first number+unit pairing
// observed for each distinct unit. Feeds commonly repeat packaging metadata,
// e.g. a net weight stated twice or restated per 100g. Plain repeated words
// are also collapsed.
func dedupeTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seenWords := make(map[string]bool)
	seenUnits := make(map[string]bool)

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		// A number followed by a unit token forms one pairing.
		if isNumber(tok) && i+1 < len(tokens) && isUnit(tokens[i+1]) {
			unit := tokens[i+1]
			if seenUnits[unit] {
				i++ // skip the unit token as well
				continue
			}
			seenUnits[unit] = true
			out = append(out, tok, unit)
			i++
			continue
		}

		// A fused number+unit token such as "400גר".
		if num, unit, ok := splitFused(tok); ok {
			if seenUnits[unit] {
				continue
			}
			seenUnits[unit] = true
			out = append(out, num+unit)
			continue
		}

		if seenWords[tok] {
			continue
		}
		seenWords[tok] = true
		out = append(out, tok)
	}

	return out
}

func isNumber(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

func isUnit(tok string) bool {
	for _, canon := range unitCanonical {
		if tok == canon {
			return true
		}
	}
	return false
}

func splitFused(tok string) (string, string, bool) {
	m := numberWithUnitRe.FindStringSubmatch(tok)
	if m == nil {
		return "", "", false
	}
	if !isUnit(m[2]) {
		return "", "", false
	}
	return m[1], m[2], true
}
