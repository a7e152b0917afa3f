package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Resolution is the outcome of evaluating a promotion text for a given
// quantity. Totals are kept unrounded; presentation layers round to two
// decimals so rounding error never compounds across multi-item totals.
type Resolution struct {
	Total         float64
	OriginalTotal float64
	Applied       bool
	DisplayName   string
}

// PromoResolver parses free-text promotion descriptions into priceable
// clauses and computes the minimum achievable total. The grammar is
// heuristic; the clause shapes and their precedence (second-unit before the
// generic N-for form) follow the promotion texts observed in retailer feeds.
type PromoResolver struct{}

var (
	// "יחידה שנייה ב-9.90" and spelling variants. A stray "%" sometimes
	// precedes the price token in feeds and is discarded.
	secondUnitRe = regexp.MustCompile(`ה?שניי?ה?\s+ב-?\s*%?\s*₪?\s*(\d+(?:[.,]\d+)?)\s*₪?`)

	// "3 ב-20", "2 יח' ב 25 ₪".
	nForRe = regexp.MustCompile(`(\d+)\s*(?:יח'?|יחידות)?\s+ב-?\s*%?\s*₪?\s*(\d+(?:[.,]\d+)?)\s*₪?`)

	// Bare "ב-5.90" override, used only when the clause carries no quantity.
	bareForRe = regexp.MustCompile(`ב-?\s*%?\s*₪?\s*(\d+(?:[.,]\d+)?)\s*₪?`)
)

func NewPromoResolver() *PromoResolver {
	return &PromoResolver{}
}

// Resolve evaluates every `|`-separated clause of promoText independently and
// returns the cheapest total for the requested quantity. The unmodified price
// always competes; a promotion that does not beat it is reported as not
// applied.
func (r *PromoResolver) Resolve(unitPrice float64, promoText string, quantity int) Resolution {
	if quantity < 1 {
		quantity = 1
	}
	original := unitPrice * float64(quantity)

	best := Resolution{
		Total:         original,
		OriginalTotal: original,
	}

	for _, clause := range strings.Split(promoText, "|") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		total, name, ok := r.resolveClause(unitPrice, clause, quantity)
		if !ok {
			continue
		}
		if total < best.Total {
			best.Total = total
			best.Applied = true
			best.DisplayName = name
		}
	}

	return best
}

// resolveClause computes the total one clause yields at the given quantity.
// Precedence: second-unit pair pricing, then grouped N-for pricing, then the
// bare per-unit override.
func (r *PromoResolver) resolveClause(unitPrice float64, clause string, quantity int) (float64, string, bool) {
	if loc := secondUnitRe.FindStringSubmatchIndex(clause); loc != nil {
		price, err := parsePrice(clause[loc[2]:loc[3]])
		if err != nil {
			return 0, "", false
		}
		pairs := quantity / 2
		remainder := quantity % 2
		total := float64(pairs)*(unitPrice+price) + float64(remainder)*unitPrice
		return total, displayName(clause, loc[0], loc[1]), true
	}

	if loc := nForRe.FindStringSubmatchIndex(clause); loc != nil {
		n, err := strconv.Atoi(clause[loc[2]:loc[3]])
		if err != nil || n < 1 {
			return 0, "", false
		}
		price, err := parsePrice(clause[loc[4]:loc[5]])
		if err != nil {
			return 0, "", false
		}
		groups := quantity / n
		remainder := quantity % n
		total := float64(groups)*price + float64(remainder)*unitPrice
		return total, displayName(clause, loc[0], loc[1]), true
	}

	if loc := bareForRe.FindStringSubmatchIndex(clause); loc != nil {
		price, err := parsePrice(clause[loc[2]:loc[3]])
		if err != nil {
			return 0, "", false
		}
		total := price * float64(quantity)
		return total, displayName(clause, loc[0], loc[1]), true
	}

	return 0, "", false
}

// displayName strips the matched price/quantity fragment out of the clause so
// the remaining text reads as a human description of the promotion.
func displayName(clause string, start, end int) string {
	name := strings.TrimSpace(clause[:start] + " " + clause[end:])
	name = strings.Trim(name, "-, ")
	if name == "" {
		return clause
	}
	return name
}

func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

// Round2 rounds a currency amount to two decimals for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
