package catalog

import (
	"fmt"
	"math"
	"strings"
)

// MaxReasonablePrice is the domain ceiling for a single grocery item.
// Prices above it are presumed scrape errors rather than legitimate values.
const MaxReasonablePrice = 1000.0

// Validate checks a normalized product record before it is persisted or
// indexed. It returns false together with a human-readable reason when the
// record must be dropped.
func Validate(name string, price float64) (bool, string) {
	if strings.TrimSpace(name) == "" {
		return false, "empty product name"
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return false, "price is not a finite number"
	}
	if price <= 0 {
		return false, fmt.Sprintf("non-positive price: %g", price)
	}
	if price > MaxReasonablePrice {
		return false, fmt.Sprintf("price %g exceeds ceiling %g", price, MaxReasonablePrice)
	}
	return true, ""
}
