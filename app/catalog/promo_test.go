package catalog

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPromoResolver_NoPromoText(t *testing.T) {
	r := NewPromoResolver()

	res := r.Resolve(10, "", 3)
	if res.Applied {
		t.Error("Expected no promotion applied for empty text")
	}
	if !approxEqual(res.Total, 30) {
		t.Errorf("Expected total 30, got %v", res.Total)
	}
}

func TestPromoResolver_NForPrice(t *testing.T) {
	r := NewPromoResolver()

	cases := []struct {
		quantity int
		total    float64
		applied  bool
	}{
		{1, 10, false}, // group threshold not reached, unit price holds
		{3, 20, true},
		{4, 30, true}, // one group plus one unit at full price
		{6, 40, true},
	}

	for _, c := range cases {
		res := r.Resolve(10, "3 ב-20", c.quantity)
		if !approxEqual(res.Total, c.total) {
			t.Errorf("quantity %d: expected total %v, got %v", c.quantity, c.total, res.Total)
		}
		if res.Applied != c.applied {
			t.Errorf("quantity %d: expected applied=%v, got %v", c.quantity, c.applied, res.Applied)
		}
	}
}

func TestPromoResolver_SecondUnitPrice(t *testing.T) {
	r := NewPromoResolver()

	cases := []struct {
		quantity int
		total    float64
		applied  bool
	}{
		{1, 49.9, false}, // not a pair, no discount
		{2, 51.9, true},
		{3, 101.8, true},
	}

	for _, c := range cases {
		res := r.Resolve(49.9, "יחידה שנייה ב-2", c.quantity)
		if !approxEqual(res.Total, c.total) {
			t.Errorf("quantity %d: expected total %v, got %v", c.quantity, c.total, res.Total)
		}
		if res.Applied != c.applied {
			t.Errorf("quantity %d: expected applied=%v, got %v", c.quantity, c.applied, res.Applied)
		}
	}
}

func TestPromoResolver_BarePriceOverride(t *testing.T) {
	r := NewPromoResolver()

	// No quantity token: every unit is sold at the override price.
	res := r.Resolve(8, "במקום ב-5.90", 3)
	if !res.Applied {
		t.Error("Expected bare price override to apply")
	}
	if !approxEqual(res.Total, 17.7) {
		t.Errorf("Expected total 17.7, got %v", res.Total)
	}
}

func TestPromoResolver_PercentArtifactBeforePrice(t *testing.T) {
	r := NewPromoResolver()

	res := r.Resolve(10, "3 ב- %20", 3)
	if !res.Applied {
		t.Error("Expected promotion despite percent artifact")
	}
	if !approxEqual(res.Total, 20) {
		t.Errorf("Expected total 20, got %v", res.Total)
	}
}

func TestPromoResolver_MultipleClauses_MinimumWins(t *testing.T) {
	r := NewPromoResolver()

	// Second clause is cheaper at quantity 4: two pairs at (10+1) = 22
	// versus one 3-group (25) plus a unit (10) = 35.
	res := r.Resolve(10, "3 ב-25|יחידה שנייה ב-1", 4)
	if !res.Applied {
		t.Error("Expected a promotion to apply")
	}
	if !approxEqual(res.Total, 22) {
		t.Errorf("Expected cheapest clause to win with total 22, got %v", res.Total)
	}
}

func TestPromoResolver_WorsePromoIgnored(t *testing.T) {
	r := NewPromoResolver()

	// The "deal" is more expensive than the shelf price.
	res := r.Resolve(5, "2 ב-30", 2)
	if res.Applied {
		t.Error("Promotion worse than shelf price must not apply")
	}
	if !approxEqual(res.Total, 10) {
		t.Errorf("Expected shelf total 10, got %v", res.Total)
	}
}

func TestPromoResolver_DisplayNameStripsPricing(t *testing.T) {
	r := NewPromoResolver()

	res := r.Resolve(10, "שוקולד פרה 3 ב-20", 3)
	if res.DisplayName != "שוקולד פרה" {
		t.Errorf("Expected display name without pricing fragment, got %q", res.DisplayName)
	}
}

func TestPromoResolver_QuantityFloor(t *testing.T) {
	r := NewPromoResolver()

	res := r.Resolve(10, "", 0)
	if !approxEqual(res.Total, 10) {
		t.Errorf("Quantity below 1 should be treated as 1, got total %v", res.Total)
	}
}
