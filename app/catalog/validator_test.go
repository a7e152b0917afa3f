package catalog

import (
	"math"
	"testing"
)

func TestValidate_ValidProduct(t *testing.T) {
	ok, reason := Validate("חלב תנובה 3%", 6.9)
	if !ok {
		t.Errorf("Expected valid product, got rejection: %s", reason)
	}
	if reason != "" {
		t.Errorf("Expected empty reason for valid product, got: %s", reason)
	}
}

func TestValidate_EmptyName(t *testing.T) {
	ok, reason := Validate("   ", 10)
	if ok {
		t.Error("Expected rejection for blank name")
	}
	if reason == "" {
		t.Error("Expected a rejection reason")
	}
}

func TestValidate_PriceBounds(t *testing.T) {
	cases := []struct {
		name  string
		price float64
		valid bool
	}{
		{"zero price", 0, false},
		{"negative price", -4.5, false},
		{"minimal positive price", 0.01, true},
		{"ceiling price", 1000, true},
		{"above ceiling", 1000.01, false},
		{"NaN price", math.NaN(), false},
		{"infinite price", math.Inf(1), false},
	}

	for _, c := range cases {
		ok, _ := Validate("מוצר", c.price)
		if ok != c.valid {
			t.Errorf("%s: expected valid=%v for price %v, got %v", c.name, c.valid, c.price, ok)
		}
	}
}
