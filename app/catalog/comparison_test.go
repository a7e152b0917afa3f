package catalog

import (
	"testing"
)

func TestBuildComparison(t *testing.T) {
	m := newTestMatcher(&fakeStore{promos: map[string][]string{}, pins: map[string]string{}})

	list := []ListItem{
		{Name: "חלב", Quantity: 2},
		{Name: "שוקו", Quantity: 1},
	}

	cmp := BuildComparison(m, "r1", "רשת א", list)

	if cmp.RetailerID != "r1" || cmp.RetailerName != "רשת א" {
		t.Errorf("Unexpected retailer identity: %+v", cmp)
	}
	if len(cmp.Matches) != 2 {
		t.Fatalf("Expected 2 list matches, got %d", len(cmp.Matches))
	}
	if !cmp.Complete {
		t.Error("Expected a complete comparison")
	}
	// 2 * 5.9 + 7.2
	if !approxEqual(cmp.Total, 19.0) {
		t.Errorf("Expected total 19.0, got %v", cmp.Total)
	}
}

func TestBuildComparisonUnmatchedItem(t *testing.T) {
	m := newTestMatcher(&fakeStore{promos: map[string][]string{}, pins: map[string]string{}})

	list := []ListItem{
		{Name: "חלב", Quantity: 1},
		{Name: "מלפפון", Quantity: 1},
	}

	cmp := BuildComparison(m, "r1", "רשת א", list)

	if cmp.Complete {
		t.Error("Expected an incomplete comparison")
	}
	if cmp.Matches[1].Match != nil {
		t.Error("Expected nil match for the unmatched item")
	}
	// Total covers matched items only
	if !approxEqual(cmp.Total, 5.9) {
		t.Errorf("Expected total 5.9, got %v", cmp.Total)
	}
}

func TestComparisonCachePutReplaces(t *testing.T) {
	cache := NewComparisonCache()

	cache.Put(Comparison{RetailerID: "r1", Total: 10})
	cache.Put(Comparison{RetailerID: "r1", Total: 12})

	cmp, ok := cache.Get("r1")
	if !ok {
		t.Fatal("Expected a cached comparison")
	}
	if cmp.Total != 12 {
		t.Errorf("Expected latest comparison, got total %v", cmp.Total)
	}
}

func TestComparisonCacheGetUnknown(t *testing.T) {
	cache := NewComparisonCache()

	if _, ok := cache.Get("missing"); ok {
		t.Error("Expected no comparison for unknown retailer")
	}
}

func TestComparisonCacheSnapshotOrder(t *testing.T) {
	cache := NewComparisonCache()
	cache.Put(Comparison{RetailerID: "r1", Total: 30, Complete: true})
	cache.Put(Comparison{RetailerID: "r2", Total: 20, Complete: true})
	cache.Put(Comparison{RetailerID: "r3", Total: 5, Complete: false})

	snapshot := cache.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("Expected 3 comparisons, got %d", len(snapshot))
	}
	if snapshot[0].RetailerID != "r2" || snapshot[1].RetailerID != "r1" {
		t.Errorf("Expected complete baskets cheapest first, got %s then %s",
			snapshot[0].RetailerID, snapshot[1].RetailerID)
	}
	if snapshot[2].RetailerID != "r3" {
		t.Errorf("Expected the incomplete basket last, got %s", snapshot[2].RetailerID)
	}
}
