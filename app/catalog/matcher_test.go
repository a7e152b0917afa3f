package catalog

import (
	"strings"
	"testing"
)

type fakeIndex struct {
	entries   []IndexEntry
	lastQuery string
}

func (f *fakeIndex) Rebuild(retailerID string, entries []IndexEntry) error {
	f.entries = entries
	return nil
}

func (f *fakeIndex) Search(query string, retailerID string, limit int) ([]IndexEntry, error) {
	f.lastQuery = query
	var out []IndexEntry
	for _, e := range f.entries {
		if e.RetailerID == retailerID {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeStore struct {
	promos map[string][]string // item code -> promo texts
	pins   map[string]string   // list item -> item code
}

func (f *fakeStore) GetPromotionTexts(retailerID, itemCode string) ([]string, error) {
	return f.promos[itemCode], nil
}

func (f *fakeStore) GetPinnedItemCode(listItem, retailerID string) (string, error) {
	return f.pins[listItem], nil
}

func (f *fakeStore) GetProduct(retailerID, itemCode string) (*IndexEntry, error) {
	for _, e := range testEntries {
		if e.RetailerID == retailerID && e.ItemCode == itemCode {
			entry := e
			return &entry, nil
		}
	}
	return nil, nil
}

var testEntries = []IndexEntry{
	{ID: "r1_100", RetailerID: "r1", ItemCode: "100", Name: "חלב 3% 1 ליטר תנובה", Branch: "תל אביב", Price: 6.9},
	{ID: "r1_200", RetailerID: "r1", ItemCode: "200", Name: "חלב 1% 1 ליטר טרה", Branch: "תל אביב", Price: 5.9},
	{ID: "r1_300", RetailerID: "r1", ItemCode: "300", Name: "שוקו 1 ליטר", Branch: "תל אביב", Price: 7.2},
}

func newTestMatcher(store *fakeStore) *Matcher {
	index := &fakeIndex{entries: testEntries}
	return NewMatcher(index, store)
}

func TestMatcher_PicksCheapestQualifyingCandidate(t *testing.T) {
	m := newTestMatcher(&fakeStore{promos: map[string][]string{}, pins: map[string]string{}})

	match, err := m.Run("חלב", "r1", 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if match == nil {
		t.Fatal("Expected a match")
	}
	if match.ItemCode != "200" {
		t.Errorf("Expected cheapest milk (item 200), got %s", match.ItemCode)
	}
	if !approxEqual(match.Total, 5.9) {
		t.Errorf("Expected total 5.9, got %v", match.Total)
	}
	if match.Pinned {
		t.Error("Automatic match must not be marked pinned")
	}
}

func TestMatcher_PromotionFlipsWinner(t *testing.T) {
	store := &fakeStore{
		promos: map[string][]string{
			// At quantity 3 the promoted item beats the nominally cheaper one:
			// 3-for-15 (15.0) vs 3 * 5.9 (17.7).
			"100": {"3 ב-15"},
		},
		pins: map[string]string{},
	}
	m := newTestMatcher(store)

	match, err := m.Run("חלב", "r1", 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if match == nil {
		t.Fatal("Expected a match")
	}
	if match.ItemCode != "100" {
		t.Errorf("Expected promoted item 100 to win at quantity 3, got %s", match.ItemCode)
	}
	if !match.PromoApplied {
		t.Error("Expected promotion marked as applied")
	}
	if !approxEqual(match.Total, 15) {
		t.Errorf("Expected total 15, got %v", match.Total)
	}
}

func TestMatcher_PinnedMatchWins(t *testing.T) {
	store := &fakeStore{
		promos: map[string][]string{},
		pins:   map[string]string{"חלב": "300"},
	}
	m := newTestMatcher(store)

	match, err := m.Run("חלב", "r1", 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if match == nil {
		t.Fatal("Expected a match")
	}
	if match.ItemCode != "300" {
		t.Errorf("Pinned item must win over automatic matching, got %s", match.ItemCode)
	}
	if !match.Pinned {
		t.Error("Expected match marked pinned")
	}
}

func TestMatcher_UnresolvablePinFallsBack(t *testing.T) {
	store := &fakeStore{
		promos: map[string][]string{},
		pins:   map[string]string{"חלב": "999"}, // vanished from the catalog
	}
	m := newTestMatcher(store)

	match, err := m.Run("חלב", "r1", 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if match == nil {
		t.Fatal("Expected automatic fallback match")
	}
	if match.Pinned {
		t.Error("Fallback match must not be marked pinned")
	}
	if match.ItemCode != "200" {
		t.Errorf("Expected automatic winner 200, got %s", match.ItemCode)
	}
}

func TestMatcher_SendsExpandedQueryToIndex(t *testing.T) {
	index := &fakeIndex{entries: testEntries}
	m := NewMatcher(index, &fakeStore{promos: map[string][]string{}, pins: map[string]string{}})

	if _, err := m.Run("בשר", "r1", 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Category siblings must reach the index, otherwise a product named only
	// by a concrete term is never retrieved for the general query.
	for _, want := range []string{"בשר", "אנטריקוט", "סינטה"} {
		if !strings.Contains(index.lastQuery, want) {
			t.Errorf("Expected %q in index query %q", want, index.lastQuery)
		}
	}
}

func TestMatcher_NoMatchIsExplicit(t *testing.T) {
	m := newTestMatcher(&fakeStore{promos: map[string][]string{}, pins: map[string]string{}})

	match, err := m.Run("מלפפון", "r1", 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if match != nil {
		t.Errorf("Expected no match, got %+v", match)
	}
}
