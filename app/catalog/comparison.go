package catalog

import (
	"sort"
	"sync"
	"time"
)

// ListItem is one line of a shopping list as submitted with an ingestion
// trigger.
type ListItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ListMatch pairs a shopping list item with its resolved match. Match is nil
// when the retailer carries nothing credible for the item.
type ListMatch struct {
	Item  ListItem `json:"item"`
	Match *Match   `json:"match"`
}

// Comparison is one retailer's priced-out shopping list. Total covers matched
// items only; Complete reports whether every item matched.
type Comparison struct {
	RetailerID   string      `json:"retailerId"`
	RetailerName string      `json:"retailerName"`
	Matches      []ListMatch `json:"matches"`
	Total        float64     `json:"total"`
	Complete     bool        `json:"complete"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// BuildComparison resolves every list item against one retailer.
func BuildComparison(m *Matcher, retailerID, retailerName string, items []ListItem) Comparison {
	cmp := Comparison{
		RetailerID:   retailerID,
		RetailerName: retailerName,
		Matches:      make([]ListMatch, 0, len(items)),
		Complete:     true,
		UpdatedAt:    time.Now(),
	}

	for _, item := range items {
		match, err := m.Run(item.Name, retailerID, item.Quantity)
		if err != nil || match == nil {
			cmp.Complete = false
			cmp.Matches = append(cmp.Matches, ListMatch{Item: item})
			continue
		}
		cmp.Total += match.Total
		cmp.Matches = append(cmp.Matches, ListMatch{Item: item, Match: match})
	}

	cmp.Total = Round2(cmp.Total)
	return cmp
}

// ComparisonCache retains the latest comparison per retailer, refreshed after
// each ingestion that carried a shopping list. Memory only.
type ComparisonCache struct {
	mu         sync.RWMutex
	byRetailer map[string]Comparison
}

func NewComparisonCache() *ComparisonCache {
	return &ComparisonCache{byRetailer: make(map[string]Comparison)}
}

// Put replaces a retailer's cached comparison.
func (c *ComparisonCache) Put(cmp Comparison) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byRetailer[cmp.RetailerID] = cmp
}

// Get returns a retailer's cached comparison, if any.
func (c *ComparisonCache) Get(retailerID string) (Comparison, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cmp, ok := c.byRetailer[retailerID]
	return cmp, ok
}

// Snapshot returns all cached comparisons, cheapest complete basket first.
// Incomplete baskets sort after complete ones regardless of total.
func (c *ComparisonCache) Snapshot() []Comparison {
	c.mu.RLock()
	defer c.mu.RUnlock()

	comparisons := make([]Comparison, 0, len(c.byRetailer))
	for _, cmp := range c.byRetailer {
		comparisons = append(comparisons, cmp)
	}

	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Complete != comparisons[j].Complete {
			return comparisons[i].Complete
		}
		return comparisons[i].Total < comparisons[j].Total
	})

	return comparisons
}
