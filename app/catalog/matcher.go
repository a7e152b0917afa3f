package catalog

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultCandidateLimit bounds how many index hits are considered per match.
const DefaultCandidateLimit = 10

// Store is the slice of persistence the matcher needs: promotion texts for a
// candidate, pinned-match overrides, and direct product lookup for resolving
// a pin.
type Store interface {
	GetPromotionTexts(retailerID, itemCode string) ([]string, error)
	GetPinnedItemCode(listItem, retailerID string) (string, error)
	GetProduct(retailerID, itemCode string) (*IndexEntry, error)
}

// Matcher answers "which product at this retailer is the cheapest credible
// match for this shopping list item at this quantity".
type Matcher struct {
	index    SearchIndex
	store    Store
	expander *Expander
	resolver *PromoResolver
}

func NewMatcher(index SearchIndex, store Store) *Matcher {
	return &Matcher{
		index:    index,
		store:    store,
		expander: NewExpander(),
		resolver: NewPromoResolver(),
	}
}

// Run matches one shopping list item against one retailer. A pinned match,
// when present and still resolvable, wins unconditionally. Otherwise the top
// index candidates are narrowed by the expanded token condition and the one
// with the lowest promo-resolved total is returned. A nil result means no
// match was found.
func (m *Matcher) Run(itemName string, retailerID string, quantity int) (*Match, error) {
	if quantity < 1 {
		quantity = 1
	}

	if pinned, err := m.resolvePinned(itemName, retailerID, quantity); err != nil {
		return nil, err
	} else if pinned != nil {
		return pinned, nil
	}

	// The index sees the expanded token union so synonym-only products are
	// retrievable; the post-filter below then narrows on the AND/OR condition.
	candidates, err := m.index.Search(m.expander.BuildQuery(itemName), retailerID, DefaultCandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search candidates: %w", err)
	}

	var best *Match
	for _, candidate := range candidates {
		if !m.expander.MatchesQuery(candidate.Name, itemName) {
			continue
		}

		match, err := m.priceCandidate(candidate, quantity)
		if err != nil {
			slog.Warn("Skipping candidate, promotion lookup failed",
				"retailer", retailerID, "item_code", candidate.ItemCode, "error", err)
			continue
		}

		if best == nil || match.Total < best.Total {
			best = match
		}
	}

	return best, nil
}

// resolvePinned returns the user-forced match when one exists and the pinned
// product is still present in the retailer's catalog.
func (m *Matcher) resolvePinned(itemName, retailerID string, quantity int) (*Match, error) {
	itemCode, err := m.store.GetPinnedItemCode(itemName, retailerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up pinned match: %w", err)
	}
	if itemCode == "" {
		return nil, nil
	}

	product, err := m.store.GetProduct(retailerID, itemCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pinned product: %w", err)
	}
	if product == nil {
		// The pinned item vanished from the latest feed; fall back to
		// automatic matching rather than failing the query.
		slog.Debug("Pinned product no longer present", "retailer", retailerID, "item_code", itemCode)
		return nil, nil
	}

	match, err := m.priceCandidate(*product, quantity)
	if err != nil {
		return nil, err
	}
	match.Pinned = true
	return match, nil
}

func (m *Matcher) priceCandidate(candidate IndexEntry, quantity int) (*Match, error) {
	texts, err := m.store.GetPromotionTexts(candidate.RetailerID, candidate.ItemCode)
	if err != nil {
		return nil, err
	}

	res := m.resolver.Resolve(candidate.Price, strings.Join(texts, "|"), quantity)

	return &Match{
		RetailerID:    candidate.RetailerID,
		ItemCode:      candidate.ItemCode,
		Name:          candidate.Name,
		Branch:        candidate.Branch,
		UnitPrice:     candidate.Price,
		Quantity:      quantity,
		Total:         res.Total,
		OriginalTotal: res.OriginalTotal,
		PromoApplied:  res.Applied,
		PromoName:     res.DisplayName,
	}, nil
}
