package database

import (
	"fmt"
)

// PinRepository handles user-created pinned matches
type PinRepository struct {
	db *DB
}

// NewPinRepository creates a new pinned match repository
func NewPinRepository(db *DB) *PinRepository {
	return &PinRepository{db: db}
}

// PinMatch creates or replaces the pin for a shopping list item at a retailer
func (r *PinRepository) PinMatch(listItem, retailerID, itemCode string) error {
	_, err := r.db.Exec(`
		INSERT INTO pinned_matches (list_item, retailer_id, item_code)
		VALUES ($1, $2, $3)
		ON CONFLICT (list_item, retailer_id) DO UPDATE SET
			item_code = EXCLUDED.item_code,
			created_at = NOW()
	`, listItem, retailerID, itemCode)

	if err != nil {
		return fmt.Errorf("failed to pin match: %w", err)
	}

	return nil
}

// UnpinMatch removes the pin for a shopping list item at a retailer
func (r *PinRepository) UnpinMatch(listItem, retailerID string) error {
	_, err := r.db.Exec(`
		DELETE FROM pinned_matches
		WHERE list_item = $1 AND retailer_id = $2
	`, listItem, retailerID)

	if err != nil {
		return fmt.Errorf("failed to unpin match: %w", err)
	}

	return nil
}

// GetPinnedMatches returns all pins, most recent first
func (r *PinRepository) GetPinnedMatches() ([]PinnedMatch, error) {
	rows, err := r.db.Query(`
		SELECT id, list_item, retailer_id, item_code, created_at
		FROM pinned_matches
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get pinned matches: %w", err)
	}
	defer rows.Close()

	var pins []PinnedMatch
	for rows.Next() {
		var pin PinnedMatch
		if err := rows.Scan(&pin.ID, &pin.ListItem, &pin.RetailerID, &pin.ItemCode, &pin.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pinned match row: %w", err)
		}
		pins = append(pins, pin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pinned match rows: %w", err)
	}

	return pins, nil
}
