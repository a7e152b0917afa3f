package database

import (
	"database/sql"
	"fmt"
)

// RetailerRepository handles database operations for retailers
type RetailerRepository struct {
	db *DB
}

// NewRetailerRepository creates a new retailer repository
func NewRetailerRepository(db *DB) *RetailerRepository {
	return &RetailerRepository{db: db}
}

// UpsertRetailer inserts or updates a retailer descriptor and reports whether
// the portal URL changed since the last registration.
func (r *RetailerRepository) UpsertRetailer(name, portalURL, portal, branch, username string, enabled bool) (string, bool, error) {
	existing, err := r.GetRetailer(name)
	if err != nil {
		return "", false, fmt.Errorf("failed to check existing retailer: %w", err)
	}

	var dbID string
	var urlChanged bool
	if existing != nil {
		if existing.PortalURL != portalURL {
			urlChanged = true
		}

		err = r.db.QueryRow(`
			UPDATE retailers
			SET portal_url = $2, portal = $3, branch = $4, username = $5, enabled = $6, updated_at = NOW()
			WHERE name = $1
			RETURNING id
		`, name, portalURL, portal, branch, username, enabled).Scan(&dbID)
	} else {
		err = r.db.QueryRow(`
			INSERT INTO retailers (name, portal_url, portal, branch, username, enabled)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, name, portalURL, portal, branch, username, enabled).Scan(&dbID)
	}

	if err != nil {
		return "", false, fmt.Errorf("failed to upsert retailer: %w", err)
	}

	return dbID, urlChanged, nil
}

// GetRetailer retrieves a retailer by its configuration name
func (r *RetailerRepository) GetRetailer(name string) (*Retailer, error) {
	var ret Retailer
	err := r.db.QueryRow(`
		SELECT id, name, portal_url, portal, COALESCE(branch, ''), COALESCE(username, ''),
		       enabled, last_ingested_at, created_at, updated_at
		FROM retailers
		WHERE name = $1
	`, name).Scan(
		&ret.ID, &ret.Name, &ret.PortalURL, &ret.Portal, &ret.Branch, &ret.Username,
		&ret.Enabled, &ret.LastIngestedAt, &ret.CreatedAt, &ret.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get retailer: %w", err)
	}

	return &ret, nil
}

// GetEnabledRetailers returns all retailers eligible for ingestion
func (r *RetailerRepository) GetEnabledRetailers() ([]Retailer, error) {
	rows, err := r.db.Query(`
		SELECT id, name, portal_url, portal, COALESCE(branch, ''), COALESCE(username, ''),
		       enabled, last_ingested_at, created_at, updated_at
		FROM retailers
		WHERE enabled = true
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled retailers: %w", err)
	}
	defer rows.Close()

	var retailers []Retailer
	for rows.Next() {
		var ret Retailer
		err := rows.Scan(
			&ret.ID, &ret.Name, &ret.PortalURL, &ret.Portal, &ret.Branch, &ret.Username,
			&ret.Enabled, &ret.LastIngestedAt, &ret.CreatedAt, &ret.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan retailer row: %w", err)
		}
		retailers = append(retailers, ret)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating retailer rows: %w", err)
	}

	return retailers, nil
}

// GetRetailerCount returns the total number of registered retailers
func (r *RetailerRepository) GetRetailerCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM retailers").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get retailer count: %w", err)
	}
	return count, nil
}
