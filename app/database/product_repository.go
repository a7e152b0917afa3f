package database

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/nshemesh/cartcomb/app/catalog"
)

// ProductRepository handles database operations for products, promotions, and
// the per-retailer catalog replacement that follows an ingestion.
type ProductRepository struct {
	db *DB

	// writeMu serializes catalog replacements globally. Adapters scrape
	// concurrently, but only one replacement transaction may be in flight at
	// a time so a reader never races two writers on the shared store.
	writeMu sync.Mutex
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// SaveResults atomically replaces one retailer's products and promotions with
// the latest ingested set. The prior set is deleted inside the same
// transaction, so items absent from the latest feed disappear rather than
// lingering. Called at most once per completed ingestion.
func (r *ProductRepository) SaveResults(retailerID string, products []ProductRecord, promotions []PromotionRecord) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM products WHERE retailer_id = $1`, retailerID); err != nil {
		return fmt.Errorf("failed to delete prior products: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM promotions WHERE retailer_id = $1`, retailerID); err != nil {
		return fmt.Errorf("failed to delete prior promotions: %w", err)
	}

	productStmt, err := tx.Prepare(`
		INSERT INTO products (retailer_id, item_code, name, branch, price,
			unit_of_measure, unit_price, manufacturer, country, seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (retailer_id, item_code, branch) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			unit_of_measure = EXCLUDED.unit_of_measure,
			unit_price = EXCLUDED.unit_price,
			manufacturer = EXCLUDED.manufacturer,
			country = EXCLUDED.country,
			seen_at = EXCLUDED.seen_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare product insert: %w", err)
	}
	defer productStmt.Close()

	for _, p := range products {
		if _, err := productStmt.Exec(retailerID, p.ItemCode, p.Name, p.Branch, p.Price,
			p.UnitOfMeasure, p.UnitPrice, p.Manufacturer, p.Country, p.SeenAt); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.ItemCode, err)
		}
	}

	promoStmt, err := tx.Prepare(`
		INSERT INTO promotions (retailer_id, item_code, branch, promo_id, description, seen_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare promotion insert: %w", err)
	}
	defer promoStmt.Close()

	for _, p := range promotions {
		if _, err := promoStmt.Exec(retailerID, p.ItemCode, p.Branch, p.PromoID, p.Description, p.SeenAt); err != nil {
			return fmt.Errorf("failed to insert promotion %s: %w", p.PromoID, err)
		}
	}

	if _, err := tx.Exec(`
		UPDATE retailers SET last_ingested_at = NOW(), updated_at = NOW() WHERE id = $1
	`, retailerID); err != nil {
		return fmt.Errorf("failed to update ingestion timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog replacement: %w", err)
	}

	return nil
}

// GetProduct retrieves one product by its identity within a retailer.
func (r *ProductRepository) GetProduct(retailerID, itemCode string) (*catalog.IndexEntry, error) {
	var entry catalog.IndexEntry
	err := r.db.QueryRow(`
		SELECT id, retailer_id, item_code, name, COALESCE(branch, ''), price
		FROM products
		WHERE retailer_id = $1 AND item_code = $2
		LIMIT 1
	`, retailerID, itemCode).Scan(
		&entry.ID, &entry.RetailerID, &entry.ItemCode, &entry.Name, &entry.Branch, &entry.Price,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &entry, nil
}

// GetPromotionTexts returns the descriptions of every promotion applying to
// an item. Each is evaluated independently at query time.
func (r *ProductRepository) GetPromotionTexts(retailerID, itemCode string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT description
		FROM promotions
		WHERE retailer_id = $1 AND item_code = $2
		ORDER BY promo_id
	`, retailerID, itemCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get promotions: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan promotion row: %w", err)
		}
		texts = append(texts, text)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promotion rows: %w", err)
	}

	return texts, nil
}

// GetIndexEntries projects one retailer's stored products into index entries
// for the fuzzy search rebuild.
func (r *ProductRepository) GetIndexEntries(retailerID string) ([]catalog.IndexEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, retailer_id, item_code, name, COALESCE(branch, ''), price
		FROM products
		WHERE retailer_id = $1
		ORDER BY item_code
	`, retailerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get index entries: %w", err)
	}
	defer rows.Close()

	var entries []catalog.IndexEntry
	for rows.Next() {
		var entry catalog.IndexEntry
		if err := rows.Scan(&entry.ID, &entry.RetailerID, &entry.ItemCode, &entry.Name, &entry.Branch, &entry.Price); err != nil {
			return nil, fmt.Errorf("failed to scan index entry row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating index entry rows: %w", err)
	}

	return entries, nil
}

// GetProductCount returns the total number of stored products
func (r *ProductRepository) GetProductCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get product count: %w", err)
	}
	return count, nil
}

// GetPinnedItemCode returns the pinned item code for a shopping list item at
// one retailer, or an empty string when no pin exists.
func (r *ProductRepository) GetPinnedItemCode(listItem, retailerID string) (string, error) {
	var itemCode string
	err := r.db.QueryRow(`
		SELECT item_code FROM pinned_matches
		WHERE list_item = $1 AND retailer_id = $2
	`, listItem, retailerID).Scan(&itemCode)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get pinned match: %w", err)
	}

	return itemCode, nil
}
