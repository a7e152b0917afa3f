package database

import (
	"time"
)

// Retailer mirrors one configured retailer portal. Descriptors originate from
// YAML configuration and are registered here at startup; the ingestion core
// treats them as read-only except for the last-ingestion timestamp.
type Retailer struct {
	ID             string // Database UUID
	Name           string // Configuration identifier derived from filename
	PortalURL      string
	Portal         string // Portal family: selfhosted, published, market
	Branch         string // Target branch/store label for feed selection
	Username       string // Retailer-fixed portal login, empty when not required
	Enabled        bool
	LastIngestedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProductRecord is a normalized product as produced by a retailer adapter and
// accepted by SaveResults. Identity key: (retailer, item code, branch).
type ProductRecord struct {
	ItemCode      string
	Name          string
	Branch        string
	Price         float64
	UnitOfMeasure string
	UnitPrice     float64
	Manufacturer  string
	Country       string
	SeenAt        time.Time
}

// PromotionRecord is a promotion as produced by a retailer adapter. Multiple
// promotions may reference the same item code; all are retained.
type PromotionRecord struct {
	ItemCode    string
	Branch      string
	PromoID     string
	Description string
	SeenAt      time.Time
}

// PinnedMatch binds a shopping list item to one specific product at one
// retailer, overriding automatic matching until removed.
type PinnedMatch struct {
	ID         string
	ListItem   string
	RetailerID string
	ItemCode   string
	CreatedAt  time.Time
}
