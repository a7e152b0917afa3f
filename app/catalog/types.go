package catalog

// IndexEntry is the denormalized projection of a stored product used for
// fuzzy lookup. Entries are rebuilt wholesale per retailer after ingestion.
type IndexEntry struct {
	ID         string  `json:"id"`
	RetailerID string  `json:"retailerId"`
	ItemCode   string  `json:"itemCode"`
	Name       string  `json:"name"`
	Branch     string  `json:"branch"`
	Price      float64 `json:"price"`
}

// Match is the result of resolving one shopping list item against one
// retailer's catalog.
type Match struct {
	RetailerID    string  `json:"retailerId"`
	ItemCode      string  `json:"itemCode"`
	Name          string  `json:"name"`
	Branch        string  `json:"branch"`
	UnitPrice     float64 `json:"unitPrice"`
	Quantity      int     `json:"quantity"`
	Total         float64 `json:"total"`
	OriginalTotal float64 `json:"originalTotal"`
	PromoApplied  bool    `json:"promoApplied"`
	PromoName     string  `json:"promoName,omitempty"`
	Pinned        bool    `json:"pinned"`
}
