package database

import (
	"github.com/nshemesh/cartcomb/app/catalog"
)

var _ RetailerRepositoryInterface = (*RetailerRepository)(nil)
var _ ProductRepositoryInterface = (*ProductRepository)(nil)
var _ PinRepositoryInterface = (*PinRepository)(nil)

// The product repository doubles as the matcher's persistence slice.
var _ catalog.Store = (*ProductRepository)(nil)

type RetailerRepositoryInterface interface {
	GetRetailer(name string) (*Retailer, error)
	GetEnabledRetailers() ([]Retailer, error)
	GetRetailerCount() (int, error)

	UpsertRetailer(name, portalURL, portal, branch, username string, enabled bool) (string, bool, error)
}

type ProductRepositoryInterface interface {
	SaveResults(retailerID string, products []ProductRecord, promotions []PromotionRecord) error

	GetProduct(retailerID, itemCode string) (*catalog.IndexEntry, error)
	GetPromotionTexts(retailerID, itemCode string) ([]string, error)
	GetPinnedItemCode(listItem, retailerID string) (string, error)
	GetIndexEntries(retailerID string) ([]catalog.IndexEntry, error)
	GetProductCount() (int, error)
}

type PinRepositoryInterface interface {
	PinMatch(listItem, retailerID, itemCode string) error
	UnpinMatch(listItem, retailerID string) error
	GetPinnedMatches() ([]PinnedMatch, error)
}
