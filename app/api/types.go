package api

import (
	"github.com/nshemesh/cartcomb/app/catalog"
	"github.com/nshemesh/cartcomb/app/database"
	"github.com/nshemesh/cartcomb/app/scrape"
	"github.com/nshemesh/cartcomb/app/tasks"
)

type Handler struct {
	retailerRepo database.RetailerRepositoryInterface
	productRepo  database.ProductRepositoryInterface
	pinRepo      database.PinRepositoryInterface
	matcher      *catalog.Matcher
	index        catalog.SearchIndex
	comparisons  *catalog.ComparisonCache
	statusHub    *scrape.StatusHub
	scheduler    tasks.TaskSchedulerInterface
}

// IngestRequest is the body of an ingestion trigger. The shopping list is
// optional; when present, each completed ingestion reprices it.
type IngestRequest struct {
	ShoppingList []catalog.ListItem `json:"shoppingList"`
}

// PinRequest binds one shopping list item to a specific product at one
// retailer.
type PinRequest struct {
	ListItem string `json:"listItem" binding:"required"`
	Retailer string `json:"retailer" binding:"required"`
	ItemCode string `json:"itemCode"`
}
