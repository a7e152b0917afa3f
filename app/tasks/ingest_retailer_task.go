package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nshemesh/cartcomb/app/catalog"
	"github.com/nshemesh/cartcomb/app/cfg"
	"github.com/nshemesh/cartcomb/app/database"
	"github.com/nshemesh/cartcomb/app/scrape"
)

// IngestRetailerTask runs one retailer's full ingestion: scrape the portal,
// validate and standardize the records, atomically replace the stored
// catalog, rebuild the search index, then refresh the cached shopping list
// comparison. Terminal state always reaches the status sink, success or not.
type IngestRetailerTask struct {
	Task
	retailer     database.Retailer
	shoppingList []catalog.ListItem
	productRepo  database.ProductRepositoryInterface
	index        catalog.SearchIndex
	matcher      *catalog.Matcher
	comparisons  *catalog.ComparisonCache
	standardizer *catalog.Standardizer
	sink         scrape.StatusSink
	userAgent    string
	headless     bool
}

func NewIngestRetailerTask(retailer database.Retailer, shoppingList []catalog.ListItem,
	productRepo database.ProductRepositoryInterface, index catalog.SearchIndex,
	matcher *catalog.Matcher, comparisons *catalog.ComparisonCache,
	sink scrape.StatusSink) *IngestRetailerTask {
	c := cfg.Get()

	return &IngestRetailerTask{
		Task:         NewTask(TaskTypeIngestRetailer, retailer.Name),
		retailer:     retailer,
		shoppingList: shoppingList,
		productRepo:  productRepo,
		index:        index,
		matcher:      matcher,
		comparisons:  comparisons,
		standardizer: catalog.NewStandardizer(),
		sink:         sink,
		userAgent:    c.UserAgent,
		headless:     c.Headless,
	}
}

func (t *IngestRetailerTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.scrape(ctx)
	if err != nil {
		t.sink.Publish(t.retailer.ID, fmt.Sprintf("Error: %s", err))
		return err
	}

	if result.Empty() {
		slog.Info("Task completed",
			"type", "IngestRetailer",
			"retailer", t.RetailerName,
			"duration", t.GetDuration(),
			"outcome", "no new data")
		t.sink.Publish(t.retailer.ID, scrape.StatusDone)
		return nil
	}

	products, promotions, dropped := t.normalize(result)
	if len(products) == 0 {
		// Everything failed validation. Keeping the prior catalog beats
		// replacing it with nothing.
		err := fmt.Errorf("all %d scraped products failed validation", dropped)
		t.sink.Publish(t.retailer.ID, fmt.Sprintf("Error: %s", err))
		return err
	}

	t.sink.Publish(t.retailer.ID, "Saving catalog")
	if err := t.productRepo.SaveResults(t.retailer.ID, products, promotions); err != nil {
		t.sink.Publish(t.retailer.ID, fmt.Sprintf("Error: %s", err))
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	t.sink.Publish(t.retailer.ID, "Rebuilding search index")
	if err := t.rebuildIndex(); err != nil {
		t.sink.Publish(t.retailer.ID, fmt.Sprintf("Error: %s", err))
		return err
	}

	t.refreshComparison()

	slog.Info("Task completed",
		"type", "IngestRetailer",
		"retailer", t.RetailerName,
		"duration", t.GetDuration(),
		"products", len(products),
		"promotions", len(promotions),
		"invalid", dropped)

	t.sink.Publish(t.retailer.ID, scrape.StatusDone)
	return nil
}

// scrape owns the browser session lifecycle for this run.
func (t *IngestRetailerTask) scrape(ctx context.Context) (*scrape.Result, error) {
	adapter, err := scrape.NewAdapter(t.retailer.Portal)
	if err != nil {
		return nil, fmt.Errorf("retailer %s: %w", t.RetailerName, err)
	}

	session, err := scrape.NewSession(ctx, t.userAgent, t.headless)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	target := scrape.Target{
		RetailerID: t.retailer.ID,
		Name:       t.retailer.Name,
		PortalURL:  t.retailer.PortalURL,
		Branch:     t.retailer.Branch,
		Username:   t.retailer.Username,
	}

	result, err := adapter.Scrape(ctx, session, target, t.sink)
	if err != nil {
		return nil, fmt.Errorf("scrape failed: %w", err)
	}
	return result, nil
}

// normalize standardizes product names and validates the result. Validation
// runs on the standardized name so a raw name made entirely of marketing
// tokens cannot reach storage as an empty string. Invalid products are
// dropped and counted; promotions pass through as-is since they are resolved
// lazily at query time.
func (t *IngestRetailerTask) normalize(result *scrape.Result) ([]database.ProductRecord, []database.PromotionRecord, int) {
	products := make([]database.ProductRecord, 0, len(result.Products))
	dropped := 0

	for _, p := range result.Products {
		name := t.standardizer.Run(p.Name)
		ok, reason := catalog.Validate(name, p.Price)
		if !ok {
			dropped++
			slog.Debug("Dropping invalid product", "retailer", t.RetailerName,
				"item_code", p.ItemCode, "reason", reason)
			continue
		}

		products = append(products, database.ProductRecord{
			ItemCode:      p.ItemCode,
			Name:          name,
			Branch:        p.Branch,
			Price:         p.Price,
			UnitOfMeasure: p.UnitOfMeasure,
			UnitPrice:     p.UnitPrice,
			Manufacturer:  p.Manufacturer,
			Country:       p.Country,
			SeenAt:        p.SeenAt,
		})
	}

	promotions := make([]database.PromotionRecord, 0, len(result.Promotions))
	for _, p := range result.Promotions {
		promotions = append(promotions, database.PromotionRecord{
			ItemCode:    p.ItemCode,
			Branch:      p.Branch,
			PromoID:     p.PromoID,
			Description: p.Description,
			SeenAt:      p.SeenAt,
		})
	}

	return products, promotions, dropped
}

func (t *IngestRetailerTask) rebuildIndex() error {
	entries, err := t.productRepo.GetIndexEntries(t.retailer.ID)
	if err != nil {
		return fmt.Errorf("failed to load index entries: %w", err)
	}
	if err := t.index.Rebuild(t.retailer.ID, entries); err != nil {
		return fmt.Errorf("failed to rebuild search index: %w", err)
	}
	return nil
}

// refreshComparison reprices the shopping list submitted with the trigger.
// Best effort: a comparison failure never fails the ingestion that preceded
// it.
func (t *IngestRetailerTask) refreshComparison() {
	if len(t.shoppingList) == 0 || t.matcher == nil {
		return
	}

	t.sink.Publish(t.retailer.ID, "Comparing shopping list")
	cmp := catalog.BuildComparison(t.matcher, t.retailer.ID, t.retailer.Name, t.shoppingList)
	t.comparisons.Put(cmp)
}
