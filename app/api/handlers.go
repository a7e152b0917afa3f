package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nshemesh/cartcomb/app/catalog"
	"github.com/nshemesh/cartcomb/app/database"
	"github.com/nshemesh/cartcomb/app/scrape"
	"github.com/nshemesh/cartcomb/app/tasks"
)

func NewHandler(retailerRepo database.RetailerRepositoryInterface,
	productRepo database.ProductRepositoryInterface,
	pinRepo database.PinRepositoryInterface,
	matcher *catalog.Matcher, index catalog.SearchIndex,
	comparisons *catalog.ComparisonCache, statusHub *scrape.StatusHub,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		retailerRepo: retailerRepo,
		productRepo:  productRepo,
		pinRepo:      pinRepo,
		matcher:      matcher,
		index:        index,
		comparisons:  comparisons,
		statusHub:    statusHub,
		scheduler:    scheduler,
	}
}

// GetMatch resolves a shopping list item. With a retailer parameter the
// response is that retailer's best match; without one, every enabled
// retailer is matched and results come back cheapest first.
func (h *Handler) GetMatch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter 'q'"})
		return
	}

	quantity := 1
	if qty := c.Query("qty"); qty != "" {
		parsed, err := strconv.Atoi(qty)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
			return
		}
		quantity = parsed
	}

	if name := c.Query("retailer"); name != "" {
		retailer, err := h.retailerRepo.GetRetailer(name)
		if err != nil {
			slog.Error("Database error", "operation", "get_retailer", "retailer", name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if retailer == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Retailer not found"})
			return
		}

		match, err := h.matcher.Run(query, retailer.ID, quantity)
		if err != nil {
			slog.Error("Match failed", "retailer", name, "query", query, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Match failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"query":    query,
			"quantity": quantity,
			"retailer": name,
			"match":    match,
			"found":    match != nil,
		})
		return
	}

	retailers, err := h.retailerRepo.GetEnabledRetailers()
	if err != nil {
		slog.Error("Database error", "operation", "get_enabled_retailers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	type retailerMatch struct {
		Retailer string         `json:"retailer"`
		Match    *catalog.Match `json:"match"`
	}

	matches := make([]retailerMatch, 0, len(retailers))
	for _, retailer := range retailers {
		match, err := h.matcher.Run(query, retailer.ID, quantity)
		if err != nil {
			slog.Warn("Match failed, skipping retailer", "retailer", retailer.Name, "query", query, "error", err)
			continue
		}
		if match == nil {
			continue
		}
		matches = append(matches, retailerMatch{Retailer: retailer.Name, Match: match})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Match.Total < matches[j].Match.Total
	})

	c.JSON(http.StatusOK, gin.H{
		"query":    query,
		"quantity": quantity,
		"matches":  matches,
		"total":    len(matches),
	})
}

// GetComparisons serves the cached shopping list comparisons computed after
// the last ingestion run.
func (h *Handler) GetComparisons(c *gin.Context) {
	comparisons := h.comparisons.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"comparisons": comparisons,
		"total":       len(comparisons),
	})
}

// GetStatus serves the latest per-retailer ingestion status lines.
func (h *Handler) GetStatus(c *gin.Context) {
	retailers, err := h.retailerRepo.GetEnabledRetailers()
	if err != nil {
		slog.Error("Database error", "operation", "get_enabled_retailers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	statuses := make([]gin.H, 0, len(retailers))
	for _, retailer := range retailers {
		item := gin.H{
			"retailer": retailer.Name,
			"status":   "Idle",
		}
		if entry, ok := h.statusHub.Get(retailer.ID); ok {
			item["status"] = entry.Status
			item["updated_at"] = entry.UpdatedAt.Format(time.RFC3339)
		}
		if retailer.LastIngestedAt != nil {
			item["last_ingested_at"] = retailer.LastIngestedAt.Format(time.RFC3339)
		}
		statuses = append(statuses, item)
	}

	c.JSON(http.StatusOK, gin.H{"retailers": statuses})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if retailerCount, err := h.retailerRepo.GetRetailerCount(); err == nil {
		health["retailers"] = retailerCount
	}
	if productCount, err := h.productRepo.GetProductCount(); err == nil {
		health["products"] = productCount
	}

	c.JSON(http.StatusOK, health)
}

// GetStats serves aggregate counters for monitoring.
func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if retailerCount, err := h.retailerRepo.GetRetailerCount(); err == nil {
		stats["retailers"] = retailerCount
	}
	if productCount, err := h.productRepo.GetProductCount(); err == nil {
		stats["products"] = productCount
	}
	stats["cached_comparisons"] = len(h.comparisons.Snapshot())
	stats["status_entries"] = len(h.statusHub.Snapshot())

	c.JSON(http.StatusOK, stats)
}

// APIListRetailers lists registered retailers with their ingestion state.
func (h *Handler) APIListRetailers(c *gin.Context) {
	retailers, err := h.retailerRepo.GetEnabledRetailers()
	if err != nil {
		slog.Error("Database error", "operation", "get_enabled_retailers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	list := make([]map[string]interface{}, 0, len(retailers))
	for _, retailer := range retailers {
		info := map[string]interface{}{
			"name":       retailer.Name,
			"portal":     retailer.Portal,
			"portal_url": retailer.PortalURL,
			"branch":     retailer.Branch,
			"enabled":    retailer.Enabled,
		}
		if retailer.LastIngestedAt != nil {
			info["last_ingested_at"] = retailer.LastIngestedAt
		}
		list = append(list, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"retailers": list,
		"total":     len(list),
	})
}

// APIIngestAll enqueues an ingestion task for every enabled retailer.
func (h *Handler) APIIngestAll(c *gin.Context) {
	var req IngestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	retailers, err := h.retailerRepo.GetEnabledRetailers()
	if err != nil {
		slog.Error("Database error", "operation", "get_enabled_retailers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	enqueued := make([]gin.H, 0, len(retailers))
	for _, retailer := range retailers {
		task := tasks.NewIngestRetailerTask(retailer, req.ShoppingList,
			h.productRepo, h.index, h.matcher, h.comparisons, h.statusHub)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Error("Error enqueueing ingest task", "retailer", retailer.Name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to enqueue ingest task",
				"details": err.Error(),
			})
			return
		}
		enqueued = append(enqueued, gin.H{"id": task.ID, "retailer": retailer.Name})
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Ingestion tasks enqueued",
		"tasks":   enqueued,
	})
}

// APIIngestOne runs a single retailer's ingestion outside the shared queue.
// The catalog replacement still serializes through the store's single-writer
// lock. Responds immediately; progress is observable via the status endpoint.
func (h *Handler) APIIngestOne(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing retailer name parameter"})
		return
	}

	var req IngestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	retailer, err := h.retailerRepo.GetRetailer(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_retailer", "retailer", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if retailer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Retailer not found"})
		return
	}

	if h.statusHub.Running(retailer.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": "Ingestion already running for this retailer"})
		return
	}

	task := tasks.NewIngestRetailerTask(*retailer, req.ShoppingList,
		h.productRepo, h.index, h.matcher, h.comparisons, h.statusHub)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()

		task.Start()
		if err := task.Execute(ctx); err != nil {
			slog.Error("Single retailer ingestion failed", "retailer", name, "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success":  true,
		"message":  "Ingestion started",
		"retailer": name,
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

// APIPinMatch creates or replaces a pinned match.
func (h *Handler) APIPinMatch(c *gin.Context) {
	var req PinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.ItemCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing item code"})
		return
	}

	retailer, err := h.retailerRepo.GetRetailer(req.Retailer)
	if err != nil {
		slog.Error("Database error", "operation", "get_retailer", "retailer", req.Retailer, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if retailer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Retailer not found"})
		return
	}

	// Refuse pins to products the retailer does not carry
	product, err := h.productRepo.GetProduct(retailer.ID, req.ItemCode)
	if err != nil {
		slog.Error("Database error", "operation", "get_product", "retailer", req.Retailer, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found at retailer"})
		return
	}

	if err := h.pinRepo.PinMatch(req.ListItem, retailer.ID, req.ItemCode); err != nil {
		slog.Error("Failed to pin match", "list_item", req.ListItem, "retailer", req.Retailer, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to pin match"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"list_item": req.ListItem,
		"retailer":  req.Retailer,
		"item_code": req.ItemCode,
		"product":   product.Name,
	})
}

// APIUnpinMatch removes a pinned match.
func (h *Handler) APIUnpinMatch(c *gin.Context) {
	var req PinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	retailer, err := h.retailerRepo.GetRetailer(req.Retailer)
	if err != nil {
		slog.Error("Database error", "operation", "get_retailer", "retailer", req.Retailer, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if retailer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Retailer not found"})
		return
	}

	if err := h.pinRepo.UnpinMatch(req.ListItem, retailer.ID); err != nil {
		slog.Error("Failed to unpin match", "list_item", req.ListItem, "retailer", req.Retailer, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unpin match"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"list_item": req.ListItem,
		"retailer":  req.Retailer,
	})
}

// APIListPins lists all pinned matches.
func (h *Handler) APIListPins(c *gin.Context) {
	pins, err := h.pinRepo.GetPinnedMatches()
	if err != nil {
		slog.Error("Database error", "operation", "get_pinned_matches", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pins":  pins,
		"total": len(pins),
	})
}
