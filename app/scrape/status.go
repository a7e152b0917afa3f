package scrape

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// StatusHub retains the latest status line per retailer so the API can serve
// run progress without touching the database. Memory only: restarts forget
// history.
type StatusHub struct {
	mu      sync.RWMutex
	entries map[string]StatusEntry
}

// StatusEntry is the latest known state of one retailer's ingestion.
type StatusEntry struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var _ StatusSink = (*StatusHub)(nil)

func NewStatusHub() *StatusHub {
	return &StatusHub{entries: make(map[string]StatusEntry)}
}

// Publish records a status line, replacing the previous one.
func (h *StatusHub) Publish(retailerID, status string) {
	h.mu.Lock()
	h.entries[retailerID] = StatusEntry{Status: status, UpdatedAt: time.Now()}
	h.mu.Unlock()

	slog.Debug("Scrape status", "retailer_id", retailerID, "status", status)
}

// Get returns the latest entry for a retailer. The second return value is
// false when no run has ever been recorded.
func (h *StatusHub) Get(retailerID string) (StatusEntry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entry, ok := h.entries[retailerID]
	return entry, ok
}

// Snapshot returns a copy of all entries.
func (h *StatusHub) Snapshot() map[string]StatusEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	snapshot := make(map[string]StatusEntry, len(h.entries))
	for id, entry := range h.entries {
		snapshot[id] = entry
	}
	return snapshot
}

// Running reports whether a retailer's latest status is an in-progress one.
func (h *StatusHub) Running(retailerID string) bool {
	entry, ok := h.Get(retailerID)
	if !ok {
		return false
	}
	return entry.Status != StatusDone && !strings.HasPrefix(entry.Status, "Error")
}
