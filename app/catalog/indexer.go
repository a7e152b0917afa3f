package catalog

import (
	"encoding/json"
	"fmt"

	meilisearch "github.com/meilisearch/meilisearch-go"
)

const indexName = "products"

// SearchIndex is the fuzzy lookup surface the matcher consumes and the
// ingestion pipeline rebuilds.
type SearchIndex interface {
	Rebuild(retailerID string, entries []IndexEntry) error
	Search(query string, retailerID string, limit int) ([]IndexEntry, error)
}

var _ SearchIndex = (*Indexer)(nil)

// Indexer maintains the Meilisearch products index. A retailer's entries are
// always replaced wholesale (delete-by-filter, then bulk insert) so stale
// entries cannot outlive their source rows.
type Indexer struct {
	client meilisearch.ServiceManager
}

func NewIndexer(url, apiKey string) (*Indexer, error) {
	client := meilisearch.New(url, meilisearch.WithAPIKey(apiKey))

	// Create is best effort: the index usually exists already. The settings
	// update below surfaces real connectivity problems.
	_, _ = client.CreateIndex(&meilisearch.IndexConfig{Uid: indexName, PrimaryKey: "id"})

	index := client.Index(indexName)
	settings := meilisearch.Settings{
		SearchableAttributes: []string{"name", "itemCode"},
		FilterableAttributes: []string{"retailerId", "branch", "price"},
		SortableAttributes:   []string{"price"},
	}
	if _, err := index.UpdateSettings(&settings); err != nil {
		return nil, fmt.Errorf("failed to configure search index: %w", err)
	}

	return &Indexer{client: client}, nil
}

// Rebuild replaces all of one retailer's index entries. Called only after a
// successful non-empty ingestion; the zero-record "no new data" case must be
// handled by the caller by skipping the rebuild entirely.
func (i *Indexer) Rebuild(retailerID string, entries []IndexEntry) error {
	index := i.client.Index(indexName)

	filter := fmt.Sprintf("retailerId = %q", retailerID)
	if _, err := index.DeleteDocumentsByFilter(filter, nil); err != nil {
		return fmt.Errorf("failed to delete index entries for retailer %s: %w", retailerID, err)
	}

	const batchSize = 1000
	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if _, err := index.AddDocuments(entries[start:end], nil); err != nil {
			return fmt.Errorf("failed to index entries for retailer %s: %w", retailerID, err)
		}
	}

	return nil
}

// Search returns up to limit entries for one retailer ranked by relevance.
func (i *Indexer) Search(query string, retailerID string, limit int) ([]IndexEntry, error) {
	index := i.client.Index(indexName)

	req := &meilisearch.SearchRequest{
		Limit:  int64(limit),
		Filter: fmt.Sprintf("retailerId = %q", retailerID),
	}

	res, err := index.Search(query, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	raw, err := json.Marshal(res.Hits)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search hits: %w", err)
	}
	var entries []IndexEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode search hits: %w", err)
	}

	return entries, nil
}
