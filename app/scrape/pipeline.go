package scrape

import (
	"context"
	"fmt"
	"log/slog"
)

// fetchLatest walks discovered links through selection, download, extraction
// and parsing for both feed kinds. A missing promotion file degrades to a
// price-only result; a missing price file is the "no new data" case.
func fetchLatest(ctx context.Context, session *Session, target Target, urls []string, sink StatusSink) (*Result, error) {
	files := CollectFeedFiles(urls)
	slog.Debug("Collected feed files", "retailer", target.Name, "links", len(urls), "files", len(files))

	result := &Result{}

	priceFile := SelectLatest(files, KindPrice, target.Branch)
	if priceFile == nil {
		slog.Info("No price file available", "retailer", target.Name)
		return result, nil
	}

	sink.Publish(target.RetailerID, fmt.Sprintf("Downloading %s", priceFile.Name))
	products, err := downloadAndParsePrices(session, target, priceFile)
	if err != nil {
		return nil, err
	}
	result.Products = products

	promoFile := SelectLatest(files, KindPromo, target.Branch)
	if promoFile == nil {
		slog.Info("No promotion file available", "retailer", target.Name)
		return result, nil
	}

	sink.Publish(target.RetailerID, fmt.Sprintf("Downloading %s", promoFile.Name))
	promotions, err := downloadAndParsePromotions(session, target, promoFile)
	if err != nil {
		// Promotions are supplementary. The price catalog still stands.
		slog.Warn("Failed to process promotion file", "retailer", target.Name, "file", promoFile.Name, "error", err)
		return result, nil
	}
	result.Promotions = promotions

	return result, nil
}

func downloadAndParsePrices(session *Session, target Target, file *FeedFile) ([]Product, error) {
	data, err := session.Download(file.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download price file: %w", err)
	}
	payload, err := ExtractXML(file.Name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract price file %s: %w", file.Name, err)
	}
	products, err := ParsePrices(payload, target.Branch)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price file %s: %w", file.Name, err)
	}
	return products, nil
}

func downloadAndParsePromotions(session *Session, target Target, file *FeedFile) ([]Promotion, error) {
	data, err := session.Download(file.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download promotion file: %w", err)
	}
	payload, err := ExtractXML(file.Name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract promotion file %s: %w", file.Name, err)
	}
	return ParsePromotions(payload, target.Branch)
}
