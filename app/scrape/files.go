package scrape

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// FeedKind distinguishes price catalogs from promotion catalogs.
type FeedKind string

const (
	KindPrice FeedKind = "PRICE"
	KindPromo FeedKind = "PROMO"
)

// FeedFile is a downloadable artifact discovered on a portal. Ephemeral:
// produced and consumed within one adapter run.
type FeedFile struct {
	URL       string
	Name      string
	Kind      FeedKind
	Full      bool
	Chain     string
	Store     string
	Timestamp string // recency token from the name, padded to 14 digits
}

// Feed file names follow the published-prices convention:
// PriceFull<chain>-<store>-<timestamp>.gz (same for Promo/PromoFull/Price).
var feedFileNameRe = regexp.MustCompile(`(?i)^(pricesfull|pricefull|promofull|prices|price|promos|promo)(\d+)-(\d+)-(\d{8,14})`)

// ParseFeedFileName extracts feed metadata from a file URL. The second return
// value is false for links that are not feed files (help pages, store
// listings, delta files with unrecognized names).
func ParseFeedFileName(fileURL string) (FeedFile, bool) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return FeedFile{}, false
	}
	name := path.Base(parsed.Path)

	m := feedFileNameRe.FindStringSubmatch(name)
	if m == nil {
		return FeedFile{}, false
	}

	prefix := strings.ToLower(m[1])
	// Portals emit timestamps of varying precision (date only up to seconds).
	// Right-padding to a fixed width keeps lexicographic order equal to
	// chronological order across mixed precisions.
	timestamp := m[4] + strings.Repeat("0", 14-len(m[4]))
	file := FeedFile{
		URL:       fileURL,
		Name:      name,
		Chain:     m[2],
		Store:     strings.TrimLeft(m[3], "0"),
		Timestamp: timestamp,
		Full:      strings.Contains(prefix, "full"),
	}
	if file.Store == "" {
		file.Store = "0"
	}

	if strings.HasPrefix(prefix, "price") {
		file.Kind = KindPrice
	} else {
		file.Kind = KindPromo
	}

	return file, true
}

// CollectFeedFiles filters a list of scraped URLs down to parseable feed
// files.
func CollectFeedFiles(urls []string) []FeedFile {
	files := make([]FeedFile, 0, len(urls))
	for _, u := range urls {
		if file, ok := ParseFeedFileName(u); ok {
			files = append(files, file)
		}
	}
	return files
}

// SelectLatest picks the newest full file of a kind for the requested store.
// When the chain publishes no file for that store, the newest chain-wide full
// file of the kind is used instead. Nil means the portal offered nothing:
// "no new data", not an error.
func SelectLatest(files []FeedFile, kind FeedKind, store string) *FeedFile {
	store = strings.TrimLeft(store, "0")
	if store == "" {
		store = "0"
	}

	var branchBest, chainBest *FeedFile
	for i := range files {
		f := &files[i]
		if f.Kind != kind || !f.Full {
			continue
		}
		if f.Store == store {
			if branchBest == nil || f.Timestamp > branchBest.Timestamp {
				branchBest = f
			}
		}
		if chainBest == nil || f.Timestamp > chainBest.Timestamp {
			chainBest = f
		}
	}

	if branchBest != nil {
		return branchBest
	}
	return chainBest
}
