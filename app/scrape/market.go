package scrape

import (
	"context"
	"net/url"
	"strings"
)

// MarketAdapter handles chains on the open market aggregation portal: no
// login, files behind plain anchors, often paginated but with the newest
// files on the first page.
type MarketAdapter struct{}

var _ Adapter = (*MarketAdapter)(nil)

func (a *MarketAdapter) Scrape(ctx context.Context, session *Session, target Target, sink StatusSink) (*Result, error) {
	sink.Publish(target.RetailerID, StatusStarting)

	if err := session.Navigate(target.PortalURL); err != nil {
		return nil, err
	}

	sink.Publish(target.RetailerID, "Scanning file listing")
	urls, err := session.AttributesAll("a", "href")
	if err != nil {
		return nil, err
	}
	urls = resolveRelative(target.PortalURL, urls)

	return fetchLatest(ctx, session, target, urls, sink)
}

// resolveRelative turns href values into absolute URLs against the portal
// base. Fragments, javascript pseudo-links and unparseable values are
// dropped.
func resolveRelative(baseURL string, hrefs []string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return hrefs
	}

	resolved := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		resolved = append(resolved, base.ResolveReference(ref).String())
	}
	return resolved
}
