package scrape

import (
	"context"
	"fmt"
)

// SelfHostedAdapter handles chains that serve the transparency files from
// their own site: an open directory page with a file table, no login.
type SelfHostedAdapter struct{}

var _ Adapter = (*SelfHostedAdapter)(nil)

func (a *SelfHostedAdapter) Scrape(ctx context.Context, session *Session, target Target, sink StatusSink) (*Result, error) {
	sink.Publish(target.RetailerID, StatusStarting)

	if err := session.Navigate(target.PortalURL); err != nil {
		return nil, err
	}
	if err := session.WaitVisible("table"); err != nil {
		return nil, fmt.Errorf("file table did not load: %w", err)
	}

	sink.Publish(target.RetailerID, "Scanning file listing")
	urls, err := session.AttributesAll("table a", "href")
	if err != nil {
		return nil, err
	}
	urls = resolveRelative(target.PortalURL, urls)

	return fetchLatest(ctx, session, target, urls, sink)
}
