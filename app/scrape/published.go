package scrape

import (
	"context"
	"fmt"
)

// PublishedAdapter handles chains hosted on the shared published-prices
// portal. Access requires a per-chain username with an empty password; the
// file listing appears after login.
type PublishedAdapter struct{}

var _ Adapter = (*PublishedAdapter)(nil)

func (a *PublishedAdapter) Scrape(ctx context.Context, session *Session, target Target, sink StatusSink) (*Result, error) {
	sink.Publish(target.RetailerID, StatusStarting)

	if err := session.Navigate(target.PortalURL); err != nil {
		return nil, err
	}

	sink.Publish(target.RetailerID, "Logging in")
	if err := a.login(session, target.Username); err != nil {
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

func (a *PublishedAdapter) login(session *Session, username string) error {
	if username == "" {
		return fmt.Errorf("portal requires a username")
	}
	if err := session.WaitVisible("#username"); err != nil {
		return fmt.Errorf("login form did not load: %w", err)
	}
	if err := session.SendKeys("#username", username); err != nil {
		return err
	}
	if err := session.Click("#login-button"); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return nil
}
