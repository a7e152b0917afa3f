package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	navigateTimeout = 45 * time.Second
	actionTimeout   = 20 * time.Second
	downloadRetries = 3
	retryBackoff    = 2 * time.Second
)

// Session owns one headless browser for one scrape run. Adapters drive the
// browser for navigation, login and link discovery; file downloads go through
// a plain HTTP client carrying the browser's cookies.
type Session struct {
	ctx       context.Context
	cancel    context.CancelFunc
	client    *http.Client
	userAgent string
}

// NewSession launches a browser. The caller must Close it; the parent context
// bounds the whole run.
func NewSession(parent context.Context, userAgent string, headless bool) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Starting the browser eagerly surfaces a missing binary before any
	// adapter work happens.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		client:    &http.Client{Timeout: 2 * time.Minute},
		userAgent: userAgent,
	}, nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.cancel()
}

// Navigate loads a page and waits for it to become interactive.
func (s *Session) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(s.ctx, navigateTimeout)
	defer cancel()

	if err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until the selector is visible.
func (s *Session) WaitVisible(selector string) error {
	ctx, cancel := context.WithTimeout(s.ctx, actionTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.WaitVisible(selector)); err != nil {
		return fmt.Errorf("selector %s did not become visible: %w", selector, err)
	}
	return nil
}

// SendKeys types into an input field.
func (s *Session) SendKeys(selector, value string) error {
	ctx, cancel := context.WithTimeout(s.ctx, actionTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.SendKeys(selector, value)); err != nil {
		return fmt.Errorf("failed to type into %s: %w", selector, err)
	}
	return nil
}

// Click clicks an element and waits for the page to settle.
func (s *Session) Click(selector string) error {
	ctx, cancel := context.WithTimeout(s.ctx, actionTimeout)
	defer cancel()

	if err := chromedp.Run(ctx,
		chromedp.Click(selector),
		chromedp.WaitReady("body"),
	); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// AttributesAll collects one attribute from every element matching the
// selector. Missing matches yield an empty slice, not an error.
func (s *Session) AttributesAll(selector, attribute string) ([]string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, actionTimeout)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx,
		chromedp.Nodes(selector, &nodes, chromedp.AtLeast(0)),
	); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}

	values := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if v := node.AttributeValue(attribute); v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}

// Download fetches a file over plain HTTP with the browser's cookies, so
// portals that gate files behind a login session still serve them. Transient
// failures are retried at this layer only; a run-level failure is never
// retried.
func (s *Session) Download(fileURL string) ([]byte, error) {
	cookies, err := s.cookieHeader()
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < downloadRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-s.ctx.Done():
				return nil, s.ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}

		data, err := s.fetch(fileURL, cookies)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to download %s after %d attempts: %w", fileURL, downloadRetries, lastErr)
}

func (s *Session) fetch(fileURL, cookies string) ([]byte, error) {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// cookieHeader serializes the browser's cookie jar into a Cookie header.
func (s *Session) cookieHeader() (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, actionTimeout)
	defer cancel()

	var cookies []*network.Cookie
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("failed to read browser cookies: %w", err)
	}

	header := ""
	for _, c := range cookies {
		if header != "" {
			header += "; "
		}
		header += c.Name + "=" + c.Value
	}
	return header, nil
}
