// Package automation drives a headless browser for pages that only render
// their content client-side.
package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	apperrors "github.com/lepinkainen/booksuggest/internal/errors"
)

var (
	chromedpExecAllocator = chromedp.NewExecAllocator
	chromedpContext       = chromedp.NewContext
	chromedpRunner        = chromedp.Run
)

// Options holds configuration for the browser session.
type Options struct {
	Headless bool
}

// Session wraps one browser with a single tab that is reused across
// navigations. The crawl is sequential by design, so one tab is enough and
// keeps the request pattern close to a human reader's.
type Session struct {
	ctx        context.Context
	currentURL string
	cancels    []context.CancelFunc
}

// NewSession launches a browser and opens the tab used for all navigation.
func NewSession(parentCtx context.Context, opts Options) (*Session, error) {
	allocCtx, cancelAllocator := chromedpExecAllocator(parentCtx, buildExecAllocatorOptions(opts)...)
	browserCtx, cancelBrowser := chromedpContext(allocCtx)

	// Run a no-op to start the browser eagerly so launch failures surface
	// here instead of on the first navigation.
	if err := chromedpRunner(browserCtx); err != nil {
		cancelBrowser()
		cancelAllocator()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAllocator},
	}, nil
}

func buildExecAllocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("lang", "ja"),
	}
}

// Navigate loads the given URL in the session tab.
func (s *Session) Navigate(url string) error {
	if err := chromedpRunner(s.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	s.currentURL = url
	return nil
}

// WaitForElement blocks until the selector is present in the DOM or the
// timeout elapses. A timeout maps to a CrawlTimeoutError so callers can
// distinguish it from browser failures.
func (s *Session) WaitForElement(selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	err := chromedpRunner(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewCrawlTimeoutError(selector, s.currentURL, timeout)
	}
	return fmt.Errorf("failed to wait for %q at %s: %w", selector, s.currentURL, err)
}

// HTML returns the rendered markup of the current page.
func (s *Session) HTML() (string, error) {
	var html string
	if err := chromedpRunner(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page HTML at %s: %w", s.currentURL, err)
	}
	return html, nil
}

// Close shuts down the browser.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}
