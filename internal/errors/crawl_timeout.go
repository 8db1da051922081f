package errors

import (
	"errors"
	"fmt"
	"time"
)

// CrawlTimeoutError represents a timed-out wait for a required page element.
// A timeout is fatal for the whole crawl run: the coordinator propagates it
// instead of retrying so the checkpoint never advances past unverified work.
type CrawlTimeoutError struct {
	Selector string
	URL      string
	Timeout  time.Duration
}

func (e *CrawlTimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s waiting for %q at %s", e.Timeout, e.Selector, e.URL)
}

// NewCrawlTimeoutError creates a CrawlTimeoutError for the given selector and URL.
func NewCrawlTimeoutError(selector, url string, timeout time.Duration) *CrawlTimeoutError {
	return &CrawlTimeoutError{Selector: selector, URL: url, Timeout: timeout}
}

// IsCrawlTimeoutError reports whether err is a CrawlTimeoutError (even when wrapped).
func IsCrawlTimeoutError(err error) bool {
	var timeoutErr *CrawlTimeoutError
	return errors.As(err, &timeoutErr)
}
