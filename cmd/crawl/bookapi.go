package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/lepinkainen/booksuggest/internal/errors"
	"github.com/lepinkainen/booksuggest/internal/ratelimit"
)

const bookAPIDefaultBaseURL = "https://api.booklog.jp"

// BookEntry is one book from a user's public reading log.
type BookEntry struct {
	ID    string
	Title string
}

// BookAPIClient fetches a user's book list from the site's JSON endpoint.
// Unlike the listing pages this endpoint needs no browser, a plain HTTP GET
// returns the full log.
type BookAPIClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
}

// NewBookAPIClient creates a client for the public book list API.
func NewBookAPIClient() *BookAPIClient {
	return NewBookAPIClientWithBaseURL(bookAPIDefaultBaseURL)
}

// NewBookAPIClientWithBaseURL creates a client against a custom endpoint,
// used by tests.
func NewBookAPIClientWithBaseURL(baseURL string) *BookAPIClient {
	return &BookAPIClient{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rateLimiter: ratelimit.NewInterval("bookapi", 1.0),
	}
}

type bookListResponse struct {
	Books []struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"books"`
}

// UserBooks returns every book in the user's reading log. A non-200 status
// means the log is private or gone and yields an empty list; an unparsable
// body is fatal and carries the raw payload for diagnosis.
func (c *BookAPIClient) UserBooks(ctx context.Context, userID string) ([]BookEntry, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/json/%s?category=0&status=0&rank=0&count=99999", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating book list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("book list request failed for %s: %w", userID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Book list unavailable", "user_id", userID, "status", resp.StatusCode)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading book list for %s: %w", userID, err)
	}

	var payload bookListResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.NewMalformedResponseError(url, string(body), err)
	}

	entries := make([]BookEntry, 0, len(payload.Books))
	for _, book := range payload.Books {
		id := lastPathSegment(book.URL)
		if id == "" {
			continue
		}
		entries = append(entries, BookEntry{ID: id, Title: book.Title})
	}
	return entries, nil
}
