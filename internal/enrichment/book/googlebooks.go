package book

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lepinkainen/booksuggest/internal/cache"
	"github.com/lepinkainen/booksuggest/internal/ratelimit"
)

const (
	googleBooksDefaultBaseURL = "https://www.googleapis.com/books/v1"
	googleBooksPriority       = 0
)

// GoogleBooksEnricher implements the Enricher interface for the Google Books
// API. The origin-site book code doubles as the search term, which works
// because those codes are ISBNs or ASINs for the vast majority of books.
type GoogleBooksEnricher struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
	clientOnce  sync.Once
	limiterOnce sync.Once
}

// Compile-time check that GoogleBooksEnricher implements Enricher.
var _ Enricher = (*GoogleBooksEnricher)(nil)

// NewGoogleBooksEnricher creates a new Google Books enricher.
func NewGoogleBooksEnricher() *GoogleBooksEnricher {
	return &GoogleBooksEnricher{baseURL: googleBooksDefaultBaseURL}
}

// NewGoogleBooksEnricherWithBaseURL creates an enricher against a custom API
// endpoint, used by tests.
func NewGoogleBooksEnricherWithBaseURL(baseURL string) *GoogleBooksEnricher {
	return &GoogleBooksEnricher{baseURL: baseURL}
}

// Name returns the human-readable name of this enricher.
func (e *GoogleBooksEnricher) Name() string {
	return "GoogleBooks"
}

// Priority returns the priority for merging data (lower = higher precedence).
func (e *GoogleBooksEnricher) Priority() int {
	return googleBooksPriority
}

// Ping tests the connection to the Google Books API.
func (e *GoogleBooksEnricher) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/volumes?q=ping", nil)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}

	resp, err := e.getHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("google Books ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google Books returned status %d", resp.StatusCode)
	}
	return nil
}

// cachedGoogleBooksResult wraps EnrichmentData with metadata for caching.
type cachedGoogleBooksResult struct {
	Data     *EnrichmentData `json:"data"`
	NotFound bool            `json:"not_found"`
}

// Enrich fetches book data from the Google Books API by book id.
func (e *GoogleBooksEnricher) Enrich(ctx context.Context, bookID string) (*EnrichmentData, error) {
	if bookID == "" {
		return nil, ErrInvalidBookID
	}

	cached, _, err := cache.GetOrFetchWithTTL("googlebooks_cache", bookID, func() (*cachedGoogleBooksResult, error) {
		return e.fetchFromAPI(ctx, bookID)
	}, cache.SelectNegativeCacheTTL(func(r *cachedGoogleBooksResult) bool {
		return r.NotFound
	}))
	if err != nil {
		return nil, err
	}

	if cached.NotFound {
		return nil, nil // Not found is not an error, allows other enrichers to try
	}
	return cached.Data, nil
}

// googleBooksResponse matches the volumes API response structure.
type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Authors             []string `json:"authors"`
			PublishedDate       string   `json:"publishedDate"`
			PageCount           int      `json:"pageCount"`
			PrintType           string   `json:"printType"`
			Description         string   `json:"description"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (e *GoogleBooksEnricher) fetchFromAPI(ctx context.Context, bookID string) (*cachedGoogleBooksResult, error) {
	if err := e.getRateLimiter().Wait(ctx); err != nil {
		return nil, err
	}

	lookupURL := fmt.Sprintf("%s/volumes?q=%s", e.baseURL, url.QueryEscape(bookID))
	if apiKey := os.Getenv("GOOGLE_BOOKS_API_KEY"); apiKey != "" {
		lookupURL = fmt.Sprintf("%s&key=%s", lookupURL, apiKey)
	}

	slog.Debug("Fetching book data from Google Books", "book_id", bookID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating Google Books request: %w", err)
	}

	resp, err := e.getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("google Books request failed for %s: %w", bookID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return &cachedGoogleBooksResult{NotFound: true}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google Books returned status %d for %s: %w", resp.StatusCode, bookID, ErrAPIUnavailable)
	}

	var result googleBooksResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Google Books response for %s: %w", bookID, err)
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return &cachedGoogleBooksResult{NotFound: true}, nil
	}

	// First item is the best match.
	info := result.Items[0].VolumeInfo
	data := &EnrichmentData{Authors: info.Authors}
	if info.Title != "" {
		data.Title = &info.Title
	}
	if info.PublishedDate != "" {
		data.PublishedDate = &info.PublishedDate
	}
	if info.PageCount > 0 {
		data.PageCount = &info.PageCount
	}
	if info.PrintType != "" {
		data.PrintType = &info.PrintType
	}
	if info.Description != "" {
		data.Description = &info.Description
	}
	if len(info.IndustryIdentifiers) > 0 {
		ids := make([]string, 0, len(info.IndustryIdentifiers))
		for _, ident := range info.IndustryIdentifiers {
			ids = append(ids, ident.Identifier)
		}
		joined := strings.Join(ids, ", ")
		data.Identifier = &joined
	}
	if info.ImageLinks.Thumbnail != "" {
		data.CoverURL = &info.ImageLinks.Thumbnail
	}

	slog.Debug("Successfully fetched book from Google Books", "book_id", bookID, "title", info.Title)
	return &cachedGoogleBooksResult{Data: data}, nil
}

func (e *GoogleBooksEnricher) getHTTPClient() *http.Client {
	e.clientOnce.Do(func() {
		e.httpClient = &http.Client{Timeout: 10 * time.Second}
	})
	return e.httpClient
}

func (e *GoogleBooksEnricher) getRateLimiter() *ratelimit.Limiter {
	e.limiterOnce.Do(func() {
		// The volumes API tolerates short bursts, unlike the scraping targets.
		e.rateLimiter = ratelimit.New("googlebooks", 2)
	})
	return e.rateLimiter
}
