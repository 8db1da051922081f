package book

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/lepinkainen/booksuggest/internal/cache"
	"github.com/lepinkainen/booksuggest/internal/ratelimit"
)

const (
	openLibraryDefaultBaseURL = "https://openlibrary.org"
	openLibraryPriority       = 1
)

// OpenLibraryEnricher implements the Enricher interface for OpenLibrary.
// It only answers for ISBN-shaped book ids; ASIN-coded books fall through
// to other sources.
type OpenLibraryEnricher struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
	clientOnce  sync.Once
	limiterOnce sync.Once
}

// Compile-time check that OpenLibraryEnricher implements Enricher.
var _ Enricher = (*OpenLibraryEnricher)(nil)

// NewOpenLibraryEnricher creates a new OpenLibrary enricher.
func NewOpenLibraryEnricher() *OpenLibraryEnricher {
	return &OpenLibraryEnricher{baseURL: openLibraryDefaultBaseURL}
}

// NewOpenLibraryEnricherWithBaseURL creates an enricher against a custom API
// endpoint, used by tests.
func NewOpenLibraryEnricherWithBaseURL(baseURL string) *OpenLibraryEnricher {
	return &OpenLibraryEnricher{baseURL: baseURL}
}

// Name returns the human-readable name of this enricher.
func (e *OpenLibraryEnricher) Name() string {
	return "OpenLibrary"
}

// Priority returns the priority for merging data (lower = higher precedence).
func (e *OpenLibraryEnricher) Priority() int {
	return openLibraryPriority
}

// Ping tests the connection to OpenLibrary.
func (e *OpenLibraryEnricher) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL, nil)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}

	resp, err := e.getHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("OpenLibrary ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenLibrary returned status %d", resp.StatusCode)
	}
	return nil
}

// cachedOpenLibraryResult wraps EnrichmentData with metadata for caching.
type cachedOpenLibraryResult struct {
	Data     *EnrichmentData `json:"data"`
	NotFound bool            `json:"not_found"`
}

// Enrich fetches book data from OpenLibrary by book id.
func (e *OpenLibraryEnricher) Enrich(ctx context.Context, bookID string) (*EnrichmentData, error) {
	if bookID == "" {
		return nil, ErrInvalidBookID
	}

	cached, _, err := cache.GetOrFetchWithTTL("openlibrary_cache", bookID, func() (*cachedOpenLibraryResult, error) {
		return e.fetchFromAPI(ctx, bookID)
	}, cache.SelectNegativeCacheTTL(func(r *cachedOpenLibraryResult) bool {
		return r.NotFound
	}))
	if err != nil {
		return nil, err
	}

	if cached.NotFound {
		return nil, nil
	}
	return cached.Data, nil
}

// openLibraryBookResponse matches the books API response structure.
type openLibraryBookResponse struct {
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	NumberOfPages int    `json:"number_of_pages"`
	PublishDate   string `json:"publish_date"`
	Cover         struct {
		Large string `json:"large"`
	} `json:"cover"`
	Identifiers struct {
		ISBN13 []string `json:"isbn_13"`
		ISBN10 []string `json:"isbn_10"`
	} `json:"identifiers"`
}

func (e *OpenLibraryEnricher) fetchFromAPI(ctx context.Context, bookID string) (*cachedOpenLibraryResult, error) {
	if err := e.getRateLimiter().Wait(ctx); err != nil {
		return nil, err
	}

	bibkey := "ISBN:" + bookID
	lookupURL := fmt.Sprintf("%s/api/books?bibkeys=%s&format=json&jscmd=data", e.baseURL, url.QueryEscape(bibkey))

	slog.Debug("Fetching book data from OpenLibrary", "book_id", bookID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating OpenLibrary request: %w", err)
	}

	resp, err := e.getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("OpenLibrary request failed for %s: %w", bookID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenLibrary returned status %d for %s: %w", resp.StatusCode, bookID, ErrAPIUnavailable)
	}

	var payload map[string]openLibraryBookResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode OpenLibrary response for %s: %w", bookID, err)
	}

	entry, ok := payload[bibkey]
	if !ok {
		return &cachedOpenLibraryResult{NotFound: true}, nil
	}

	data := &EnrichmentData{}
	if entry.Title != "" {
		data.Title = &entry.Title
	}
	for _, author := range entry.Authors {
		if author.Name != "" {
			data.Authors = append(data.Authors, author.Name)
		}
	}
	if entry.PublishDate != "" {
		data.PublishedDate = &entry.PublishDate
	}
	if entry.NumberOfPages > 0 {
		data.PageCount = &entry.NumberOfPages
	}
	if entry.Cover.Large != "" {
		data.CoverURL = &entry.Cover.Large
	}
	switch {
	case len(entry.Identifiers.ISBN13) > 0:
		data.Identifier = &entry.Identifiers.ISBN13[0]
	case len(entry.Identifiers.ISBN10) > 0:
		data.Identifier = &entry.Identifiers.ISBN10[0]
	}

	slog.Debug("Successfully fetched book from OpenLibrary", "book_id", bookID, "title", entry.Title)
	return &cachedOpenLibraryResult{Data: data}, nil
}

func (e *OpenLibraryEnricher) getHTTPClient() *http.Client {
	e.clientOnce.Do(func() {
		e.httpClient = &http.Client{Timeout: 10 * time.Second}
	})
	return e.httpClient
}

func (e *OpenLibraryEnricher) getRateLimiter() *ratelimit.Limiter {
	e.limiterOnce.Do(func() {
		e.rateLimiter = ratelimit.NewInterval("openlibrary", 1.0)
	})
	return e.rateLimiter
}
