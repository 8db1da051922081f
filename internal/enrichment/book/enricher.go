// Package book provides interfaces and utilities for enriching book metadata
// from external bibliographic sources.
package book

import (
	"context"
	"strings"

	"github.com/lepinkainen/booksuggest/internal/store"
)

// Enricher defines the interface for fetching book information from external
// sources. Each implementation handles its own rate limiting, caching and
// transformation to the common EnrichmentData format.
type Enricher interface {
	// Name returns the human-readable name of the source (e.g., "GoogleBooks").
	Name() string

	// Priority returns the priority when merging data. Lower values indicate
	// higher priority.
	Priority() int

	// Ping tests the connection to the source and returns an error if it
	// cannot be reached for whatever reason.
	Ping(ctx context.Context) error

	// Enrich retrieves book information for the origin-site book id.
	// Returns nil, nil if the book was not found (allows other enrichers to
	// try). Returns nil, error for actual errors (network issues, rate
	// limits, etc.)
	Enrich(ctx context.Context, bookID string) (*EnrichmentData, error)
}

// EnrichmentData contains book metadata extracted from an external source.
// Pointer fields distinguish "not set" from "empty string".
type EnrichmentData struct {
	// Title is the main title of the book.
	Title *string

	// Authors are the book's author names.
	Authors []string

	// PublishedDate is the publication date (format varies by source).
	PublishedDate *string

	// PageCount is the page count.
	PageCount *int

	// PrintType is the publication format (e.g., "BOOK").
	PrintType *string

	// Description is the book's summary or blurb.
	Description *string

	// Identifier is the external catalog identifier (ISBN etc.).
	Identifier *string

	// CoverURL is the URL to the cover image.
	CoverURL *string
}

// ToBookFields converts the enrichment payload into a fill-if-missing
// update for the storage layer.
func (d *EnrichmentData) ToBookFields() store.BookFields {
	if d == nil {
		return store.BookFields{}
	}
	fields := store.BookFields{
		Title:         d.Title,
		PublishedDate: d.PublishedDate,
		PageCount:     d.PageCount,
		PrintType:     d.PrintType,
		Description:   d.Description,
		Identifier:    d.Identifier,
	}
	if len(d.Authors) > 0 {
		joined := strings.Join(d.Authors, ", ")
		fields.Authors = &joined
	}
	return fields
}
