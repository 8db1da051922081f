package recommend

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/lepinkainen/booksuggest/internal/enrichment/book"
	"github.com/lepinkainen/booksuggest/internal/store"
)

const resultLimit = 4

// MetadataEnricher backfills missing book metadata from external sources.
type MetadataEnricher interface {
	Enrich(ctx context.Context, bookID string) *book.EnrichmentData
}

// Resolver maps free-text queries and explicit ids to stored books.
type Resolver struct {
	store    store.Store
	enricher MetadataEnricher
}

// NewResolver creates a resolver. The enricher may be nil, in which case
// incomplete metadata is served as stored.
func NewResolver(st store.Store, enricher MetadataEnricher) *Resolver {
	return &Resolver{store: st, enricher: enricher}
}

// Resolve splits the query on whitespace and returns the best-matching
// candidates. An empty query returns nothing without touching storage.
// Candidates are ranked by ascending title length so precise matches beat
// long permissive ones, with popularity as the tie-break, and truncated to
// a fixed limit.
func (r *Resolver) Resolve(query string) ([]store.SearchCandidate, error) {
	keywords := strings.Fields(query)
	if len(keywords) == 0 {
		return nil, nil
	}

	candidates, err := r.store.SearchBooks(keywords)
	if err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		li, lj := len(candidates[i].Title), len(candidates[j].Title)
		if li != lj {
			return li < lj
		}
		if candidates[i].Popularity != candidates[j].Popularity {
			return candidates[i].Popularity > candidates[j].Popularity
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > resultLimit {
		candidates = candidates[:resultLimit]
	}
	return candidates, nil
}

// ResolveByID looks up a book directly. When the stored metadata bundle is
// incomplete, one enrichment attempt backfills it with fill-if-missing
// semantics; enrichment failure falls back to whatever is stored.
func (r *Resolver) ResolveByID(ctx context.Context, id string) (*store.Book, error) {
	b, err := r.store.GetBook(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	if b.HasFullMetadata() || r.enricher == nil {
		return b, nil
	}

	data := r.enricher.Enrich(ctx, id)
	if data == nil {
		slog.Debug("No enrichment available, serving stored data", "book_id", id)
		return b, nil
	}

	if err := r.store.UpdateBookFields(id, data.ToBookFields()); err != nil {
		slog.Warn("Failed to persist enrichment", "book_id", id, "error", err)
		return b, nil
	}
	return r.store.GetBook(id)
}
