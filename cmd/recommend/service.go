// Package recommend resolves free-text and id queries against the stored
// catalog and the trained embedding model.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/lepinkainen/booksuggest/internal/store"
	"github.com/lepinkainen/booksuggest/internal/word2vec"
)

const amazonLinkFormat = "https://www.amazon.co.jp/dp/%s"

// Outcome classifies a query result. Empty searches and vocabulary misses
// are ordinary outcomes with their own user-facing messages, not errors.
type Outcome int

const (
	// OutcomeFound means the response carries at least one book.
	OutcomeFound Outcome = iota
	// OutcomeEmptySearch means no book matched the query text.
	OutcomeEmptySearch
	// OutcomeVocabularyMiss means the book holds no trained vector.
	OutcomeVocabularyMiss
)

const (
	emptySearchMessage    = "no book matches this text"
	vocabularyMissMessage = "this book has no comparable neighbors yet"
)

// BookSummary is one result row handed to the presentation side.
type BookSummary struct {
	ID         string
	Title      string
	Authors    string
	Score      float64
	Popularity int
	AmazonLink string
}

// Response is the result of a search or similarity query.
type Response struct {
	Outcome Outcome
	Message string
	Books   []BookSummary
}

// NeighborSource answers nearest-neighbor queries, normally the loaded
// embedding model.
type NeighborSource interface {
	Similar(bookID string, topN int) ([]word2vec.Neighbor, error)
}

// Service orchestrates query-time resolution. The model is loaded once and
// treated as immutable; the service itself is stateless per request.
type Service struct {
	store    store.Store
	model    NeighborSource
	resolver *Resolver
}

// NewService creates a query service. The model may be nil when only
// free-text search is needed.
func NewService(st store.Store, model NeighborSource, resolver *Resolver) *Service {
	return &Service{store: st, model: model, resolver: resolver}
}

// Search resolves free text to ranked book summaries.
func (s *Service) Search(query string) (*Response, error) {
	candidates, err := s.resolver.Resolve(query)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Response{Outcome: OutcomeEmptySearch, Message: emptySearchMessage}, nil
	}

	books := make([]BookSummary, 0, len(candidates))
	for _, c := range candidates {
		books = append(books, BookSummary{
			ID:         c.ID,
			Title:      c.Title,
			Authors:    c.Authors,
			Popularity: c.Popularity,
			AmazonLink: fmt.Sprintf(amazonLinkFormat, c.ID),
		})
	}
	return &Response{Outcome: OutcomeFound, Books: books}, nil
}

// Similar returns the topN nearest neighbors of a book with stored titles
// attached. A vocabulary miss is an ordinary outcome, not an error.
func (s *Service) Similar(ctx context.Context, bookID string, topN int) (*Response, error) {
	neighbors, err := s.model.Similar(bookID, topN)
	if err != nil {
		if errors.Is(err, word2vec.ErrNotInVocabulary) {
			return &Response{Outcome: OutcomeVocabularyMiss, Message: vocabularyMissMessage}, nil
		}
		return nil, err
	}

	books := make([]BookSummary, 0, len(neighbors))
	for _, n := range neighbors {
		summary := BookSummary{
			ID:         n.BookID,
			Score:      n.Score,
			AmazonLink: fmt.Sprintf(amazonLinkFormat, n.BookID),
		}
		if b, err := s.resolver.ResolveByID(ctx, n.BookID); err == nil && b != nil {
			summary.Title = b.Title
			if b.Authors != nil {
				summary.Authors = *b.Authors
			}
		}
		books = append(books, summary)
	}
	return &Response{Outcome: OutcomeFound, Books: books}, nil
}
