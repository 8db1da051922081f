package recommend

import (
	"context"
	"fmt"

	"github.com/lepinkainen/booksuggest/internal/config"
	"github.com/lepinkainen/booksuggest/internal/enrichment/book"
	"github.com/lepinkainen/booksuggest/internal/store"
	"github.com/lepinkainen/booksuggest/internal/word2vec"
)

// SearchWithParams resolves free text against the catalog and prints the
// ranked candidates.
func SearchWithParams(query string) error {
	st := store.NewSQLiteStore(config.DatabaseFile)
	if err := st.Connect(); err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	resolver := NewResolver(st, book.NewService())
	service := NewService(st, nil, resolver)

	resp, err := service.Search(query)
	if err != nil {
		return err
	}
	printResponse(resp, false)
	return nil
}

// SimilarWithParams prints the topN nearest neighbors of a book.
func SimilarWithParams(ctx context.Context, bookID string, topN int) error {
	st := store.NewSQLiteStore(config.DatabaseFile)
	if err := st.Connect(); err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	model, err := word2vec.Load(config.ModelFile)
	if err != nil {
		return fmt.Errorf("failed to load model (run train first): %w", err)
	}

	resolver := NewResolver(st, book.NewService())
	service := NewService(st, model, resolver)

	resp, err := service.Similar(ctx, bookID, topN)
	if err != nil {
		return err
	}
	printResponse(resp, true)
	return nil
}

func printResponse(resp *Response, withScores bool) {
	if resp.Outcome != OutcomeFound {
		fmt.Println(resp.Message)
		return
	}
	for i, b := range resp.Books {
		title := b.Title
		if title == "" {
			title = "(unknown title)"
		}
		if withScores {
			fmt.Printf("%d. %s [%s] %.2f\n", i+1, title, b.ID, b.Score)
		} else {
			fmt.Printf("%d. %s [%s] %d readers\n", i+1, title, b.ID, b.Popularity)
		}
		if b.Authors != "" {
			fmt.Printf("   %s\n", b.Authors)
		}
		fmt.Printf("   %s\n", b.AmazonLink)
	}
}
