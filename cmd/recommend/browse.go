package recommend

import (
	"context"
	"fmt"

	"github.com/lepinkainen/booksuggest/internal/config"
	"github.com/lepinkainen/booksuggest/internal/enrichment/book"
	"github.com/lepinkainen/booksuggest/internal/store"
	"github.com/lepinkainen/booksuggest/internal/tui"
	"github.com/lepinkainen/booksuggest/internal/word2vec"
)

// BrowseWithParams searches for the query, lets the user pick a book in an
// interactive list and prints its nearest neighbors.
func BrowseWithParams(ctx context.Context, query string, topN int) error {
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

	candidates, err := resolver.Resolve(query)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Println(emptySearchMessage)
		return nil
	}

	selection, err := tui.SelectBook(query, candidates)
	if err != nil {
		return err
	}
	switch selection.Action {
	case tui.ActionSelected:
	case tui.ActionSkipped, tui.ActionStopped, tui.ActionNone:
		return nil
	}

	resp, err := service.Similar(ctx, selection.Selection.ID, topN)
	if err != nil {
		return err
	}

	fmt.Printf("Books similar to %s:\n", selection.Selection.Title)
	printResponse(resp, true)
	return nil
}
