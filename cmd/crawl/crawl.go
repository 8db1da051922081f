// Package crawl ingests the user–book interaction graph from the reading-log
// site via a headless browser and the site's JSON book list API.
package crawl

import (
	"context"
	"fmt"

	"github.com/lepinkainen/booksuggest/internal/automation"
	"github.com/lepinkainen/booksuggest/internal/config"
	"github.com/lepinkainen/booksuggest/internal/store"
)

// RunRankingWithParams crawls the annual ranking walk for the given year
// range, resuming from the checkpoint file when one exists.
func RunRankingWithParams(ctx context.Context, startYear, endYear int, headless bool) error {
	if startYear < endYear {
		return fmt.Errorf("start year %d must not be before end year %d", startYear, endYear)
	}

	st := store.NewSQLiteStore(config.DatabaseFile)
	if err := st.Connect(); err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	session, err := automation.NewSession(ctx, automation.Options{Headless: headless})
	if err != nil {
		return err
	}
	defer session.Close()

	coordinator := NewCoordinator(session, st, NewBookAPIClient(), DefaultConfig(config.CheckpointFile))
	return coordinator.RunRanking(ctx, startYear, endYear)
}

// RunTagsWithParams crawls the popular profile tag walk.
func RunTagsWithParams(ctx context.Context, headless bool) error {
	st := store.NewSQLiteStore(config.DatabaseFile)
	if err := st.Connect(); err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	session, err := automation.NewSession(ctx, automation.Options{Headless: headless})
	if err != nil {
		return err
	}
	defer session.Close()

	coordinator := NewCoordinator(session, st, NewBookAPIClient(), DefaultConfig(config.CheckpointFile))
	return coordinator.RunTags(ctx)
}
