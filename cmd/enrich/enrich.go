// Package enrich backfills book metadata for every book whose bundle is
// still missing, using the external bibliographic sources.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/lepinkainen/booksuggest/internal/config"
	"github.com/lepinkainen/booksuggest/internal/covers"
	"github.com/lepinkainen/booksuggest/internal/enrichment/book"
	"github.com/lepinkainen/booksuggest/internal/store"
)

const (
	cooldownEvery = 100
	cooldownTime  = 60 * time.Second
)

// Enricher produces metadata for one book id.
type Enricher interface {
	Enrich(ctx context.Context, bookID string) *book.EnrichmentData
}

// CoverDownloader stores a resized local copy of a cover image.
type CoverDownloader interface {
	Download(ctx context.Context, bookID, imageURL string, maxWidth int) error
}

// Runner walks the backlog of books missing metadata.
type Runner struct {
	store    store.Store
	enricher Enricher
	covers   CoverDownloader

	// sleep is replaceable in tests.
	sleep func(time.Duration)
}

// NewRunner creates a backfill runner. The cover downloader may be nil when
// cover downloads are disabled.
func NewRunner(st store.Store, enricher Enricher, coverDL CoverDownloader) *Runner {
	return &Runner{store: st, enricher: enricher, covers: coverDL, sleep: time.Sleep}
}

// Run enriches every book missing authors. Sources that fail or return
// nothing are skipped; the walk cools down periodically to stay inside the
// external APIs' request budgets.
func (r *Runner) Run(ctx context.Context) error {
	ids, err := r.store.BooksMissingAuthors()
	if err != nil {
		return err
	}
	slog.Info("Backfilling book metadata", "books", len(ids))

	enriched := 0
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		data := r.enricher.Enrich(ctx, id)
		if data == nil {
			continue
		}

		if err := r.store.UpdateBookFields(id, data.ToBookFields()); err != nil {
			return err
		}
		enriched++

		if r.covers != nil && data.CoverURL != nil {
			if err := r.covers.Download(ctx, id, *data.CoverURL, 0); err != nil {
				slog.Warn("Failed to download cover", "book_id", id, "error", err)
			}
		}

		if (i+1)%cooldownEvery == 0 {
			slog.Info("Cooling down", "processed", i+1, "total", len(ids))
			r.sleep(cooldownTime)
		}
	}

	slog.Info("Backfill completed", "enriched", enriched, "total", len(ids))
	return nil
}

// RunWithParams runs the backfill against the configured database.
func RunWithParams(ctx context.Context) error {
	st := store.NewSQLiteStore(config.DatabaseFile)
	if err := st.Connect(); err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var coverDL CoverDownloader
	if config.DownloadCovers {
		coverDL = covers.NewDownloader(config.CoverDir)
	}

	return NewRunner(st, book.NewService(), coverDL).Run(ctx)
}
