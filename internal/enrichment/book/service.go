package book

import (
	"context"
	"log/slog"
)

// Service orchestrates book enrichment using multiple sources.
type Service struct {
	enrichers []Enricher
	merger    Merger
}

// NewService creates a new enrichment service with the default source set.
func NewService() *Service {
	return &Service{
		enrichers: []Enricher{
			NewGoogleBooksEnricher(),
			NewOpenLibraryEnricher(),
		},
		merger: NewPriorityMerger(),
	}
}

// NewServiceWithEnrichers creates a service with an explicit source set,
// used by tests.
func NewServiceWithEnrichers(merger Merger, enrichers ...Enricher) *Service {
	return &Service{enrichers: enrichers, merger: merger}
}

// Enrich runs every enricher for the given book id and merges the results
// by priority. Individual source failures are logged and skipped so one
// flaky API never blocks the rest. Returns nil when no source had data.
func (s *Service) Enrich(ctx context.Context, bookID string) *EnrichmentData {
	var results []EnricherResult

	for _, enricher := range s.enrichers {
		data, err := enricher.Enrich(ctx, bookID)
		if err != nil {
			slog.Warn("Enricher failed", "source", enricher.Name(), "book_id", bookID, "error", err)
			continue
		}
		if data == nil {
			slog.Debug("No enrichment available", "source", enricher.Name(), "book_id", bookID)
			continue
		}
		results = append(results, EnricherResult{
			Data:     data,
			Source:   enricher.Name(),
			Priority: enricher.Priority(),
		})
	}

	merged := s.merger.Merge(results)
	if merged == nil {
		slog.Debug("No enrichment available", "book_id", bookID)
	}
	return merged
}
