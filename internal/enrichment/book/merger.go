package book

import (
	"sort"
)

// Merger defines the interface for merging book information from multiple sources.
type Merger interface {
	// Merge combines multiple EnricherResults into a single EnrichmentData.
	// Results are merged by priority (lower priority number = higher precedence).
	Merge(results []EnricherResult) *EnrichmentData
}

// PriorityMerger implements Merger using priority-based field selection.
// For each field, it uses the first non-empty value from the sorted results.
type PriorityMerger struct{}

// NewPriorityMerger creates a new PriorityMerger.
func NewPriorityMerger() *PriorityMerger {
	return &PriorityMerger{}
}

// Merge combines multiple EnricherResults into a single EnrichmentData.
// Results are sorted by priority (lower = higher precedence) and each field
// takes the first non-empty value.
func (m *PriorityMerger) Merge(results []EnricherResult) *EnrichmentData {
	if len(results) == 0 {
		return nil
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Priority < results[j].Priority
	})

	merged := &EnrichmentData{}
	any := false

	for _, result := range results {
		if result.Data == nil {
			continue
		}
		any = true

		if merged.Title == nil && result.Data.Title != nil && *result.Data.Title != "" {
			merged.Title = result.Data.Title
		}

		// Authors - prefer first non-empty list
		if len(merged.Authors) == 0 && len(result.Data.Authors) > 0 {
			merged.Authors = result.Data.Authors
		}

		if merged.PublishedDate == nil && result.Data.PublishedDate != nil && *result.Data.PublishedDate != "" {
			merged.PublishedDate = result.Data.PublishedDate
		}

		if merged.PageCount == nil && result.Data.PageCount != nil && *result.Data.PageCount > 0 {
			merged.PageCount = result.Data.PageCount
		}

		if merged.PrintType == nil && result.Data.PrintType != nil && *result.Data.PrintType != "" {
			merged.PrintType = result.Data.PrintType
		}

		if merged.Description == nil && result.Data.Description != nil && *result.Data.Description != "" {
			merged.Description = result.Data.Description
		}

		if merged.Identifier == nil && result.Data.Identifier != nil && *result.Data.Identifier != "" {
			merged.Identifier = result.Data.Identifier
		}

		if merged.CoverURL == nil && result.Data.CoverURL != nil && *result.Data.CoverURL != "" {
			merged.CoverURL = result.Data.CoverURL
		}
	}

	if !any {
		return nil
	}
	return merged
}
