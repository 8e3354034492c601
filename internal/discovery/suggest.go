// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tastemap/internal/metrics"
	"github.com/tomtom215/tastemap/internal/models"
)

// Suggestions is the secondary result section shown below a small result set.
// It is never merged into the candidate set or re-ranked.
type Suggestions struct {
	Triggered bool
	// Palates is the expanded palate set used for the secondary fetch.
	Palates []string
	Records []models.RestaurantRecord
	// Err is set when the secondary fetch failed; Records is then empty.
	Err error
}

// SuggestionFallback issues a secondary fetch with an expanded palate set when
// the primary result set is too small.
type SuggestionFallback struct {
	svc       ListingService
	regions   RegionExpansion
	threshold int
	pageSize  int
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewSuggestionFallback creates a fallback. regions may be nil, in which case
// palates pass through unexpanded.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSuggestionFallback(svc ListingService, regions RegionExpansion, threshold, pageSize int, timeout time.Duration, logger zerolog.Logger) *SuggestionFallback {
	return &SuggestionFallback{
		svc:       svc,
		regions:   regions,
		threshold: threshold,
		pageSize:  pageSize,
		timeout:   timeout,
		logger:    logger.With().Str("component", "suggestions").Logger(),
	}
}

// ShouldSuggest reports whether resultCount is below the threshold while at
// least one palate filter is active.
func (s *SuggestionFallback) ShouldSuggest(resultCount int, palatesActive bool) bool {
	return palatesActive && resultCount < s.threshold
}

// ExpandPalates replaces every region key with its leaf palates. Leaf palates
// pass through. The result is deduplicated and keeps first-seen order.
func ExpandPalates(regions RegionExpansion, palates []string) []string {
	seen := make(map[string]struct{}, len(palates))
	out := make([]string, 0, len(palates))
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, p := range palates {
		var children []string
		if regions != nil {
			children = regions.ChildrenOf(p)
		}
		if len(children) == 0 {
			add(p)
			continue
		}
		for _, c := range children {
			add(c)
		}
	}
	return out
}

// Fetch runs the secondary fetch for base with its palates expanded. Records
// whose ID is in exclude are omitted. On failure the returned Suggestions
// carries a *SuggestionFetchError and no records.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func (s *SuggestionFallback) Fetch(ctx context.Context, base ListingQuery, exclude map[string]struct{}) Suggestions {
	expanded := ExpandPalates(s.regions, base.Palates)
	q := cloneQuery(base)
	q.Palates = expanded
	q.Cursor = 0
	q.PageSize = s.pageSize

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	page, err := s.svc.FetchPage(ctx, q)
	metrics.RecordListingFetch(metrics.FetchKindSuggestion, time.Since(start), err)
	metrics.RecordSuggestion(err)

	if err != nil {
		sErr := &SuggestionFetchError{Palates: expanded, Err: err}
		s.logger.Warn().Err(sErr).Msg("suggestions suppressed")
		return Suggestions{Triggered: true, Palates: expanded, Records: []models.RestaurantRecord{}, Err: sErr}
	}

	records, _ := dedupePage(page.Records)
	out := records[:0]
	for i := range records {
		if _, skip := exclude[records[i].ID]; !skip {
			out = append(out, records[i])
		}
	}

	s.logger.Debug().
		Strs("palates", expanded).
		Int("fetched", len(records)).
		Int("shown", len(out)).
		Msg("suggestions loaded")

	return Suggestions{Triggered: true, Palates: expanded, Records: out}
}
