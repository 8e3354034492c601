// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/tastemap/internal/metrics"
	"github.com/tomtom215/tastemap/internal/models"
)

// Ranker filters and orders candidates. Rank has no side effects: inputs are
// never modified and identical inputs always yield the same order.
type Ranker struct {
	relevance    LocationRelevance
	tierEpsilon  float64
	smartEpsilon float64
}

// NewRanker creates a ranker. relevance may be nil, in which case keyword and
// region filters match nothing.
func NewRanker(relevance LocationRelevance, cfg RankingConfig) *Ranker {
	return &Ranker{
		relevance:    relevance,
		tierEpsilon:  cfg.TierEpsilon,
		smartEpsilon: cfg.SmartEpsilon,
	}
}

// Rank runs the pipeline over candidates.
//
// A nil SortOption in filters is treated as SMART; callers that know the user
// has palate preferences should resolve the default with EffectiveSort first.
//
// Stage A overlays stats onto records when sorting by MY_PREFERENCE.
// Stage B applies the cuisine, price, rating, keyword and region filters
// conjunctively. Stage C reorders by keyword relevance and then by the
// primary comparator. Both sorts are stable, so full ties keep the order of
// the previous step.
//
//nolint:gocritic // hugeParam: filters passed by value for immutability
func (r *Ranker) Rank(candidates []models.RestaurantRecord, filters models.FilterState, stats models.PreferenceStatsMap) []models.RestaurantRecord {
	start := time.Now()
	sort := models.SortSmart
	if filters.SortOption != nil && *filters.SortOption != "" {
		sort = *filters.SortOption
	}

	out := r.overlay(candidates, sort, stats)
	out = r.filter(out, &filters)
	r.order(out, &filters, sort)

	metrics.RecordRank(time.Since(start), len(out))
	return out
}

// overlay copies candidates, attaching stats under MY_PREFERENCE.
func (r *Ranker) overlay(candidates []models.RestaurantRecord, sort models.SortOption, stats models.PreferenceStatsMap) []models.RestaurantRecord {
	out := make([]models.RestaurantRecord, len(candidates))
	copy(out, candidates)
	if sort != models.SortMyPreference || len(stats) == 0 {
		return out
	}
	for i := range out {
		if s, ok := stats[out[i].ID]; ok {
			out[i] = out[i].WithPalateStats(s)
		}
	}
	return out
}

// filter applies Stage B in place on the copied slice.
func (r *Ranker) filter(records []models.RestaurantRecord, f *models.FilterState) []models.RestaurantRecord {
	keyword := strings.TrimSpace(f.AddressKeyword)
	out := records[:0]
	for i := range records {
		if r.keep(&records[i], f, keyword) {
			out = append(out, records[i])
		}
	}

	if f.SelectedRegion != nil {
		if r.relevance == nil {
			return out[:0]
		}
		out = r.relevance.SortByRegion(out, f.SelectedRegion)
	}
	return out
}

// keep evaluates the per-record predicates of Stage B.
func (r *Ranker) keep(rec *models.RestaurantRecord, f *models.FilterState, keyword string) bool {
	if len(f.Cuisine) > 0 && !rec.HasCategorySlug(f.Cuisine) {
		return false
	}
	if f.Price != nil && *f.Price != "" &&
		!strings.Contains(strings.ToLower(rec.PriceRange), strings.ToLower(*f.Price)) {
		return false
	}
	if f.Rating != nil && rec.Rating < *f.Rating {
		return false
	}
	if keyword != "" {
		if r.relevance == nil || r.relevance.Score(rec, keyword) <= 0 {
			return false
		}
	}
	return true
}

// order applies Stage C in place.
func (r *Ranker) order(records []models.RestaurantRecord, f *models.FilterState, sort models.SortOption) {
	if keyword := strings.TrimSpace(f.AddressKeyword); keyword != "" && r.relevance != nil {
		scores := make(map[string]float64, len(records))
		for i := range records {
			scores[records[i].ID] = r.relevance.Score(&records[i], keyword)
		}
		slices.SortStableFunc(records, func(a, b models.RestaurantRecord) int {
			return desc(scores[a.ID], scores[b.ID])
		})
	}

	cmpFn := r.comparator(sort, len(f.Palates) > 0)
	slices.SortStableFunc(records, func(a, b models.RestaurantRecord) int {
		return cmpFn(&a, &b)
	})
}

// comparator selects the primary comparator by priority: MY_PREFERENCE,
// then palate-tiered when a palate filter is active, then the sort option.
func (r *Ranker) comparator(sort models.SortOption, palatesActive bool) func(a, b *models.RestaurantRecord) int {
	if sort == models.SortMyPreference {
		return compareMyPreference
	}
	if palatesActive {
		return tieredComparator(r.tierEpsilon)
	}
	switch sort {
	case models.SortAsc:
		return compareRatingAsc
	case models.SortDesc:
		return compareRatingDesc
	case models.SortNewest:
		return compareNewest
	default:
		return smartComparator(r.smartEpsilon)
	}
}
