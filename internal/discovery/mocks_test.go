// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/tastemap/internal/models"
)

var errUpstream = errors.New("upstream unavailable")

// mockListing implements ListingService for testing.
type mockListing struct {
	mu sync.Mutex

	// pages maps cursor offset to the page returned for it.
	pages map[int]ListingPage
	// pageFn overrides pages when set.
	pageFn func(ctx context.Context, q ListingQuery) (ListingPage, error)
	// failFirst makes the first N calls fail with errUpstream.
	failFirst int
	// started receives one value per call when non-nil.
	started chan ListingQuery

	calls []ListingQuery
}

func (m *mockListing) FetchPage(ctx context.Context, q ListingQuery) (ListingPage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, q)
	n := len(m.calls)
	fn := m.pageFn
	started := m.started
	m.mu.Unlock()

	if started != nil {
		started <- q
	}
	if n <= m.failFirst {
		return ListingPage{}, errUpstream
	}
	if fn != nil {
		return fn(ctx, q)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	page, ok := m.pages[q.Cursor]
	if !ok {
		return ListingPage{NextCursor: q.Cursor}, nil
	}
	return page, nil
}

func (m *mockListing) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockListing) lastCall() ListingQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ListingQuery{}
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockListing) cursors() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.Cursor)
	}
	return out
}

// mockStats implements PreferenceStatsService for testing.
type mockStats struct {
	mu      sync.Mutex
	byKey   map[string]models.PreferenceStatsMap
	err     error
	block   chan struct{}
	started chan struct{}
	calls   int
	ctxErrs []error
}

func (m *mockStats) Fetch(ctx context.Context, palates []string) (models.PreferenceStatsMap, error) {
	m.mu.Lock()
	m.calls++
	block := m.block
	started := m.started
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			m.mu.Lock()
			m.ctxErrs = append(m.ctxErrs, ctx.Err())
			m.mu.Unlock()
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.byKey[strings.Join(palates, "|")], nil
}

func (m *mockStats) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockRelevance implements LocationRelevance for testing.
// Score matches keyword against city and street case-insensitively.
// SortByRegion keeps records in region.City, ordered by ascending name.
type mockRelevance struct{}

func (mockRelevance) Score(r *models.RestaurantRecord, keyword string) float64 {
	kw := strings.ToLower(keyword)
	score := 0.0
	if strings.Contains(strings.ToLower(r.Location.City), kw) {
		score += 2
	}
	if strings.Contains(strings.ToLower(r.Location.StreetAddress), kw) {
		score++
	}
	return score
}

func (mockRelevance) SortByRegion(records []models.RestaurantRecord, region *models.RegionSelector) []models.RestaurantRecord {
	var out []models.RestaurantRecord
	for i := range records {
		if strings.EqualFold(records[i].Location.City, region.City) {
			out = append(out, records[i])
		}
	}
	slices.SortStableFunc(out, func(a, b models.RestaurantRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// mockRegions implements RegionExpansion for testing.
type mockRegions map[string][]string

func (m mockRegions) ChildrenOf(key string) []string { return m[key] }

// mockTarget implements LoadTarget for testing.
type mockTarget struct {
	hasMore bool
	loading bool
	loads   int
	err     error
}

func (m *mockTarget) HasMore() bool { return m.hasMore }
func (m *mockTarget) Loading() bool { return m.loading }
func (m *mockTarget) LoadMore(context.Context) error {
	m.loads++
	return m.err
}

// rec builds a record with the fields most tests care about.
func rec(id string, rating float64, ratingsCount int) models.RestaurantRecord {
	return models.RestaurantRecord{ID: id, Name: id, Rating: rating, RatingsCount: ratingsCount}
}

func withStats(r models.RestaurantRecord, avg float64, count int) models.RestaurantRecord {
	return r.WithPalateStats(models.PalateStats{Avg: avg, Count: count})
}

func ids(records []models.RestaurantRecord) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].ID
	}
	return out
}

func sortPtr(s models.SortOption) *models.SortOption { return &s }
func strPtr(s string) *string                        { return &s }
func floatPtr(f float64) *float64                    { return &f }

// fastFetchConfig keeps retry tests quick.
func fastFetchConfig() FetchConfig {
	return FetchConfig{Timeout: time.Second, MaxRetries: 0, RetryBaseDelay: time.Millisecond}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}
