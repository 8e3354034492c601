// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"context"

	"github.com/tomtom215/tastemap/internal/models"
)

// ListingQuery carries the parameters of one listing page request.
type ListingQuery struct {
	SearchTerm string
	PageSize   int
	// Cursor is the offset to resume from. Zero requests the first page.
	Cursor  int
	Cuisine []string
	Palates []string
	Price   string
	UserID  string
	Status  string
	Badge   string
}

// ListingPage is one page returned by the listing service.
type ListingPage struct {
	Records    []models.RestaurantRecord
	NextCursor int
	HasMore    bool
}

// ListingService is the remote paginated restaurant listing source.
type ListingService interface {
	FetchPage(ctx context.Context, q ListingQuery) (ListingPage, error)
}

// PreferenceStatsService fetches palate statistics keyed by restaurant ID.
// Implementations must honour ctx cancellation.
type PreferenceStatsService interface {
	Fetch(ctx context.Context, palates []string) (models.PreferenceStatsMap, error)
}

// LocationRelevance scores and orders records by location.
type LocationRelevance interface {
	// Score returns how well the record's address matches keyword. Zero means no match.
	Score(r *models.RestaurantRecord, keyword string) float64

	// SortByRegion returns the records contained in region, most relevant first.
	// Records outside the region are dropped. The input slice is not modified.
	SortByRegion(records []models.RestaurantRecord, region *models.RegionSelector) []models.RestaurantRecord
}

// RegionExpansion maps a named palate region to its leaf palates.
type RegionExpansion interface {
	// ChildrenOf returns the leaf palates of regionKey, or nil when regionKey
	// is not a region.
	ChildrenOf(regionKey string) []string
}
