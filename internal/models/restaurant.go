// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package models

import (
	"strings"
	"time"
)

// PalateStats is the palate relevance statistic for one restaurant.
// Avg is the average palate-matched rating, Count the number of ratings behind it.
type PalateStats struct {
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// Valid reports whether the statistic carries a usable signal.
// A record is considered personalized only when both fields are positive.
func (s *PalateStats) Valid() bool {
	return s != nil && s.Count > 0 && s.Avg > 0
}

// PreferenceStatsMap maps restaurant ID to its palate statistic.
type PreferenceStatsMap map[string]PalateStats

// ListingCategory is a cuisine/category tag attached to a listing.
type ListingCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Location holds the structured address of a restaurant.
type Location struct {
	StreetAddress string  `json:"street_address,omitempty"`
	Neighborhood  string  `json:"neighborhood,omitempty"`
	City          string  `json:"city,omitempty"`
	State         string  `json:"state,omitempty"`
	Country       string  `json:"country,omitempty"`
	CountryCode   string  `json:"country_code,omitempty"`
	PostalCode    string  `json:"postal_code,omitempty"`
	Latitude      float64 `json:"latitude,omitempty"`
	Longitude     float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether the location carries a usable lat/lon pair.
func (l Location) HasCoordinates() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

// RestaurantRecord is a snapshot of a restaurant listing as returned by one fetch.
type RestaurantRecord struct {
	// ID is the stable external identity used for deduplication.
	ID string `json:"id"`

	// DatabaseID is the numeric upstream key. Higher values were created later.
	DatabaseID int64 `json:"database_id"`

	Name string `json:"name"`

	// Rating is the server-computed average rating (0-5).
	Rating float64 `json:"rating"`

	RatingsCount int    `json:"ratings_count"`
	PriceRange   string `json:"price_range,omitempty"`

	PalatesNames      []string          `json:"palates_names,omitempty"`
	ListingCategories []ListingCategory `json:"listing_categories,omitempty"`
	Location          Location          `json:"location"`

	// RecognitionCount is the number of community recognitions, nil when unknown.
	RecognitionCount *int `json:"recognition_count,omitempty"`

	// SearchPalateStats is nil until personalization data is attached.
	SearchPalateStats *PalateStats `json:"search_palate_stats,omitempty"`

	// CreatedAt is the listing creation time when the upstream exposes it.
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// HasCategorySlug reports whether any listing category matches one of the slugs.
// Comparison is case-insensitive.
func (r *RestaurantRecord) HasCategorySlug(slugs []string) bool {
	for _, c := range r.ListingCategories {
		for _, s := range slugs {
			if strings.EqualFold(c.Slug, s) {
				return true
			}
		}
	}
	return false
}

// Recognitions returns RecognitionCount, treating nil as zero.
func (r *RestaurantRecord) Recognitions() int {
	if r.RecognitionCount == nil {
		return 0
	}
	return *r.RecognitionCount
}

// WithPalateStats returns a copy of the record with SearchPalateStats replaced.
//
//nolint:gocritic // value receiver keeps the original untouched
func (r RestaurantRecord) WithPalateStats(stats PalateStats) RestaurantRecord {
	s := stats
	r.SearchPalateStats = &s
	return r
}

// PaginationCursor is an opaque pagination position plus a continuation flag.
// The position is modeled as an integer offset.
type PaginationCursor struct {
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// InitialCursor returns the cursor used at the start of a search epoch.
func InitialCursor() PaginationCursor {
	return PaginationCursor{Offset: 0, HasMore: true}
}
