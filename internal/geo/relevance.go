// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package geo

import (
	"cmp"
	"slices"
	"strings"

	"github.com/tomtom215/tastemap/internal/cache"
	"github.com/tomtom215/tastemap/internal/models"
)

// DefaultRadiusKm is used for regions with a centre but no radius.
const DefaultRadiusKm = 25.0

// Field weights for keyword scoring. A match on a broader field counts for
// more because users type neighbourhood and city names far more often than
// street fragments.
const (
	weightCity         = 3.0
	weightNeighborhood = 2.0
	weightState        = 1.5
	weightCountry      = 1.0
	weightStreet       = 1.0
	weightPostalCode   = 2.0
)

// Relevance implements keyword scoring and region selection over restaurant
// addresses.
type Relevance struct {
	defaultRadiusKm float64
}

// NewRelevance creates a relevance service. Non-positive radii fall back to
// DefaultRadiusKm.
func NewRelevance(defaultRadiusKm float64) *Relevance {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = DefaultRadiusKm
	}
	return &Relevance{defaultRadiusKm: defaultRadiusKm}
}

// Score sums the weights of every address field that contains keyword,
// ignoring case. Zero means no match.
func (g *Relevance) Score(r *models.RestaurantRecord, keyword string) float64 {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return 0
	}

	loc := &r.Location
	score := 0.0
	if containsFold(loc.City, kw) {
		score += weightCity
	}
	if containsFold(loc.Neighborhood, kw) {
		score += weightNeighborhood
	}
	if containsFold(loc.State, kw) {
		score += weightState
	}
	if containsFold(loc.Country, kw) || strings.EqualFold(loc.CountryCode, kw) {
		score += weightCountry
	}
	if containsFold(loc.StreetAddress, kw) {
		score += weightStreet
	}
	if loc.PostalCode != "" && strings.HasPrefix(strings.ToLower(loc.PostalCode), kw) {
		score += weightPostalCode
	}
	return score
}

// SortByRegion returns the records inside region, most relevant first.
//
// With a centre point, records within the radius are returned nearest first;
// records without coordinates are dropped. Otherwise records are matched on
// city and country, or on the region name when neither is set, and keep
// their input order.
func (g *Relevance) SortByRegion(records []models.RestaurantRecord, region *models.RegionSelector) []models.RestaurantRecord {
	if region == nil {
		return slices.Clone(records)
	}
	if region.HasCentre() {
		return g.byDistance(records, region)
	}

	out := make([]models.RestaurantRecord, 0, len(records))
	for i := range records {
		if contains(region, &records[i].Location) {
			out = append(out, records[i])
		}
	}
	return out
}

func (g *Relevance) byDistance(records []models.RestaurantRecord, region *models.RegionSelector) []models.RestaurantRecord {
	radius := region.RadiusKm
	if radius <= 0 {
		radius = g.defaultRadiusKm
	}

	grid := cache.NewSpatialHashGrid(radius)
	byID := make(map[string]int, len(records))
	for i := range records {
		loc := &records[i].Location
		if !loc.HasCoordinates() {
			continue
		}
		grid.Insert(records[i].ID, loc.Latitude, loc.Longitude)
		byID[records[i].ID] = i
	}

	hits := grid.QueryNearby(region.Lat, region.Lon, radius)
	// QueryNearby is unordered; the input index breaks distance ties.
	slices.SortFunc(hits, func(a, b cache.Neighbor) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(byID[a.ID], byID[b.ID])
	})

	out := make([]models.RestaurantRecord, 0, len(hits))
	for _, h := range hits {
		out = append(out, records[byID[h.ID]])
	}
	return out
}

// contains reports whether loc lies in a region without a centre point.
func contains(region *models.RegionSelector, loc *models.Location) bool {
	if region.City == "" && region.Country == "" {
		name := strings.ToLower(strings.TrimSpace(region.Name))
		if name == "" {
			return false
		}
		return containsFold(loc.City, name) || containsFold(loc.Neighborhood, name) || containsFold(loc.State, name)
	}
	if region.City != "" && !strings.EqualFold(loc.City, region.City) {
		return false
	}
	if region.Country != "" &&
		!strings.EqualFold(loc.Country, region.Country) &&
		!strings.EqualFold(loc.CountryCode, region.Country) {
		return false
	}
	return true
}

// containsFold reports whether s contains lowerSub, ignoring the case of s.
func containsFold(s, lowerSub string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerSub)
}
