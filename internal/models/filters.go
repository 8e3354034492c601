// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package models

import (
	"fmt"
	"slices"
	"strings"
)

// SortOption selects the primary ordering of discovery results.
type SortOption string

const (
	// SortMyPreference orders by the user's palate preference statistics.
	SortMyPreference SortOption = "MY_PREFERENCE"
	// SortSmart orders by rating with a coarse epsilon, then popularity.
	SortSmart SortOption = "SMART"
	// SortAsc orders by rating ascending.
	SortAsc SortOption = "ASC"
	// SortDesc orders by rating descending.
	SortDesc SortOption = "DESC"
	// SortNewest orders by creation recency.
	SortNewest SortOption = "NEWEST"
)

// ParseSortOption converts a string into a SortOption.
// An empty string returns (nil, nil), meaning "use the default".
func ParseSortOption(s string) (*SortOption, error) {
	if s == "" {
		return nil, nil
	}
	opt := SortOption(strings.ToUpper(strings.TrimSpace(s)))
	switch opt {
	case SortMyPreference, SortSmart, SortAsc, SortDesc, SortNewest:
		return &opt, nil
	default:
		return nil, fmt.Errorf("unknown sort option %q", s)
	}
}

// RegionSelector identifies a geographic region the user narrowed results to.
// A region matches by centre/radius when coordinates are set, otherwise by
// city and country containment.
type RegionSelector struct {
	Key      string  `json:"key" validate:"max=64"`
	Name     string  `json:"name,omitempty" validate:"max=128"`
	Country  string  `json:"country,omitempty" validate:"max=64"`
	City     string  `json:"city,omitempty" validate:"max=128"`
	Lat      float64 `json:"lat,omitempty" validate:"gte=-90,lte=90"`
	Lon      float64 `json:"lon,omitempty" validate:"gte=-180,lte=180"`
	RadiusKm float64 `json:"radius_km,omitempty" validate:"gte=0,lte=500"`
}

// HasCentre reports whether the region is defined by a centre point.
func (r *RegionSelector) HasCentre() bool {
	return r != nil && (r.Lat != 0 || r.Lon != 0)
}

// FilterState is the user's current filter and sort criteria.
// Nil pointer fields mean "not set".
type FilterState struct {
	SearchTerm     string          `json:"search_term,omitempty"`
	Cuisine        []string        `json:"cuisine,omitempty"`
	Palates        []string        `json:"palates,omitempty"`
	Price          *string         `json:"price,omitempty"`
	Rating         *float64        `json:"rating,omitempty"`
	Badge          *string         `json:"badge,omitempty"`
	SortOption     *SortOption     `json:"sort_option,omitempty"`
	AddressKeyword string          `json:"address_keyword,omitempty"`
	SelectedRegion *RegionSelector `json:"selected_region,omitempty"`
}

// EffectiveSort resolves the sort option, applying the default when unset.
// The default is MY_PREFERENCE for users with palate preferences, SMART otherwise.
//
//nolint:gocritic // value receiver for immutable semantics
func (f FilterState) EffectiveSort(hasUserPalates bool) SortOption {
	if f.SortOption != nil && *f.SortOption != "" {
		return *f.SortOption
	}
	if hasUserPalates {
		return SortMyPreference
	}
	return SortSmart
}

// Clone returns a deep copy so snapshots can be handed to readers safely.
//
//nolint:gocritic // value receiver for immutable semantics
func (f FilterState) Clone() FilterState {
	out := f
	if f.Cuisine != nil {
		out.Cuisine = slices.Clone(f.Cuisine)
	}
	if f.Palates != nil {
		out.Palates = slices.Clone(f.Palates)
	}
	if f.Price != nil {
		v := *f.Price
		out.Price = &v
	}
	if f.Rating != nil {
		v := *f.Rating
		out.Rating = &v
	}
	if f.Badge != nil {
		v := *f.Badge
		out.Badge = &v
	}
	if f.SortOption != nil {
		v := *f.SortOption
		out.SortOption = &v
	}
	if f.SelectedRegion != nil {
		v := *f.SelectedRegion
		out.SelectedRegion = &v
	}
	return out
}

// FilterUpdate is a partial update to FilterState.
// Only non-nil fields are applied. Clear* flags unset the corresponding field.
type FilterUpdate struct {
	SearchTerm     *string         `json:"search_term,omitempty" validate:"omitempty,max=200"`
	Cuisine        *[]string       `json:"cuisine,omitempty" validate:"omitempty,max=50,dive,slug"`
	Palates        *[]string       `json:"palates,omitempty" validate:"omitempty,max=50,dive,slug"`
	Price          *string         `json:"price,omitempty" validate:"omitempty,price_range"`
	Rating         *float64        `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Badge          *string         `json:"badge,omitempty" validate:"omitempty,max=64"`
	SortOption     *SortOption     `json:"sort_option,omitempty" validate:"omitempty,oneof=MY_PREFERENCE SMART ASC DESC NEWEST"`
	AddressKeyword *string         `json:"address_keyword,omitempty" validate:"omitempty,max=200"`
	SelectedRegion *RegionSelector `json:"selected_region,omitempty"`

	ClearCuisine bool `json:"clear_cuisine,omitempty"`
	ClearPrice   bool `json:"clear_price,omitempty"`
	ClearRating  bool `json:"clear_rating,omitempty"`
	ClearBadge   bool `json:"clear_badge,omitempty"`
	ClearSort    bool `json:"clear_sort,omitempty"`
	ClearRegion  bool `json:"clear_region,omitempty"`
}

// Apply returns a new FilterState with the update applied. The receiver is not modified.
//
//nolint:gocritic // value receiver for immutable semantics
func (u FilterUpdate) Apply(f FilterState) FilterState {
	out := f.Clone()
	if u.SearchTerm != nil {
		out.SearchTerm = strings.TrimSpace(*u.SearchTerm)
	}
	if u.Cuisine != nil {
		out.Cuisine = slices.Clone(*u.Cuisine)
	}
	if u.Palates != nil {
		out.Palates = slices.Clone(*u.Palates)
	}
	if u.Price != nil {
		v := *u.Price
		out.Price = &v
	}
	if u.Rating != nil {
		v := *u.Rating
		out.Rating = &v
	}
	if u.Badge != nil {
		v := *u.Badge
		out.Badge = &v
	}
	if u.SortOption != nil {
		v := *u.SortOption
		out.SortOption = &v
	}
	if u.AddressKeyword != nil {
		out.AddressKeyword = strings.TrimSpace(*u.AddressKeyword)
	}
	if u.SelectedRegion != nil {
		v := *u.SelectedRegion
		out.SelectedRegion = &v
	}

	if u.ClearCuisine {
		out.Cuisine = nil
	}
	if u.ClearPrice {
		out.Price = nil
	}
	if u.ClearRating {
		out.Rating = nil
	}
	if u.ClearBadge {
		out.Badge = nil
	}
	if u.ClearSort {
		out.SortOption = nil
	}
	if u.ClearRegion {
		out.SelectedRegion = nil
	}
	return out
}

// Merge combines two updates; fields set in next override fields set in u.
// Used to coalesce rapid successive edits into a single effective change.
//
//nolint:gocritic // value receiver for immutable semantics
func (u FilterUpdate) Merge(next FilterUpdate) FilterUpdate {
	out := u
	if next.SearchTerm != nil {
		out.SearchTerm = next.SearchTerm
	}
	if next.Cuisine != nil {
		out.Cuisine, out.ClearCuisine = next.Cuisine, false
	}
	if next.Palates != nil {
		out.Palates = next.Palates
	}
	if next.Price != nil {
		out.Price, out.ClearPrice = next.Price, false
	}
	if next.Rating != nil {
		out.Rating, out.ClearRating = next.Rating, false
	}
	if next.Badge != nil {
		out.Badge, out.ClearBadge = next.Badge, false
	}
	if next.SortOption != nil {
		out.SortOption, out.ClearSort = next.SortOption, false
	}
	if next.AddressKeyword != nil {
		out.AddressKeyword = next.AddressKeyword
	}
	if next.SelectedRegion != nil {
		out.SelectedRegion, out.ClearRegion = next.SelectedRegion, false
	}
	if next.ClearCuisine {
		out.Cuisine, out.ClearCuisine = nil, true
	}
	if next.ClearPrice {
		out.Price, out.ClearPrice = nil, true
	}
	if next.ClearRating {
		out.Rating, out.ClearRating = nil, true
	}
	if next.ClearBadge {
		out.Badge, out.ClearBadge = nil, true
	}
	if next.ClearSort {
		out.SortOption, out.ClearSort = nil, true
	}
	if next.ClearRegion {
		out.SelectedRegion, out.ClearRegion = nil, true
	}
	return out
}
