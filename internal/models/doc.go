// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package models defines data structures shared across Tastemap.

Key Components:

  - RestaurantRecord: immutable-per-fetch snapshot of a restaurant listing
  - PalateStats: personalization signal (average + count) attached to a record
  - FilterState: the user's filter and sort criteria for discovery
  - RegionSelector: geographic region used to narrow and order results
  - PaginationCursor: integer offset plus continuation flag
  - APIResponse: standardized HTTP response envelope

Records are treated as values. Components that need to attach data to a record
(for example the preference-stats overlay during ranking) copy it first; the
record stored in a candidate set is never mutated in place.

Usage Example:

	import "github.com/tomtom215/tastemap/internal/models"

	sort := models.SortSmart
	state := models.FilterState{
	    Palates:    []string{"korean"},
	    SortOption: &sort,
	}
*/
package models
