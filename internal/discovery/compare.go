// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"cmp"
	"math"

	"github.com/tomtom215/tastemap/internal/models"
)

// Comparators return a negative number when a sorts before b, positive when
// after, and zero when they are equal on every key the comparator considers.

// missingAvg places records without statistics after every record with them.
const missingAvg = -1.0

// desc orders larger values first.
func desc[T cmp.Ordered](a, b T) int {
	return cmp.Compare(b, a)
}

// descEpsilon orders larger values first, treating values closer than eps as equal.
func descEpsilon(a, b, eps float64) int {
	if math.Abs(a-b) < eps {
		return 0
	}
	return desc(a, b)
}

func avgOrMissing(r *models.RestaurantRecord) float64 {
	if r.SearchPalateStats == nil {
		return missingAvg
	}
	return r.SearchPalateStats.Avg
}

func countOrZero(r *models.RestaurantRecord) int {
	if r.SearchPalateStats == nil {
		return 0
	}
	return r.SearchPalateStats.Count
}

// compareMyPreference: avg desc (missing last), count desc, rating desc, ratingsCount desc.
func compareMyPreference(a, b *models.RestaurantRecord) int {
	if c := desc(avgOrMissing(a), avgOrMissing(b)); c != 0 {
		return c
	}
	if c := desc(countOrZero(a), countOrZero(b)); c != 0 {
		return c
	}
	if c := desc(a.Rating, b.Rating); c != 0 {
		return c
	}
	return desc(a.RatingsCount, b.RatingsCount)
}

// tieredComparator partitions by valid statistics. Tier 1 always precedes
// tier 2. Tier 1 orders by avg (epsilon), count, rating. Tier 2 orders by
// rating (epsilon), ratingsCount.
func tieredComparator(eps float64) func(a, b *models.RestaurantRecord) int {
	return func(a, b *models.RestaurantRecord) int {
		aTier1, bTier1 := a.SearchPalateStats.Valid(), b.SearchPalateStats.Valid()
		switch {
		case aTier1 && !bTier1:
			return -1
		case !aTier1 && bTier1:
			return 1
		case aTier1:
			if c := descEpsilon(a.SearchPalateStats.Avg, b.SearchPalateStats.Avg, eps); c != 0 {
				return c
			}
			if c := desc(a.SearchPalateStats.Count, b.SearchPalateStats.Count); c != 0 {
				return c
			}
			return desc(a.Rating, b.Rating)
		default:
			if c := descEpsilon(a.Rating, b.Rating, eps); c != 0 {
				return c
			}
			return desc(a.RatingsCount, b.RatingsCount)
		}
	}
}

func compareRatingAsc(a, b *models.RestaurantRecord) int {
	return cmp.Compare(a.Rating, b.Rating)
}

func compareRatingDesc(a, b *models.RestaurantRecord) int {
	return desc(a.Rating, b.Rating)
}

// compareNewest prefers explicit creation timestamps and falls back to the
// database ID, which grows with creation order.
func compareNewest(a, b *models.RestaurantRecord) int {
	if a.CreatedAt != nil && b.CreatedAt != nil {
		if c := b.CreatedAt.Compare(*a.CreatedAt); c != 0 {
			return c
		}
	}
	return desc(a.DatabaseID, b.DatabaseID)
}

// smartComparator: rating desc (epsilon), ratingsCount desc, recognitionCount desc.
func smartComparator(eps float64) func(a, b *models.RestaurantRecord) int {
	return func(a, b *models.RestaurantRecord) int {
		if c := descEpsilon(a.Rating, b.Rating, eps); c != 0 {
			return c
		}
		if c := desc(a.RatingsCount, b.RatingsCount); c != 0 {
			return c
		}
		return desc(a.Recognitions(), b.Recognitions())
	}
}
