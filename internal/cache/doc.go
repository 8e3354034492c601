// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package cache provides thread-safe in-memory data structures used by the
discovery engine.

# Overview

The package provides:
  - Cache: a generic TTL cache with hit/miss statistics, used to memoise
    preference-statistics responses keyed by the sorted palate set
  - SpatialHashGrid: a geographic hash grid for radius queries, used by the
    location relevance service to test region containment
  - GenerateKey: stable cache keys from arbitrary parameters

# Usage Example

	import "github.com/tomtom215/tastemap/internal/cache"

	c := cache.New[models.PreferenceStatsMap](5 * time.Minute)
	defer c.Close()

	c.Set("korean|thai", stats)
	if stats, ok := c.Get("korean|thai"); ok {
	    // Use cached stats
	}

# Thread Safety

All types are safe for concurrent use. Cache runs one background goroutine
that removes expired entries; call Close to stop it.
*/
package cache
