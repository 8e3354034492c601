// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package cache

import (
	"math"
	"sort"
	"sync"
	"testing"
)

func TestSpatialHashGrid_BasicOperations(t *testing.T) {
	t.Parallel()

	grid := NewSpatialHashGrid(10)
	grid.Insert("gangnam", 37.4979, 127.0276)
	grid.Insert("hongdae", 37.5563, 126.9220)
	grid.Insert("busan", 35.1796, 129.0756)

	if grid.Size() != 3 {
		t.Errorf("Size() = %d, want 3", grid.Size())
	}

	// Re-inserting the same ID moves it rather than duplicating.
	grid.Insert("busan", 35.1587, 129.1604)
	if grid.Size() != 3 {
		t.Errorf("Size() after move = %d, want 3", grid.Size())
	}

	if !grid.Remove("busan") {
		t.Error("Remove('busan') should return true")
	}
	if grid.Remove("busan") {
		t.Error("second Remove('busan') should return false")
	}
	if grid.Size() != 2 {
		t.Errorf("Size() after remove = %d, want 2", grid.Size())
	}

	grid.Clear()
	if grid.Size() != 0 {
		t.Errorf("Size() after clear = %d, want 0", grid.Size())
	}
}

func TestSpatialHashGrid_QueryNearby(t *testing.T) {
	t.Parallel()

	grid := NewSpatialHashGrid(5)
	grid.Insert("gangnam", 37.4979, 127.0276)
	grid.Insert("hongdae", 37.5563, 126.9220)
	grid.Insert("busan", 35.1796, 129.0756)

	// Seoul City Hall, 20km radius covers both Seoul points but not Busan.
	hits := grid.QueryNearby(37.5665, 126.9780, 20)
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
		if h.DistanceKm > 20 {
			t.Errorf("hit %s at %.2fkm exceeds radius", h.ID, h.DistanceKm)
		}
	}
	sort.Strings(ids)

	if len(ids) != 2 || ids[0] != "gangnam" || ids[1] != "hongdae" {
		t.Errorf("QueryNearby = %v, want [gangnam hongdae]", ids)
	}

	if got := grid.QueryNearby(0, 0, 50); len(got) != 0 {
		t.Errorf("QueryNearby(0,0) = %v, want empty", got)
	}
}

func TestSpatialHashGrid_AntimeridianNormalization(t *testing.T) {
	t.Parallel()

	grid := NewSpatialHashGrid(10)
	grid.Insert("a", 10, 190)
	if hits := grid.QueryNearby(10, -170, 5); len(hits) != 1 {
		t.Errorf("QueryNearby across normalized longitude = %d hits, want 1", len(hits))
	}
}

func TestHaversineKm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{"same point", 37.5, 127.0, 37.5, 127.0, 0, 0.001},
		{"seoul to busan", 37.5665, 126.9780, 35.1796, 129.0756, 325, 10},
		{"one degree latitude", 0, 0, 1, 0, 111.19, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("HaversineKm() = %.2f, want %.2f ± %.2f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestSpatialHashGrid_Concurrent(t *testing.T) {
	t.Parallel()

	grid := NewSpatialHashGrid(10)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := string(rune('a'+n)) + string(rune('a'+j%26))
				grid.Insert(id, 37.5+float64(j)*0.001, 127.0)
				_ = grid.QueryNearby(37.5, 127.0, 5)
			}
		}(i)
	}
	wg.Wait()

	if grid.Size() == 0 {
		t.Error("expected entries after concurrent inserts")
	}
}

func TestSpatialHashGrid_LongitudeSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lat, lon float64
		hitLat   float64
		hitLon   float64
	}{
		{"high latitude east", 78.2232, 15.6267, 78.2232, 16.4983},
		{"high latitude west", 78.2232, 15.6267, 78.2232, 14.7551},
		{"antimeridian east", -16.5, 179.99, -16.5, -179.95},
		{"antimeridian west", -16.5, -179.95, -16.5, 179.99},
		{"longitude 180", 0, 179.95, 0, 180},
		{"pole", 89.9, 0, 89.9, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := NewSpatialHashGrid(25)
			grid.Insert("hit", tt.hitLat, tt.hitLon)

			hits := grid.QueryNearby(tt.lat, tt.lon, 25)
			if len(hits) != 1 || hits[0].ID != "hit" {
				t.Fatalf("QueryNearby = %v, want [hit]", hits)
			}
			if hits[0].DistanceKm > 25 {
				t.Errorf("DistanceKm = %.2f, want <= 25", hits[0].DistanceKm)
			}
		})
	}
}
