// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package cache

import (
	"math"
	"sync"
)

// earthRadiusKm is the mean Earth radius used by HaversineKm.
const earthRadiusKm = 6371.0

// kmPerDegree approximates one degree of latitude.
const kmPerDegree = 111.0

// SpatialHashGrid divides geographic space into cells for fast proximity queries.
// Instead of comparing a region centre against every restaurant, only the cells
// overlapping the search radius are inspected.
//
// Time Complexity:
//   - Insert: O(1)
//   - Query nearby: O(k) where k = entries in nearby cells
//   - Remove: O(1) amortised
type SpatialHashGrid struct {
	mu       sync.RWMutex
	cells    map[CellKey][]*SpatialEntry
	cellSize float64 // degrees of latitude
	// lonCells columns of lonSize degrees tile each parallel exactly, so X
	// wraps modulo lonCells at the antimeridian.
	lonCells int
	lonSize  float64
	entries  map[string]*SpatialEntry
}

// CellKey represents a grid cell coordinate.
type CellKey struct {
	X, Y int
}

// SpatialEntry is an indexed point.
type SpatialEntry struct {
	ID      string
	Lat     float64
	Lon     float64
	cellKey CellKey
}

// Neighbor is a query hit with its distance from the query point.
type Neighbor struct {
	ID         string
	DistanceKm float64
}

// NewSpatialHashGrid creates a grid with cells of roughly cellSizeKm on a side.
// Non-positive sizes default to 10km, which suits city-scale region queries.
func NewSpatialHashGrid(cellSizeKm float64) *SpatialHashGrid {
	if cellSizeKm <= 0 {
		cellSizeKm = 10
	}
	cellSize := cellSizeKm / kmPerDegree
	lonCells := int(math.Ceil(360 / cellSize))
	return &SpatialHashGrid{
		cells:    make(map[CellKey][]*SpatialEntry),
		cellSize: cellSize,
		lonCells: lonCells,
		lonSize:  360 / float64(lonCells),
		entries:  make(map[string]*SpatialEntry),
	}
}

func (g *SpatialHashGrid) cellKeyFor(lat, lon float64) CellKey {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	if lon == 180 {
		lon = -180
	}
	return CellKey{
		X: int(math.Floor((lon+180)/g.lonSize)) % g.lonCells,
		Y: int(math.Floor(lat / g.cellSize)),
	}
}

// Insert adds or moves an entry.
func (g *SpatialHashGrid) Insert(id string, lat, lon float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.entries[id]; ok {
		g.removeFromCellUnlocked(existing)
	}

	e := &SpatialEntry{ID: id, Lat: lat, Lon: lon, cellKey: g.cellKeyFor(lat, lon)}
	g.cells[e.cellKey] = append(g.cells[e.cellKey], e)
	g.entries[id] = e
}

// Remove removes an entry by ID.
func (g *SpatialHashGrid) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[id]
	if !ok {
		return false
	}
	g.removeFromCellUnlocked(e)
	delete(g.entries, id)
	return true
}

// removeFromCellUnlocked removes an entry from its cell (caller must hold lock).
func (g *SpatialHashGrid) removeFromCellUnlocked(e *SpatialEntry) {
	cell := g.cells[e.cellKey]
	for i, c := range cell {
		if c.ID == e.ID {
			cell[i] = cell[len(cell)-1]
			cell = cell[:len(cell)-1]
			break
		}
	}
	if len(cell) == 0 {
		delete(g.cells, e.cellKey)
		return
	}
	g.cells[e.cellKey] = cell
}

// QueryNearby returns all entries within radiusKm of the point.
// Results are unordered.
func (g *SpatialHashGrid) QueryNearby(lat, lon, radiusKm float64) []Neighbor {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ySpan := int(math.Ceil(radiusKm/kmPerDegree/g.cellSize)) + 1
	centre := g.cellKeyFor(lat, lon)
	xs := g.columnsAround(centre.X, lat, radiusKm)

	var out []Neighbor
	for _, x := range xs {
		for dy := -ySpan; dy <= ySpan; dy++ {
			for _, e := range g.cells[CellKey{X: x, Y: centre.Y + dy}] {
				if d := HaversineKm(lat, lon, e.Lat, e.Lon); d <= radiusKm {
					out = append(out, Neighbor{ID: e.ID, DistanceKm: d})
				}
			}
		}
	}
	return out
}

// columnsAround returns the X indices a query of radiusKm around a point at
// lat must inspect. A degree of longitude shrinks with cos(lat), so the span
// is measured at the query band's edge nearest the pole. Indices wrap at the
// antimeridian and each column appears once.
func (g *SpatialHashGrid) columnsAround(centreX int, lat, radiusKm float64) []int {
	edge := math.Min(90, math.Abs(lat)+radiusKm/kmPerDegree)
	span := g.lonCells
	if c := math.Cos(edge * math.Pi / 180); c > 1e-6 {
		span = int(math.Ceil(radiusKm/(kmPerDegree*c)/g.lonSize)) + 1
	}

	if 2*span+1 >= g.lonCells {
		xs := make([]int, g.lonCells)
		for i := range xs {
			xs[i] = i
		}
		return xs
	}

	xs := make([]int, 0, 2*span+1)
	for dx := -span; dx <= span; dx++ {
		xs = append(xs, ((centreX+dx)%g.lonCells+g.lonCells)%g.lonCells)
	}
	return xs
}

// Size returns the total number of entries.
func (g *SpatialHashGrid) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Clear removes all entries.
func (g *SpatialHashGrid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cells = make(map[CellKey][]*SpatialEntry)
	g.entries = make(map[string]*SpatialEntry)
}

// HaversineKm calculates the great-circle distance between two points in km.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
