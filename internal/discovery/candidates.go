// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"github.com/tomtom215/tastemap/internal/models"
)

// CandidateSet accumulates the records fetched in one search epoch.
// Records are unique by ID. Merging a record whose ID is already present
// replaces the stored record in place, so first-seen order is kept.
//
// CandidateSet is not safe for concurrent use.
type CandidateSet struct {
	order []string
	byID  map[string]models.RestaurantRecord
}

// NewCandidateSet returns an empty set.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{byID: make(map[string]models.RestaurantRecord)}
}

// Merge unions records into the set by ID. Returns the number of new IDs.
func (c *CandidateSet) Merge(records []models.RestaurantRecord) int {
	added := 0
	for i := range records {
		id := records[i].ID
		if _, ok := c.byID[id]; !ok {
			c.order = append(c.order, id)
			added++
		}
		c.byID[id] = records[i]
	}
	return added
}

// Replace discards the current contents and merges records.
func (c *CandidateSet) Replace(records []models.RestaurantRecord) {
	c.order = c.order[:0]
	c.byID = make(map[string]models.RestaurantRecord, len(records))
	c.Merge(records)
}

// Len returns the number of records.
func (c *CandidateSet) Len() int {
	return len(c.order)
}

// Contains reports whether id is present.
func (c *CandidateSet) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Records returns a copy of the records in first-seen order.
func (c *CandidateSet) Records() []models.RestaurantRecord {
	out := make([]models.RestaurantRecord, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// dedupePage removes records without an ID and collapses repeated IDs within
// one page, keeping the last occurrence at the position of the first.
func dedupePage(records []models.RestaurantRecord) (out []models.RestaurantRecord, dropped int) {
	pos := make(map[string]int, len(records))
	out = make([]models.RestaurantRecord, 0, len(records))
	for i := range records {
		r := records[i]
		if r.ID == "" {
			dropped++
			continue
		}
		if at, ok := pos[r.ID]; ok {
			out[at] = r
			dropped++
			continue
		}
		pos[r.ID] = len(out)
		out = append(out, r)
	}
	return out, dropped
}
