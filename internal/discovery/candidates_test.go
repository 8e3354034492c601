// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"slices"
	"testing"

	"github.com/tomtom215/tastemap/internal/models"
)

func TestCandidateSet_MergeAcrossPages(t *testing.T) {
	t.Parallel()

	set := NewCandidateSet()
	if added := set.Merge([]models.RestaurantRecord{rec("A", 4, 1), rec("B", 4, 1)}); added != 2 {
		t.Errorf("first Merge added = %d, want 2", added)
	}

	updatedB := rec("B", 4.9, 77)
	if added := set.Merge([]models.RestaurantRecord{updatedB, rec("C", 3, 1)}); added != 1 {
		t.Errorf("second Merge added = %d, want 1", added)
	}

	got := set.Records()
	if want := []string{"A", "B", "C"}; !slices.Equal(ids(got), want) {
		t.Fatalf("Records() = %v, want %v", ids(got), want)
	}
	if got[1].RatingsCount != 77 {
		t.Errorf("B.RatingsCount = %d, want 77 (latest fetch wins)", got[1].RatingsCount)
	}
}

func TestCandidateSet_MergeIdempotent(t *testing.T) {
	t.Parallel()

	page := []models.RestaurantRecord{rec("A", 4, 1), rec("B", 3, 2)}
	set := NewCandidateSet()
	set.Merge(page)
	before := set.Records()

	if added := set.Merge(page); added != 0 {
		t.Errorf("re-merge added = %d, want 0", added)
	}
	if after := set.Records(); !slices.EqualFunc(before, after, func(a, b models.RestaurantRecord) bool {
		return a.ID == b.ID && a.Rating == b.Rating
	}) {
		t.Errorf("re-merge changed set: %v -> %v", ids(before), ids(after))
	}
}

func TestCandidateSet_Replace(t *testing.T) {
	t.Parallel()

	set := NewCandidateSet()
	set.Merge([]models.RestaurantRecord{rec("A", 4, 1), rec("B", 4, 1)})
	set.Replace([]models.RestaurantRecord{rec("C", 4, 1)})

	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1", set.Len())
	}
	if set.Contains("A") {
		t.Error("Contains(A) = true after Replace")
	}
	if !set.Contains("C") {
		t.Error("Contains(C) = false after Replace")
	}
}

func TestCandidateSet_RecordsIsCopy(t *testing.T) {
	t.Parallel()

	set := NewCandidateSet()
	set.Merge([]models.RestaurantRecord{rec("A", 4, 1)})

	out := set.Records()
	out[0].Rating = 0

	if got := set.Records()[0].Rating; got != 4 {
		t.Errorf("stored rating = %v, want 4", got)
	}
}

func TestDedupePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		in          []models.RestaurantRecord
		wantIDs     []string
		wantDropped int
	}{
		{
			name:    "no duplicates",
			in:      []models.RestaurantRecord{rec("A", 1, 1), rec("B", 1, 1)},
			wantIDs: []string{"A", "B"},
		},
		{
			name:        "repeat collapses to first position",
			in:          []models.RestaurantRecord{rec("A", 1, 1), rec("B", 1, 1), rec("A", 2, 2)},
			wantIDs:     []string{"A", "B"},
			wantDropped: 1,
		},
		{
			name:        "missing id dropped",
			in:          []models.RestaurantRecord{rec("", 1, 1), rec("B", 1, 1)},
			wantIDs:     []string{"B"},
			wantDropped: 1,
		},
		{
			name:    "empty",
			in:      nil,
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := dedupePage(tt.in)
			if !slices.Equal(ids(got), tt.wantIDs) {
				t.Errorf("dedupePage() = %v, want %v", ids(got), tt.wantIDs)
			}
			if dropped != tt.wantDropped {
				t.Errorf("dropped = %d, want %d", dropped, tt.wantDropped)
			}
		})
	}

	got, _ := dedupePage([]models.RestaurantRecord{rec("A", 1, 1), rec("A", 3, 9)})
	if got[0].Rating != 3 {
		t.Errorf("kept rating = %v, want last occurrence 3", got[0].Rating)
	}
}
