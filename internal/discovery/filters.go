// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"sync"
	"time"

	"github.com/tomtom215/tastemap/internal/models"
)

// FilterChangeFunc is called after a debounced update is committed.
type FilterChangeFunc func(prev, next models.FilterState)

// FilterStore owns the filter state of one session. Updates are merged into a
// pending change and committed once the debounce window closes, so rapid edits
// collapse into a single effective change.
type FilterStore struct {
	mu         sync.Mutex
	state      models.FilterState
	pending    models.FilterUpdate
	hasPending bool

	debouncer *Debouncer
	onChange  FilterChangeFunc
}

// NewFilterStore creates a store seeded with initial. onChange may be nil.
//
//nolint:gocritic // hugeParam: initial copied once at construction
func NewFilterStore(initial models.FilterState, delay time.Duration, onChange FilterChangeFunc) *FilterStore {
	return &FilterStore{
		state:     initial.Clone(),
		debouncer: NewDebouncer(delay),
		onChange:  onChange,
	}
}

// Update merges u into the pending change and restarts the debounce window.
//
//nolint:gocritic // hugeParam: update passed by value for immutability
func (s *FilterStore) Update(u models.FilterUpdate) {
	s.mu.Lock()
	if s.hasPending {
		s.pending = s.pending.Merge(u)
	} else {
		s.pending = u
		s.hasPending = true
	}
	s.mu.Unlock()

	s.debouncer.Trigger(s.commit)
}

// Flush commits any pending change immediately.
func (s *FilterStore) Flush() bool {
	return s.debouncer.Flush()
}

// Cancel drops any pending change without committing it.
func (s *FilterStore) Cancel() {
	s.debouncer.Cancel()
	s.mu.Lock()
	s.pending = models.FilterUpdate{}
	s.hasPending = false
	s.mu.Unlock()
}

// Pending reports whether an uncommitted change is waiting.
func (s *FilterStore) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPending
}

// Snapshot returns a copy of the committed filter state.
func (s *FilterStore) Snapshot() models.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *FilterStore) commit() {
	s.mu.Lock()
	if !s.hasPending {
		s.mu.Unlock()
		return
	}
	prev := s.state
	next := s.pending.Apply(prev)
	s.state = next
	s.pending = models.FilterUpdate{}
	s.hasPending = false
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(prev.Clone(), next.Clone())
	}
}
