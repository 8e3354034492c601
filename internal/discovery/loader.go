// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"context"
)

// LoadTarget is what the scroll loader drives.
type LoadTarget interface {
	HasMore() bool
	Loading() bool
	LoadMore(ctx context.Context) error
}

// ScrollLoader requests the next page when a rendered item near the end of
// the list becomes visible.
type ScrollLoader struct {
	target    LoadTarget
	threshold int
}

// NewScrollLoader creates a loader that fires when the visible index is within
// threshold items of the end.
func NewScrollLoader(target LoadTarget, threshold int) *ScrollLoader {
	return &ScrollLoader{target: target, threshold: threshold}
}

// ShouldLoad reports whether index is close enough to the end of rendered.
func (l *ScrollLoader) ShouldLoad(index, rendered int) bool {
	return index >= rendered-l.threshold
}

// OnVisible triggers LoadMore when the item at index is near the end of the
// rendered list, more pages exist, and no fetch is running.
// It returns whether a load was started.
func (l *ScrollLoader) OnVisible(ctx context.Context, index, rendered int) (bool, error) {
	if !l.ShouldLoad(index, rendered) || !l.target.HasMore() || l.target.Loading() {
		return false, nil
	}
	return true, l.target.LoadMore(ctx)
}
