// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tastemap/internal/cache"
	"github.com/tomtom215/tastemap/internal/metrics"
	"github.com/tomtom215/tastemap/internal/models"
)

// PreferenceStatsCache loads palate statistics and cancels superseded loads.
//
// Each Load captures a generation number and a cancellable context. A newer
// Load advances the generation and cancels the previous context, so a late
// response from the older request is discarded rather than applied. Failures
// of any kind resolve to an empty map.
type PreferenceStatsCache struct {
	svc    PreferenceStatsService
	memo   *cache.Cache[models.PreferenceStatsMap]
	logger zerolog.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	current    models.PreferenceStatsMap
	currentKey string
}

// NewPreferenceStatsCache creates a cache. memo may be nil to disable
// memoisation of successful responses.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPreferenceStatsCache(svc PreferenceStatsService, memo *cache.Cache[models.PreferenceStatsMap], logger zerolog.Logger) *PreferenceStatsCache {
	return &PreferenceStatsCache{
		svc:     svc,
		memo:    memo,
		logger:  logger.With().Str("component", "preference_stats").Logger(),
		current: models.PreferenceStatsMap{},
	}
}

// StatsKey returns the sorted, joined palate list so identical preference sets
// map to the same logical request regardless of order.
func StatsKey(palates []string) string {
	sorted := slices.Clone(palates)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return strings.Join(sorted, "|")
}

// Load fetches statistics for palates, cancelling any load still in flight.
// It never returns nil and never returns an error: failure, cancellation and
// supersession all yield an empty map.
func (p *PreferenceStatsCache) Load(ctx context.Context, palates []string) models.PreferenceStatsMap {
	key := StatsKey(palates)

	p.mu.Lock()
	p.generation++
	gen := p.generation
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if key != p.currentKey {
		// Never overlay statistics computed for a different palate set.
		p.current = models.PreferenceStatsMap{}
		p.currentKey = ""
	}
	if key == "" {
		p.current = models.PreferenceStatsMap{}
		p.currentKey = ""
		p.mu.Unlock()
		return models.PreferenceStatsMap{}
	}
	if p.memo != nil {
		if m, ok := p.memo.Get(key); ok {
			p.current = m
			p.currentKey = key
			p.mu.Unlock()
			metrics.RecordPreferenceStatsLoad(metrics.StatsOutcomeCached)
			return m
		}
	}
	loadCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	sorted := strings.Split(key, "|")
	m, err := p.svc.Fetch(loadCtx, sorted)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		metrics.RecordPreferenceStatsLoad(metrics.StatsOutcomeCancelled)
		p.logger.Debug().Str("palates", key).Msg("discarding superseded preference stats")
		return models.PreferenceStatsMap{}
	}
	p.cancel = nil

	if err != nil {
		statsErr := &PreferenceStatsError{
			Palates:   sorted,
			Cancelled: errors.Is(err, context.Canceled),
			Err:       err,
		}
		if statsErr.Cancelled {
			metrics.RecordPreferenceStatsLoad(metrics.StatsOutcomeCancelled)
			p.logger.Debug().Err(statsErr).Msg("preference stats cancelled")
		} else {
			metrics.RecordPreferenceStatsLoad(metrics.StatsOutcomeError)
			p.logger.Warn().Err(statsErr).Msg("preference stats unavailable, ranking without personalization")
		}
		p.current = models.PreferenceStatsMap{}
		p.currentKey = ""
		return models.PreferenceStatsMap{}
	}

	if m == nil {
		m = models.PreferenceStatsMap{}
	}
	if p.memo != nil {
		p.memo.Set(key, m)
	}
	p.current = m
	p.currentKey = key
	metrics.RecordPreferenceStatsLoad(metrics.StatsOutcomeOK)
	p.logger.Debug().Str("palates", key).Int("entries", len(m)).Msg("preference stats loaded")
	return m
}

// Cancel aborts any in-flight load. Its result will be discarded.
func (p *PreferenceStatsCache) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Invalidate aborts any in-flight load and clears the current map.
func (p *PreferenceStatsCache) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.current = models.PreferenceStatsMap{}
	p.currentKey = ""
}

// Current returns the most recently applied map and its key. The key is empty
// when no successful load is current.
// The map must be treated as read-only.
func (p *PreferenceStatsCache) Current() (models.PreferenceStatsMap, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.currentKey
}

// InFlight reports whether a load is running.
func (p *PreferenceStatsCache) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}
