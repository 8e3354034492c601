// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultSweepInterval = time.Minute

// Sweeper closes sessions idle at now and reports how many it closed.
// Satisfied by *discovery.Registry.
type Sweeper interface {
	Sweep(now time.Time) int
}

// SessionJanitorService periodically expires idle discovery sessions.
type SessionJanitorService struct {
	sweeper  Sweeper
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewSessionJanitorService sweeps every interval. A non-positive interval becomes 1m.
func NewSessionJanitorService(sweeper Sweeper, interval time.Duration, logger zerolog.Logger) *SessionJanitorService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &SessionJanitorService{
		sweeper:  sweeper,
		interval: interval,
		now:      time.Now,
		logger:   logger.With().Str("service", "session-janitor").Logger(),
	}
}

// Serve implements suture.Service. It returns ctx.Err() when canceled.
func (j *SessionJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := j.sweeper.Sweep(j.now()); n > 0 {
				j.logger.Info().Int("expired", n).Msg("Expired idle discovery sessions")
			}
		}
	}
}

// String implements fmt.Stringer for suture's event log.
func (j *SessionJanitorService) String() string {
	return "session-janitor"
}
