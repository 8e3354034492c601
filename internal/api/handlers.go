// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package api

import (
	"time"

	"github.com/tomtom215/tastemap/internal/discovery"
)

// BreakerReporter exposes an upstream circuit breaker for readiness checks.
// Satisfied by *listing.Client.
type BreakerReporter interface {
	BreakerState() string
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_health.go: liveness and readiness
//   - handlers_sessions.go: discovery session lifecycle and events
//   - handlers_helpers.go: response and request helpers
type Handler struct {
	sessions  *discovery.Registry
	listing   BreakerReporter
	version   string
	startTime time.Time
}

// NewHandler creates the API handler. listing may be nil, in which case
// readiness only reflects that the process is up.
func NewHandler(sessions *discovery.Registry, listing BreakerReporter, version string) *Handler {
	return &Handler{
		sessions:  sessions,
		listing:   listing,
		version:   version,
		startTime: time.Now(),
	}
}
