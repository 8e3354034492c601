// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tastemap/internal/metrics"
	"github.com/tomtom215/tastemap/internal/models"
)

// ErrTooManySessions is returned by Create when the registry is full.
var ErrTooManySessions = errors.New("too many open sessions")

// Registry tracks open sessions by ID and closes idle ones.
type Registry struct {
	cfg         *Config
	deps        Dependencies
	idleTTL     time.Duration
	maxSessions int
	logger      zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a registry. maxSessions <= 0 means unlimited.
//
//nolint:gocritic // hugeParam: deps copied once at construction; logger by value for zerolog
func NewRegistry(cfg *Config, deps Dependencies, idleTTL time.Duration, maxSessions int, logger zerolog.Logger) *Registry {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Registry{
		cfg:         cfg,
		deps:        deps,
		idleTTL:     idleTTL,
		maxSessions: maxSessions,
		logger:      logger,
		sessions:    make(map[string]*Session),
	}
}

// Create opens a new session with a random ID. It does not fetch; call
// Refresh on the returned session.
//
//nolint:gocritic // hugeParam: initial passed by value for immutability
func (r *Registry) Create(userID string, userPalates []string, initial models.FilterState) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		return nil, ErrTooManySessions
	}

	id := uuid.New().String()
	s, err := NewSession(SessionOptions{
		ID:          id,
		UserID:      userID,
		UserPalates: userPalates,
		Initial:     initial,
	}, r.cfg, r.deps, r.logger)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	r.sessions[id] = s
	metrics.SetActiveSessions(len(r.sessions))
	r.logger.Info().Str("session_id", id).Int("active", len(r.sessions)).Msg("session created")
	return s, nil
}

// Get returns an open session.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete closes and removes a session. Returns false if it did not exist.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		metrics.SetActiveSessions(len(r.sessions))
	}
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IdleTTL returns how long a session may go unused before Sweep closes it.
func (r *Registry) IdleTTL() time.Duration {
	return r.idleTTL
}

// Sweep closes sessions idle since before now minus the idle TTL.
// Returns the number closed.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastAccess().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	metrics.SetActiveSessions(len(r.sessions))
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		metrics.RecordSessionsExpired(len(expired))
		r.logger.Info().Int("expired", len(expired)).Msg("idle sessions closed")
	}
	return len(expired)
}

// CloseAll closes every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = make(map[string]*Session)
	metrics.SetActiveSessions(0)
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
