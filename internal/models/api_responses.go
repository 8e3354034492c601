// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"results": [...], "loading": false, "has_more": true},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 4}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - NOT_FOUND: Session doesn't exist or has expired
//   - FETCH_ERROR: Upstream listing service failed
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// CreateSessionRequest starts a discovery session.
type CreateSessionRequest struct {
	// UserID is forwarded to the listing service as the user filter.
	UserID string `json:"user_id,omitempty" validate:"max=128"`
	// UserPalates are the palate preferences from the user's profile.
	UserPalates []string `json:"user_palates" validate:"omitempty,max=50,dive,slug"`
	// Filters optionally seeds the initial filter state.
	Filters *FilterUpdate `json:"filters,omitempty"`
}

// CreateSessionResponse returns the new session identifier.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`

	// ExpiresAt is when the session closes if left idle. Absent when sessions never expire.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Results is the view after the first page was requested.
	Results ResultsResponse `json:"results"`
}

// SearchRequest sets the free-text search term.
type SearchRequest struct {
	Term string `json:"term" validate:"max=200"`
}

// UserPalatesRequest replaces the palate preferences of a session's user.
type UserPalatesRequest struct {
	Palates []string `json:"palates" validate:"omitempty,max=50,dive,slug"`
}

// VisibleRequest reports the index of a rendered item that became visible.
type VisibleRequest struct {
	Index    int `json:"index" validate:"gte=0"`
	Rendered int `json:"rendered" validate:"gte=0"`
}

// ResultsResponse is the read-only view of a session's ranked results.
type ResultsResponse struct {
	Results []RestaurantRecord `json:"results"`
	Total   int                `json:"total"`
	Loading bool               `json:"loading"`
	HasMore bool               `json:"has_more"`
	Notice  string             `json:"notice,omitempty"`
	Sort    SortOption         `json:"sort"`
	Filters FilterState        `json:"filters"`
}

// SuggestionsResponse is the suggestion section shown below a small result set.
type SuggestionsResponse struct {
	Triggered bool               `json:"triggered"`
	Palates   []string           `json:"palates,omitempty"`
	Results   []RestaurantRecord `json:"results"`
	Notice    string             `json:"notice,omitempty"`
}

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version,omitempty"`
	ActiveSessions int     `json:"active_sessions"`
	Uptime         float64 `json:"uptime_seconds"`
	BreakerState   string  `json:"breaker_state,omitempty"`
}
