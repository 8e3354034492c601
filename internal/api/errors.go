// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/tastemap/internal/discovery"
)

// Error codes returned in models.APIError.Code.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeSessionLimit       = "SESSION_LIMIT"
	ErrCodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// NoticeSuggestionsFailed is shown in place of a suggestion section whose
// secondary fetch failed.
const NoticeSuggestionsFailed = "Suggestions are unavailable right now."

// errSessionNotFound is reported for unknown, expired and closed sessions alike.
var errSessionNotFound = errors.New("session not found or expired")

// statusForSessionError maps engine errors that abort a request.
// Fetch failures are not among them; they travel in the view's notice.
func statusForSessionError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, discovery.ErrSessionClosed), errors.Is(err, errSessionNotFound):
		return http.StatusNotFound, ErrCodeNotFound, errSessionNotFound.Error()
	case errors.Is(err, discovery.ErrTooManySessions):
		return http.StatusServiceUnavailable, ErrCodeSessionLimit, "Too many open sessions, try again later"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "Internal server error"
	}
}
