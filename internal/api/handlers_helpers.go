// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tastemap/internal/discovery"
	"github.com/tomtom215/tastemap/internal/logging"
	"github.com/tomtom215/tastemap/internal/models"
	"github.com/tomtom215/tastemap/internal/validation"
)

// maxBodyBytes bounds request bodies. Filter updates are small.
const maxBodyBytes = 64 << 10

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response. Session views change on every event,
// so nothing is cacheable.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope. start is when handling began.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	respondAPIError(w, status, &models.APIError{Code: code, Message: message}, err)
}

// respondAPIError sends a prepared APIError, logging err if set.
func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError, err error) {
	if err != nil {
		event := logging.Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Error()
		}
		event.Str("code", sanitizeLogValue(apiErr.Code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: apiErr,
	})
}

// respondSessionError maps a session lookup or operation failure.
func respondSessionError(w http.ResponseWriter, err error) {
	status, code, message := statusForSessionError(err)
	var logged error
	if status >= http.StatusInternalServerError {
		logged = err
	}
	respondError(w, status, code, message, logged)
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes, or a models.APIError if validation fails.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// decodeBody reads a JSON body into dst and validates it. An empty body
// leaves dst at its zero value when allowEmpty is set. On failure the error
// response has already been written and false is returned.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)

	switch {
	case errors.Is(err, io.EOF) && allowEmpty:
	case err != nil:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, ErrCodeInvalidJSON, "Request body too large", nil)
			return false
		}
		respondError(w, http.StatusBadRequest, ErrCodeInvalidJSON, "Request body is not valid JSON", nil)
		return false
	}

	if apiErr := validateRequest(dst); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return false
	}
	return true
}

// session resolves the {id} URL parameter and tags the request context
// with it for logging.
func (h *Handler) session(r *http.Request) (*discovery.Session, *http.Request, error) {
	id := chi.URLParam(r, "id")
	s, ok := h.sessions.Get(id)
	if !ok {
		return nil, r, errSessionNotFound
	}
	ctx := logging.ContextWithSessionID(r.Context(), id)
	return s, r.WithContext(ctx), nil
}

// wantsFlush reports whether the client asked to commit debounced input now.
func wantsFlush(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("flush")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

//nolint:gocritic // hugeParam: View passed by value as returned by Session.Results
func resultsResponse(v discovery.View) models.ResultsResponse {
	records := v.Records
	if records == nil {
		records = []models.RestaurantRecord{}
	}
	return models.ResultsResponse{
		Results: records,
		Total:   len(records),
		Loading: v.Loading,
		HasMore: v.HasMore,
		Notice:  v.Notice,
		Sort:    v.Sort,
		Filters: v.Filters,
	}
}

func suggestionsResponse(s discovery.Suggestions) models.SuggestionsResponse {
	records := s.Records
	if records == nil {
		records = []models.RestaurantRecord{}
	}
	resp := models.SuggestionsResponse{
		Triggered: s.Triggered,
		Palates:   s.Palates,
		Results:   records,
	}
	if s.Err != nil {
		resp.Notice = NoticeSuggestionsFailed
	}
	return resp
}
