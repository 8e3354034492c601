// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/tastemap/internal/discovery"
	"github.com/tomtom215/tastemap/internal/logging"
	"github.com/tomtom215/tastemap/internal/models"
)

// CreateSession opens a discovery session and loads its first page.
//
// A failed first page still creates the session: the response carries an
// empty list and a notice, and the client can retry with /refresh.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateSessionRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	initial := models.FilterState{}
	if req.Filters != nil {
		initial = req.Filters.Apply(initial)
	}

	s, err := h.sessions.Create(req.UserID, req.UserPalates, initial)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	ctx := logging.ContextWithSessionID(r.Context(), s.ID())
	if err := s.Refresh(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("First page failed for new session")
	}

	resp := models.CreateSessionResponse{
		SessionID: s.ID(),
		Results:   resultsResponse(s.Results()),
	}
	if ttl := h.sessions.IdleTTL(); ttl > 0 {
		expires := s.LastAccess().Add(ttl)
		resp.ExpiresAt = &expires
	}

	logging.Ctx(ctx).Info().
		Int("user_palates", len(req.UserPalates)).
		Int("results", resp.Results.Total).
		Msg("Discovery session opened")

	respondSuccess(w, http.StatusCreated, resp, start)
}

// SessionResults returns the ranked view of the session's candidates.
func (h *Handler) SessionResults(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, _, err := h.session(r)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, resultsResponse(s.Results()), start)
}

// UpdateFilters applies a partial filter update. The update is debounced and
// answered with 202 unless ?flush=true commits it before responding.
func (h *Handler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, r, err := h.session(r)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	var update models.FilterUpdate
	if !decodeBody(w, r, &update, false) {
		return
	}

	if err := s.UpdateFilters(update); err != nil {
		respondSessionError(w, err)
		return
	}
	h.respondPending(w, r, s, start)
}

// Search sets the free-text search term. Debounced like UpdateFilters.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, r, err := h.session(r)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	var req models.SearchRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	if err := s.SetSearchTerm(req.Term); err != nil {
		respondSessionError(w, err)
		return
	}
	h.respondPending(w, r, s, start)
}

// respondPending answers a debounced event, committing it first on ?flush=true.
func (h *Handler) respondPending(w http.ResponseWriter, r *http.Request, s *discovery.Session, start time.Time) {
	if !wantsFlush(r) {
		respondSuccess(w, http.StatusAccepted, map[string]interface{}{"pending": true}, start)
		return
	}
	s.FlushFilters()
	respondSuccess(w, http.StatusOK, resultsResponse(s.Results()), start)
}

// SetUserPalates replaces the user's profile palates. The default sort and
// preference statistics follow the new set, so the updated view is returned.
func (h *Handler) SetUserPalates(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, r, err := h.session(r)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	var req models.UserPalatesRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	if err := s.SetUserPalates(r.Context(), req.Palates); err != nil {
		respondSessionError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, resultsResponse(s.Results()), start)
}

// Refresh reloads the first page with the committed filters and replaces the
// candidate set. It is how a client recovers after a failed fetch, since a
// failure stops further /more loads. A failed reload is reported in the view
// notice, not as an HTTP error.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, r, err := h.session(r)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	if err := s.Refresh(r.Context()); err != nil {
		var fetchErr *discovery.FetchError
		if !errors.As(err, &fetchErr) {
			respondSessionError(w, err)
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Refresh failed")
	}
	respondSuccess(w, http.StatusOK, resultsResponse(s.Results()), start)
}

// LoadMore fetches the next page. A failed page leaves the list as it was and
// sets the view notice; it is not an HTTP error.
func (h *Handler) LoadMore(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, r, err := h.session(r)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	if err := s.LoadMore(r.Context()); err != nil {
		var fetchErr *discovery.FetchError
		if !errors.As(err, &fetchErr) {
			respondSessionError(w, err)
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Next page failed")
	}
	respondSuccess(w, http.StatusOK, resultsResponse(s.Results()), start)
}

// Visible reports a rendered item coming into view. A page load starts when
// the item is within the scroll threshold of the end of the list.
func (h *Handler) Visible(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, r, err := h.session(r)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	var req models.VisibleRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	triggered, err := s.OnVisible(r.Context(), req.Index, req.Rendered)
	if err != nil {
		var fetchErr *discovery.FetchError
		if !errors.As(err, &fetchErr) {
			respondSessionError(w, err)
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Scroll-triggered page failed")
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"triggered": triggered,
		"view":      resultsResponse(s.Results()),
	}, start)
}

// Suggestions returns the suggestion section for a small palate-filtered
// result set. A failed secondary fetch yields an empty section with a notice.
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, r, err := h.session(r)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	sugg := s.Suggestions(r.Context())
	if sugg.Err != nil {
		logging.Ctx(r.Context()).Warn().Err(sugg.Err).Msg("Suggestion fetch failed")
	}
	respondSuccess(w, http.StatusOK, suggestionsResponse(sugg), start)
}

// DeleteSession closes a session and cancels its in-flight work.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s, r, err := h.session(r)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	if !h.sessions.Delete(s.ID()) {
		respondSessionError(w, errSessionNotFound)
		return
	}
	logging.Ctx(r.Context()).Info().Msg("Discovery session closed")
	w.WriteHeader(http.StatusNoContent)
}
