// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package api

import (
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tastemap/internal/discovery"
	"github.com/tomtom215/tastemap/internal/models"
)

func TestCreateSession_LoadsFirstPage(t *testing.T) {
	srv := newTestServer(t, twoPages())

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"user_id": "u-42",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	var resp models.CreateSessionResponse
	decodeData(t, rec, &resp)

	if resp.SessionID == "" {
		t.Fatal("SessionID is empty")
	}
	if resp.ExpiresAt == nil {
		t.Error("ExpiresAt is nil with an idle TTL configured")
	}
	if resp.Results.Total != 2 {
		t.Errorf("Total = %d, want 2", resp.Results.Total)
	}
	if !resp.Results.HasMore {
		t.Error("HasMore = false, want true")
	}
	if resp.Results.Sort != models.SortSmart {
		t.Errorf("Sort = %q, want %q", resp.Results.Sort, models.SortSmart)
	}
	if got := srv.listing.lastQuery().UserID; got != "u-42" {
		t.Errorf("listing UserID = %q, want u-42", got)
	}
	if srv.registry.Len() != 1 {
		t.Errorf("registry.Len() = %d, want 1", srv.registry.Len())
	}
}

func TestCreateSession_EmptyBody(t *testing.T) {
	srv := newTestServer(t, twoPages())

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func TestCreateSession_UserPalatesSelectMyPreference(t *testing.T) {
	srv := newTestServer(t, twoPages())

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"user_palates": []string{"korean"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var resp models.CreateSessionResponse
	decodeData(t, rec, &resp)
	if resp.Results.Sort != models.SortMyPreference {
		t.Errorf("Sort = %q, want %q", resp.Results.Sort, models.SortMyPreference)
	}
}

func TestCreateSession_InitialFiltersApplied(t *testing.T) {
	srv := newTestServer(t, twoPages())

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"filters": map[string]interface{}{
			"search_term": "noodles",
			"rating":      4,
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var resp models.CreateSessionResponse
	decodeData(t, rec, &resp)

	if got := srv.listing.lastQuery().SearchTerm; got != "noodles" {
		t.Errorf("listing SearchTerm = %q, want noodles", got)
	}
	if ids := resultIDs(&resp.Results); !slices.Equal(ids, []string{"r1"}) {
		t.Errorf("results = %v, want [r1]", ids)
	}
}

func TestCreateSession_InvalidBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{name: "malformed json", body: `{"user_id":`, wantCode: ErrCodeInvalidJSON},
		{name: "bad palate slug", body: `{"user_palates":["Not A Slug"]}`, wantCode: ErrCodeValidation},
		{name: "rating out of range", body: `{"filters":{"rating":7}}`, wantCode: ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, twoPages())
			rec := srv.doRaw(t, http.MethodPost, "/api/v1/sessions", strings.NewReader(tt.body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			env := decodeEnvelope(t, rec)
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
			if srv.registry.Len() != 0 {
				t.Errorf("registry.Len() = %d, want 0", srv.registry.Len())
			}
		})
	}
}

func TestCreateSession_FirstPageFailureStillCreates(t *testing.T) {
	listing := twoPages()
	listing.failAll = true
	srv := newTestServer(t, listing)

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var resp models.CreateSessionResponse
	decodeData(t, rec, &resp)

	if resp.Results.Total != 0 {
		t.Errorf("Total = %d, want 0", resp.Results.Total)
	}
	if resp.Results.Results == nil {
		t.Error("Results is null, want empty list")
	}
	if resp.Results.Notice != discovery.NoticeFetchFailed {
		t.Errorf("Notice = %q, want %q", resp.Results.Notice, discovery.NoticeFetchFailed)
	}
}

func TestSessionResults_UnknownSession(t *testing.T) {
	srv := newTestServer(t, twoPages())

	rec := srv.do(t, http.MethodGet, "/api/v1/sessions/does-not-exist/results", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	env := decodeEnvelope(t, rec)
	if env.Status != "error" {
		t.Errorf("status = %q, want error", env.Status)
	}
	if env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v, want code %s", env.Error, ErrCodeNotFound)
	}
}

func TestUpdateFilters_DebouncedUntilFlush(t *testing.T) {
	srv := newTestServer(t, twoPages())
	id := srv.createSession(t, nil)

	rec := srv.do(t, http.MethodPatch, "/api/v1/sessions/"+id+"/filters", map[string]interface{}{
		"sort_option": "DESC",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	var pending map[string]bool
	decodeData(t, rec, &pending)
	if !pending["pending"] {
		t.Errorf("data = %v, want pending=true", pending)
	}

	// Not committed yet.
	rec = srv.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/results", nil)
	var view models.ResultsResponse
	decodeData(t, rec, &view)
	if view.Sort != models.SortSmart {
		t.Errorf("Sort before flush = %q, want %q", view.Sort, models.SortSmart)
	}

	rec = srv.do(t, http.MethodPatch, "/api/v1/sessions/"+id+"/filters?flush=true", map[string]interface{}{
		"rating": 4,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("flush status = %d, want %d", rec.Code, http.StatusOK)
	}
	decodeData(t, rec, &view)
	if view.Sort != models.SortDesc {
		t.Errorf("Sort after flush = %q, want %q", view.Sort, models.SortDesc)
	}
	if ids := resultIDs(&view); !slices.Equal(ids, []string{"r1"}) {
		t.Errorf("results = %v, want [r1]", ids)
	}
	if view.Filters.Rating == nil || *view.Filters.Rating != 4 {
		t.Errorf("Filters.Rating = %v, want 4", view.Filters.Rating)
	}
}

func TestUpdateFilters_DisplayFiltersDoNotRefetch(t *testing.T) {
	srv := newTestServer(t, twoPages())
	id := srv.createSession(t, nil)
	before := srv.listing.callCount()

	rec := srv.do(t, http.MethodPatch, "/api/v1/sessions/"+id+"/filters?flush=1", map[string]interface{}{
		"sort_option": "ASC",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var view models.ResultsResponse
	decodeData(t, rec, &view)

	if ids := resultIDs(&view); !slices.Equal(ids, []string{"r2", "r1"}) {
		t.Errorf("results = %v, want [r2 r1]", ids)
	}
	if after := srv.listing.callCount(); after != before {
		t.Errorf("listing calls = %d, want %d", after, before)
	}
}

func TestUpdateFilters_ValidationError(t *testing.T) {
	srv := newTestServer(t, twoPages())
	id := srv.createSession(t, nil)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "rating above five", body: map[string]interface{}{"rating": 7}},
		{name: "unknown sort", body: map[string]interface{}{"sort_option": "RANDOM"}},
		{name: "bad price", body: map[string]interface{}{"price": "cheap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPatch, "/api/v1/sessions/"+id+"/filters", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			env := decodeEnvelope(t, rec)
			if env.Error == nil || env.Error.Code != ErrCodeValidation {
				t.Errorf("error = %+v, want code %s", env.Error, ErrCodeValidation)
			}
		})
	}
}

func TestUpdateFilters_UnknownSession(t *testing.T) {
	srv := newTestServer(t, twoPages())

	rec := srv.do(t, http.MethodPatch, "/api/v1/sessions/nope/filters", map[string]interface{}{"rating": 3})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSearch_FlushRestartsEpoch(t *testing.T) {
	srv := newTestServer(t, twoPages())
	id := srv.createSession(t, nil)
	before := srv.listing.callCount()

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/search?flush=true", map[string]string{
		"term": "bibimbap",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	if after := srv.listing.callCount(); after != before+1 {
		t.Errorf("listing calls = %d, want %d", after, before+1)
	}
	q := srv.listing.lastQuery()
	if q.SearchTerm != "bibimbap" {
		t.Errorf("SearchTerm = %q, want bibimbap", q.SearchTerm)
	}
	if q.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", q.Cursor)
	}

	var view models.ResultsResponse
	decodeData(t, rec, &view)
	if view.Filters.SearchTerm != "bibimbap" {
		t.Errorf("Filters.SearchTerm = %q, want bibimbap", view.Filters.SearchTerm)
	}
}

func TestSearch_Pending(t *testing.T) {
	srv := newTestServer(t, twoPages())
	id := srv.createSession(t, nil)
	before := srv.listing.callCount()

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/search", map[string]string{"term": "tacos"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if after := srv.listing.callCount(); after != before {
		t.Errorf("listing calls = %d, want %d before the debounce fires", after, before)
	}
}

func TestSetUserPalates(t *testing.T) {
	srv := newTestServer(t, twoPages())
	id := srv.createSession(t, nil)

	rec := srv.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/palates", map[string][]string{
		"palates": {"korean", "thai"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var view models.ResultsResponse
	decodeData(t, rec, &view)
	if view.Sort != models.SortMyPreference {
		t.Errorf("Sort = %q, want %q", view.Sort, models.SortMyPreference)
	}

	rec = srv.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/palates", map[string][]string{
		"palates": {"Korean BBQ"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid slug status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLoadMore_MergesNextPage(t *testing.T) {
	srv := newTestServer(t, twoPages())
	id := srv.createSession(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/more", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var view models.ResultsResponse
	decodeData(t, rec, &view)

	if view.Total != 4 {
		t.Errorf("Total = %d, want 4", view.Total)
	}
	if view.HasMore {
		t.Error("HasMore = true after the last page")
	}
	if got := srv.listing.lastQuery().Cursor; got != 2 {
		t.Errorf("Cursor = %d, want 2", got)
	}
}

func TestLoadMore_FailureIsNotice(t *testing.T) {
	listing := twoPages()
	listing.failAfterFirst = true
	srv := newTestServer(t, listing)
	id := srv.createSession(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/more", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var view models.ResultsResponse
	decodeData(t, rec, &view)

	if view.Total != 2 {
		t.Errorf("Total = %d, want 2 (first page kept)", view.Total)
	}
	if view.Notice != discovery.NoticeFetchFailed {
		t.Errorf("Notice = %q, want %q", view.Notice, discovery.NoticeFetchFailed)
	}
	if view.HasMore {
		t.Error("HasMore = true after a failed page")
	}
}

func TestRefresh_RecoversFailedFirstPage(t *testing.T) {
	listing := twoPages()
	listing.failAll = true
	srv := newTestServer(t, listing)
	id := srv.createSession(t, nil)

	// A failed first page stops further page loads.
	before := listing.callCount()
	rec := srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/more", nil)
	var view models.ResultsResponse
	decodeData(t, rec, &view)
	if view.Total != 0 || view.HasMore {
		t.Fatalf("after /more: Total = %d, HasMore = %v, want 0, false", view.Total, view.HasMore)
	}
	if after := listing.callCount(); after != before {
		t.Errorf("/more made %d listing calls, want 0", after-before)
	}

	listing.mu.Lock()
	listing.failAll = false
	listing.mu.Unlock()

	rec = srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var refreshed models.ResultsResponse
	decodeData(t, rec, &refreshed)

	if ids := resultIDs(&refreshed); !slices.Equal(ids, []string{"r1", "r2"}) {
		t.Errorf("results = %v, want [r1 r2]", ids)
	}
	if !refreshed.HasMore {
		t.Error("HasMore = false after a successful refresh")
	}
	if refreshed.Notice != "" {
		t.Errorf("Notice = %q, want empty", refreshed.Notice)
	}
	if got := listing.lastQuery().Cursor; got != 0 {
		t.Errorf("refresh Cursor = %d, want 0", got)
	}

	rec = srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/more", nil)
	var more models.ResultsResponse
	decodeData(t, rec, &more)
	if more.Total != 4 {
		t.Errorf("Total after /more = %d, want 4", more.Total)
	}
}

func TestRefresh_FailureIsNotice(t *testing.T) {
	listing := twoPages()
	srv := newTestServer(t, listing)
	id := srv.createSession(t, nil)

	listing.mu.Lock()
	listing.failAll = true
	listing.mu.Unlock()

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var view models.ResultsResponse
	decodeData(t, rec, &view)

	if view.Total != 2 {
		t.Errorf("Total = %d, want 2 (previous page kept)", view.Total)
	}
	if view.Notice != discovery.NoticeFetchFailed {
		t.Errorf("Notice = %q, want %q", view.Notice, discovery.NoticeFetchFailed)
	}
}

func TestRefresh_UnknownSession(t *testing.T) {
	srv := newTestServer(t, twoPages())

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions/missing/refresh", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestVisible(t *testing.T) {
	tests := []struct {
		name          string
		index         int
		wantTriggered bool
		wantTotal     int
	}{
		{name: "far from the end", index: 0, wantTriggered: false, wantTotal: 2},
		{name: "near the end", index: 8, wantTriggered: true, wantTotal: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, twoPages())
			id := srv.createSession(t, nil)

			rec := srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/visible", map[string]int{
				"index":    tt.index,
				"rendered": 10,
			})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}

			var resp struct {
				Triggered bool                   `json:"triggered"`
				View      models.ResultsResponse `json:"view"`
			}
			decodeData(t, rec, &resp)
			if resp.Triggered != tt.wantTriggered {
				t.Errorf("Triggered = %v, want %v", resp.Triggered, tt.wantTriggered)
			}
			if resp.View.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", resp.View.Total, tt.wantTotal)
			}
		})
	}
}

func TestVisible_NegativeIndex(t *testing.T) {
	srv := newTestServer(t, twoPages())
	id := srv.createSession(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/visible", map[string]int{"index": -1, "rendered": 2})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSuggestions(t *testing.T) {
	listing := twoPages()
	listing.suggestions = []models.RestaurantRecord{
		record("r1", 4.5, "korean"),
		record("s1", 4.0, "japanese"),
	}
	srv := newTestServer(t, listing)
	id := srv.createSession(t, map[string]interface{}{
		"filters": map[string]interface{}{"palates": []string{"east-asian"}},
	})

	rec := srv.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/suggestions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp models.SuggestionsResponse
	decodeData(t, rec, &resp)

	if !resp.Triggered {
		t.Fatal("Triggered = false, want true")
	}
	if !slices.Contains(resp.Palates, "korean") {
		t.Errorf("Palates = %v, want region expanded to include korean", resp.Palates)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "s1" {
		t.Errorf("Results = %v, want only s1", resp.Results)
	}
	if resp.Notice != "" {
		t.Errorf("Notice = %q, want empty", resp.Notice)
	}
}

func TestSuggestions_NotTriggeredWithoutPalates(t *testing.T) {
	srv := newTestServer(t, twoPages())
	id := srv.createSession(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/suggestions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp models.SuggestionsResponse
	decodeData(t, rec, &resp)

	if resp.Triggered {
		t.Error("Triggered = true without a palate filter")
	}
	if resp.Results == nil {
		t.Error("Results is null, want empty list")
	}
}

func TestSuggestions_FailureNotice(t *testing.T) {
	listing := twoPages()
	srv := newTestServer(t, listing)
	id := srv.createSession(t, map[string]interface{}{
		"filters": map[string]interface{}{"palates": []string{"east-asian"}},
	})

	listing.mu.Lock()
	listing.failAll = true
	listing.mu.Unlock()

	rec := srv.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/suggestions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp models.SuggestionsResponse
	decodeData(t, rec, &resp)

	if resp.Notice != NoticeSuggestionsFailed {
		t.Errorf("Notice = %q, want %q", resp.Notice, NoticeSuggestionsFailed)
	}
	if len(resp.Results) != 0 {
		t.Errorf("Results = %v, want empty", resp.Results)
	}
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t, twoPages())
	id := srv.createSession(t, nil)

	rec := srv.do(t, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if srv.registry.Len() != 0 {
		t.Errorf("registry.Len() = %d, want 0", srv.registry.Len())
	}

	rec = srv.do(t, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/results", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("results after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSessionLimit(t *testing.T) {
	srv := newTestServer(t, twoPages())
	cfg := discovery.DefaultConfig()
	cfg.PageSize = 2
	srv.registry = discovery.NewRegistry(cfg, discovery.Dependencies{Listing: srv.listing}, 0, 1, zerolog.Nop())
	t.Cleanup(srv.registry.CloseAll)
	srv.handler = NewRouter(NewHandler(srv.registry, nil, "test"),
		NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})).SetupChi()

	srv.createSession(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != ErrCodeSessionLimit {
		t.Errorf("error = %+v, want code %s", env.Error, ErrCodeSessionLimit)
	}
}
