// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tastemap/internal/discovery"
	"github.com/tomtom215/tastemap/internal/geo"
	"github.com/tomtom215/tastemap/internal/models"
)

var errListingDown = errors.New("listing service unavailable")

// fakeListing serves fixed pages keyed by cursor offset.
type fakeListing struct {
	mu sync.Mutex

	pages map[int]discovery.ListingPage
	// suggestions is returned for queries whose palates were region-expanded.
	suggestions []models.RestaurantRecord
	// failAfterFirst fails every request with a non-zero cursor.
	failAfterFirst bool
	// failAll fails every request.
	failAll bool

	calls []discovery.ListingQuery
}

func (f *fakeListing) FetchPage(_ context.Context, q discovery.ListingQuery) (discovery.ListingPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)

	if f.failAll || (f.failAfterFirst && q.Cursor > 0) {
		return discovery.ListingPage{}, errListingDown
	}
	if len(q.Palates) > 1 {
		return discovery.ListingPage{Records: f.suggestions, NextCursor: len(f.suggestions)}, nil
	}
	if page, ok := f.pages[q.Cursor]; ok {
		return page, nil
	}
	return discovery.ListingPage{NextCursor: q.Cursor}, nil
}

func (f *fakeListing) lastQuery() discovery.ListingQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return discovery.ListingQuery{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeListing) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeBreaker struct {
	state string
}

func (b *fakeBreaker) BreakerState() string { return b.state }

func record(id string, rating float64, palates ...string) models.RestaurantRecord {
	return models.RestaurantRecord{
		ID:           id,
		Name:         "Restaurant " + id,
		Rating:       rating,
		RatingsCount: 10,
		PalatesNames: palates,
	}
}

// twoPages returns a listing with two pages of two records each.
func twoPages() *fakeListing {
	return &fakeListing{
		pages: map[int]discovery.ListingPage{
			0: {
				Records:    []models.RestaurantRecord{record("r1", 4.5, "korean"), record("r2", 3.8, "thai")},
				NextCursor: 2,
				HasMore:    true,
			},
			2: {
				Records:    []models.RestaurantRecord{record("r3", 4.9, "korean"), record("r4", 2.1, "french")},
				NextCursor: 4,
				HasMore:    false,
			},
		},
	}
}

type testServer struct {
	handler  http.Handler
	registry *discovery.Registry
	listing  *fakeListing
	breaker  *fakeBreaker
}

// newTestServer wires a registry over listing into the full router. Debounced
// input never commits on its own, so tests flush explicitly.
func newTestServer(t *testing.T, listing *fakeListing) *testServer {
	t.Helper()

	cfg := discovery.DefaultConfig()
	cfg.PageSize = 2
	cfg.DebounceDelay = time.Hour
	cfg.Fetch.MaxRetries = 0
	cfg.Fetch.Timeout = 5 * time.Second

	reg := discovery.NewRegistry(cfg, discovery.Dependencies{
		Listing:   listing,
		Relevance: geo.NewRelevance(25),
		Regions:   geo.DefaultRegionTable(),
	}, time.Minute, 0, zerolog.Nop())
	t.Cleanup(reg.CloseAll)

	breaker := &fakeBreaker{state: "closed"}
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"https://app.example.com"},
		CORSAllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		RateLimitDisabled:  true,
	})
	router := NewRouter(NewHandler(reg, breaker, "test"), mw)

	return &testServer{
		handler:  router.SetupChi(),
		registry: reg,
		listing:  listing,
		breaker:  breaker,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	return s.doRaw(t, method, path, &buf)
}

func (s *testServer) doRaw(t *testing.T, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// createSession opens a session and returns its ID.
func (s *testServer) createSession(t *testing.T, body interface{}) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created models.CreateSessionResponse
	decodeData(t, rec, &created)
	return created.SessionID
}

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v (body %q)", err, rec.Body.String())
	}
}

func resultIDs(resp *models.ResultsResponse) []string {
	ids := make([]string, 0, len(resp.Results))
	for i := range resp.Results {
		ids = append(ids, resp.Results[i].ID)
	}
	return ids
}
