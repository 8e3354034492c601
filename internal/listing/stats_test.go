// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package listing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tastemap/internal/config"
	"github.com/tomtom215/tastemap/internal/models"
)

func newTestStatsClient(t *testing.T, handler http.HandlerFunc, name string) *StatsClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := &config.StatsConfig{
		Enabled: true,
		URL:     ts.URL + "/v1/palate-stats",
		Timeout: 5 * time.Second,
		Breaker: testBreakerConfig(),
	}
	c := NewStatsClient(cfg, zerolog.Nop())
	c.breaker = newBreaker[models.PreferenceStatsMap](name, cfg.Breaker, zerolog.Nop())
	return c
}

func TestStatsClient_Fetch(t *testing.T) {
	var gotPath, gotPalates, gotAuth string
	c := newTestStatsClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPalates = r.URL.Query().Get("palates")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"stats":{"r1":{"avg":4.5,"count":3},"r2":{"avg":0,"count":0}}}`))
	}, "test-stats-fetch")

	stats, err := c.Fetch(context.Background(), []string{"korean", "thai"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotPath != "/v1/palate-stats" || gotPalates != "korean,thai" {
		t.Errorf("request = %s?palates=%s", gotPath, gotPalates)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want none without an API key", gotAuth)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %v, want 2 entries", stats)
	}
	r1 := stats["r1"]
	if !r1.Valid() || r1.Avg != 4.5 || r1.Count != 3 {
		t.Errorf("r1 = %+v", r1)
	}
	r2 := stats["r2"]
	if r2.Valid() {
		t.Errorf("r2 = %+v, want invalid", r2)
	}
}

func TestStatsClient_Fetch_MissingStats(t *testing.T) {
	c := newTestStatsClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, "test-stats-missing")

	stats, err := c.Fetch(context.Background(), []string{"thai"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if stats == nil || len(stats) != 0 {
		t.Errorf("stats = %v, want empty non-nil map", stats)
	}
}

func TestStatsClient_Fetch_StatusError(t *testing.T) {
	c := newTestStatsClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, strings.Repeat("x", maxErrorBodySize+10), http.StatusServiceUnavailable)
	}, "test-stats-status")

	_, err := c.Fetch(context.Background(), []string{"thai"})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d", se.StatusCode)
	}
	if !strings.HasSuffix(se.Body, "(truncated)") {
		t.Error("oversized error body should be truncated")
	}
}

func TestStatsClient_Fetch_HonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	c := newTestStatsClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, "test-stats-cancel")
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx, []string{"thai"})
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch did not return after cancellation")
	}
}

func TestNewLimiter(t *testing.T) {
	unlimited := newLimiter(0, 0)
	for range 100 {
		if !unlimited.Allow() {
			t.Fatal("disabled limiter rejected a request")
		}
	}

	limited := newLimiter(1, 0)
	if !limited.Allow() {
		t.Error("first request should use the single burst token")
	}
	if limited.Allow() {
		t.Error("second immediate request should be limited")
	}
}

func TestReadBodyForError(t *testing.T) {
	short := readBodyForError(strings.NewReader("boom"))
	if string(short) != "boom" {
		t.Errorf("readBodyForError() = %q", short)
	}

	long := readBodyForError(strings.NewReader(strings.Repeat("a", maxErrorBodySize*2)))
	if len(long) != maxErrorBodySize+len("\n... (truncated)") {
		t.Errorf("len = %d", len(long))
	}
}
