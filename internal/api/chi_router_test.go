// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/tastemap/internal/middleware"
)

func TestRouter_UnknownRoute(t *testing.T) {
	srv := newTestServer(t, twoPages())

	rec := srv.do(t, http.MethodGet, "/api/v1/nothing-here", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v, want code %s", env.Error, ErrCodeNotFound)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, twoPages())

	rec := srv.do(t, http.MethodPut, "/api/v1/sessions/abc/filters", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("error = %+v, want METHOD_NOT_ALLOWED", env.Error)
	}
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	srv := newTestServer(t, twoPages())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set(middleware.RequestIDHeader, "client-req-7")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(middleware.RequestIDHeader); got != "client-req-7" {
		t.Errorf("%s = %q, want client-req-7", middleware.RequestIDHeader, got)
	}
}

func TestRouter_SecurityHeadersOnSessions(t *testing.T) {
	srv := newTestServer(t, twoPages())

	rec := srv.do(t, http.MethodGet, "/api/v1/sessions/unknown/results", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestRouter_CompressesJSON(t *testing.T) {
	srv := newTestServer(t, twoPages())
	id := srv.createSession(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id+"/results", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Errorf("Content-Encoding = %q, want gzip", got)
	}
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t, twoPages())
	srv.createSession(t, nil)

	rec := srv.do(t, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("metrics output missing api_requests_total")
	}
}
