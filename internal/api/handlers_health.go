// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/tastemap/internal/models"
)

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady handles readiness probe requests (Kubernetes-style).
//
// The server is not ready while the listing breaker is open: every new
// session would open on an empty page with a fetch-failure notice.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	health := models.HealthStatus{
		Status:         "ready",
		Version:        h.version,
		ActiveSessions: h.sessions.Len(),
		Uptime:         time.Since(h.startTime).Seconds(),
	}
	if h.listing != nil {
		health.BreakerState = h.listing.BreakerState()
	}

	if health.BreakerState == "open" {
		health.Status = "not_ready"
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status: "not_ready",
			Data:   health,
			Metadata: models.Metadata{
				Timestamp:   time.Now(),
				QueryTimeMS: time.Since(start).Milliseconds(),
			},
		})
		return
	}

	respondSuccess(w, http.StatusOK, health, start)
}
