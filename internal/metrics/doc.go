// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry via promauto and are
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Listing Metrics:
  - listing_fetch_duration_seconds: page fetch latency (histogram), label kind
  - listing_fetch_errors_total: fetches that surfaced a FetchError, label kind
  - listing_fetch_retries_total: retry attempts
  - listing_fetch_discarded_total: results dropped, label reason
  - candidate_set_size: candidate set size after each merge (histogram)

Ranking Metrics:
  - rank_duration_seconds: pipeline latency (histogram)
  - ranked_results: output size (histogram)

Personalization Metrics:
  - preference_stats_loads_total: loads by outcome (ok, cached, error, cancelled)
  - suggestions_triggered_total, suggestion_fetch_errors_total

Session Metrics:
  - discovery_sessions_active: open sessions (gauge)
  - discovery_sessions_expired_total: sessions reaped by the idle janitor

HTTP Metrics:
  - api_requests_total: labels method, endpoint, status_code
  - api_request_duration_seconds: labels method, endpoint
  - api_active_requests, api_rate_limit_hits_total

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open, label name
  - circuit_breaker_requests_total: labels name, result
  - circuit_breaker_state_transitions_total: labels name, from_state, to_state

# Example Alert

	- alert: ListingCircuitOpen
	  expr: circuit_breaker_state{name="listing"} == 2
	  for: 1m
	  labels:
	    severity: warning
*/
package metrics
