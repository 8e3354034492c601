// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch kinds used as the "kind" label on listing metrics.
const (
	FetchKindFirstPage  = "first_page"
	FetchKindNextPage   = "next_page"
	FetchKindSuggestion = "suggestion"
)

// Preference stats load outcomes.
const (
	StatsOutcomeOK        = "ok"
	StatsOutcomeCached    = "cached"
	StatsOutcomeError     = "error"
	StatsOutcomeCancelled = "cancelled"
)

var (
	// Listing Fetch Metrics
	ListingFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_fetch_duration_seconds",
			Help:    "Duration of listing page fetches in seconds, including retries",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	ListingFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_fetch_errors_total",
			Help: "Total number of listing fetches that surfaced a FetchError",
		},
		[]string{"kind"},
	)

	ListingFetchRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listing_fetch_retries_total",
			Help: "Total number of listing fetch retry attempts",
		},
	)

	ListingFetchDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_fetch_discarded_total",
			Help: "Listing fetches not applied to the candidate set",
		},
		[]string{"reason"}, // "stale_epoch", "duplicate_reset"
	)

	CandidateSetSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "candidate_set_size",
			Help:    "Candidate set size after each applied page merge",
			Buckets: prometheus.ExponentialBuckets(10, 2, 8), // 10 .. 1280
		},
	)

	// Ranking Metrics
	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rank_duration_seconds",
			Help:    "Duration of ranking pipeline runs in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	RankedResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranked_results",
			Help:    "Number of records emitted by the ranking pipeline",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 .. 512
		},
	)

	// Preference Stats Metrics
	PreferenceStatsLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preference_stats_loads_total",
			Help: "Total number of preference statistics loads by outcome",
		},
		[]string{"outcome"}, // "ok", "cached", "error", "cancelled"
	)

	// Suggestion Metrics
	SuggestionsTriggered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestions_triggered_total",
			Help: "Total number of times the suggestion fallback fired",
		},
	)

	SuggestionFetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestion_fetch_errors_total",
			Help: "Total number of suppressed suggestion sections due to fetch errors",
		},
	)

	// Session Metrics
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "discovery_sessions_active",
			Help: "Current number of open discovery sessions",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_sessions_expired_total",
			Help: "Total number of discovery sessions closed by the idle janitor",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordListingFetch records one listing fetch, including any retries.
func RecordListingFetch(kind string, duration time.Duration, err error) {
	ListingFetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err != nil {
		ListingFetchErrors.WithLabelValues(kind).Inc()
	}
}

// RecordListingRetry records a retry attempt against the listing service.
func RecordListingRetry() {
	ListingFetchRetries.Inc()
}

// RecordDiscardedFetch records a fetch whose result was not merged.
func RecordDiscardedFetch(reason string) {
	ListingFetchDiscarded.WithLabelValues(reason).Inc()
}

// RecordCandidateSetSize records the candidate set size after a merge.
func RecordCandidateSetSize(n int) {
	CandidateSetSize.Observe(float64(n))
}

// RecordRank records a ranking pipeline run.
func RecordRank(duration time.Duration, results int) {
	RankDuration.Observe(duration.Seconds())
	RankedResults.Observe(float64(results))
}

// RecordPreferenceStatsLoad records a preference statistics load outcome.
func RecordPreferenceStatsLoad(outcome string) {
	PreferenceStatsLoads.WithLabelValues(outcome).Inc()
}

// RecordSuggestion records a suggestion fallback activation.
func RecordSuggestion(err error) {
	SuggestionsTriggered.Inc()
	if err != nil {
		SuggestionFetchErrors.Inc()
	}
}

// SetActiveSessions sets the open session gauge.
func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}

// RecordSessionsExpired records sessions closed by the janitor.
func RecordSessionsExpired(n int) {
	SessionsExpired.Add(float64(n))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
