// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package middleware provides chi-compatible infrastructure middleware.

  - RequestID: accepts or generates X-Request-ID and seeds the logging
    context with request and correlation IDs
  - PrometheusMetrics: request totals, latency histograms and in-flight
    gauge, labelled by chi route pattern

Both have the func(http.Handler) http.Handler shape so they plug into
chi's r.Use directly:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    ...
	})

PrometheusMetrics must sit inside a chi router; outside one every request
is labelled "unmatched".
*/
package middleware
