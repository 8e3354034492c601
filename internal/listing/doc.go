// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package listing provides the HTTP clients for the upstream services the
discovery engine reads from.

  - Client implements discovery.ListingService over a GraphQL endpoint.
  - StatsClient implements discovery.PreferenceStatsService over REST.

Both clients share the same transport stack: a client-side token bucket
(golang.org/x/time/rate), a circuit breaker (sony/gobreaker/v2) that reports
its state through the circuit_breaker_* Prometheus collectors, and goccy/go-json
for encoding. Neither client retries on its own; bounded retry with backoff is
the page fetcher's job so that retries stay visible to the fetch epoch.

# Circuit Breaker

The breaker opens once the failure ratio reaches the configured threshold
over at least MinRequests requests, stays open for Timeout, then lets
MaxRequests probes through. Cancelled requests and 4xx responses (other than
429) do not count as failures since they say nothing about upstream health.

# Example

	client := listing.NewClient(&cfg.Listing, logger)
	page, err := client.FetchPage(ctx, discovery.ListingQuery{PageSize: 20})
*/
package listing
