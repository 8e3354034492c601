// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package main is the entry point for the Tastemap discovery server.

The server hosts per-client discovery sessions over HTTP. Each session pages
restaurants in from the GraphQL listing service, ranks them against the
client's filters and optional palate statistics, and answers with the ranked
view.

# Application Architecture

The server runs under Suture v4 process supervision:

	RootSupervisor ("tastemap")
	├── EngineSupervisor ("engine-layer")
	│   └── Session janitor (idle session expiry)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Upstreams: listing client and optional preference statistics client,
    each behind a gobreaker circuit breaker and an x/time/rate limiter
 4. Discovery engine: region table, location relevance and session registry
 5. Supervisor Tree: session janitor and HTTP server

# Configuration

Required:
  - LISTING_URL: GraphQL endpoint of the listing service

Optional:
  - LISTING_API_KEY: Bearer token for the listing service
  - STATS_ENABLED, STATS_URL: preference statistics service
  - HTTP_PORT: Listen port (default: 8080)
  - SESSION_IDLE_TTL: Idle session expiry (default: 30m)
  - MAX_SESSIONS: Concurrent session cap (default: 10000)
  - CORS_ORIGINS: Comma-separated allowed origins
  - LOG_LEVEL, LOG_FORMAT: Logging output

Any setting can also be overridden with TASTEMAP_<SECTION>__<KEY>, for example
TASTEMAP_DISCOVERY__SUGGESTION_THRESHOLD=8.

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests within HTTP_SHUTDOWN_TIMEOUT, then every open session is
closed and its pending fetches are cancelled.

# Example Usage

	export LISTING_URL=https://listings.example.com/graphql
	export LISTING_API_KEY=secret
	export CORS_ORIGINS=https://app.example.com
	./tastemap
*/
package main
