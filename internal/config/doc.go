// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package config provides centralized configuration management for Tastemap.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The merged result is validated with
struct tags (go-playground/validator) and explicit cross-field rules.

# Configuration File

The first existing path wins: $CONFIG_PATH, ./config.yaml, ./config.yml,
/etc/tastemap/config.yaml, /etc/tastemap/config.yml.

	server:
	  port: 8080
	listing:
	  url: https://api.example.com/graphql
	  api_key: secret
	stats:
	  enabled: true
	  url: https://api.example.com/v1/palate-stats
	discovery:
	  page_size: 20
	  debounce_delay: 300ms
	regions:
	  default_radius_km: 25
	  overrides:
	    nordic: [danish, swedish, norwegian, finnish]

# Environment Variables

Short names cover the common settings:

  - HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT, ENVIRONMENT
  - LISTING_URL, LISTING_API_KEY, LISTING_TIMEOUT, LISTING_RATE_LIMIT
  - STATS_ENABLED, STATS_URL, STATS_API_KEY
  - DISCOVERY_PAGE_SIZE, DISCOVERY_DEBOUNCE, DISCOVERY_MAX_RETRIES
  - SESSION_IDLE_TTL, MAX_SESSIONS
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT, CORS_ORIGINS
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Any other key is reachable with the TASTEMAP_ prefix, using a double
underscore for nesting:

	TASTEMAP_LISTING__BREAKER__FAILURE_RATIO=0.5
	TASTEMAP_DISCOVERY__SMART_EPSILON=0.2

Variables that match neither form are ignored.

# Thread Safety

Config is immutable after Load() and safe for concurrent reads.
*/
package config
