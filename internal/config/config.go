// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Upstreams:
//     - Listing: GraphQL restaurant listing service
//     - Stats: Preference statistics REST service (optional)
//
//  2. Engine:
//     - Discovery: Page size, debounce, ranking tolerances, retries
//     - Sessions: Idle expiry and capacity of the session registry
//     - Regions: Palate region table overrides and default search radius
//
//  3. HTTP Shell:
//     - Server: Listen address and timeouts
//     - Security: CORS and rate limiting
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	client := listing.NewClient(&cfg.Listing, logger)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Listing   ListingConfig   `koanf:"listing"`
	Stats     StatsConfig     `koanf:"stats"` // Optional: personalised MY_PREFERENCE ordering
	Discovery DiscoveryConfig `koanf:"discovery"`
	Sessions  SessionsConfig  `koanf:"sessions"`
	Regions   RegionsConfig   `koanf:"regions"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment"` // Environment mode: "development", "staging", "production" (default: "development")
}

// BreakerConfig tunes the circuit breaker wrapped around an upstream client.
type BreakerConfig struct {
	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests" validate:"gte=1"`

	// Interval resets the failure counts while closed. Zero never resets.
	Interval time.Duration `koanf:"interval" validate:"gte=0"`

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// MinRequests is the sample size required before the breaker can trip.
	MinRequests uint32 `koanf:"min_requests" validate:"gte=1"`

	// FailureRatio trips the breaker once reached.
	FailureRatio float64 `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// ListingConfig holds the GraphQL listing service connection.
//
// Environment Variables:
//   - LISTING_URL: GraphQL endpoint (required)
//   - LISTING_API_KEY: Bearer token sent with every request
//   - LISTING_TIMEOUT: HTTP client timeout (default: 15s)
//   - LISTING_RATE_LIMIT: Requests per second, 0 disables (default: 20)
//   - LISTING_RATE_BURST: Burst size (default: 10)
type ListingConfig struct {
	URL       string        `koanf:"url"`
	APIKey    string        `koanf:"api_key"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimit float64       `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int           `koanf:"rate_burst" validate:"gte=0"`
	Breaker   BreakerConfig `koanf:"breaker"`
}

// StatsConfig holds the preference statistics service connection.
// When disabled, MY_PREFERENCE ordering runs without personal statistics.
type StatsConfig struct {
	Enabled   bool          `koanf:"enabled"`
	URL       string        `koanf:"url"`
	APIKey    string        `koanf:"api_key"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimit float64       `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int           `koanf:"rate_burst" validate:"gte=0"`
	Breaker   BreakerConfig `koanf:"breaker"`
}

// DiscoveryConfig holds engine tuning.
type DiscoveryConfig struct {
	PageSize            int           `koanf:"page_size" validate:"gte=1,lte=100"`
	DebounceDelay       time.Duration `koanf:"debounce_delay" validate:"gte=0"`
	FetchTimeout        time.Duration `koanf:"fetch_timeout" validate:"gt=0"`
	MaxRetries          int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	RetryBaseDelay      time.Duration `koanf:"retry_base_delay" validate:"gte=0"`
	TierEpsilon         float64       `koanf:"tier_epsilon" validate:"gte=0"`
	SmartEpsilon        float64       `koanf:"smart_epsilon" validate:"gte=0"`
	SuggestionThreshold int           `koanf:"suggestion_threshold" validate:"gte=0"`
	ScrollThreshold     int           `koanf:"scroll_threshold" validate:"gte=0"`
	StatsCacheTTL       time.Duration `koanf:"stats_cache_ttl" validate:"gte=0"`

	// Status is forwarded to the listing service as the status filter.
	Status string `koanf:"status"`
}

// SessionsConfig controls the session registry.
type SessionsConfig struct {
	// IdleTTL closes sessions unused for this long. Zero disables expiry.
	IdleTTL time.Duration `koanf:"idle_ttl" validate:"gte=0"`

	// SweepInterval is how often the janitor looks for idle sessions.
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`

	// MaxSessions caps concurrently open sessions. Zero means unlimited.
	MaxSessions int `koanf:"max_sessions" validate:"gte=0"`
}

// RegionsConfig customises the palate region table.
//
// Overrides replace a region's leaf palates. An empty list removes the region.
//
//	regions:
//	  overrides:
//	    nordic: [danish, swedish, norwegian, finnish]
//	    african: []
type RegionsConfig struct {
	Overrides       map[string][]string `koanf:"overrides"`
	DefaultRadiusKm float64             `koanf:"default_radius_km" validate:"gt=0,lte=500"`
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration using the layered Koanf loader:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
