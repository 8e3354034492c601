// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tastemap/config.yaml",
	"/etc/tastemap/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix selects generic environment overrides. Double underscores nest:
// TASTEMAP_DISCOVERY__PAGE_SIZE -> discovery.page_size.
const EnvPrefix = "TASTEMAP_"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Listing: ListingConfig{
			URL:       "",
			APIKey:    "",
			Timeout:   15 * time.Second,
			RateLimit: 20,
			RateBurst: 10,
			Breaker:   defaultBreaker(),
		},
		Stats: StatsConfig{
			Enabled:   false, // Personal statistics are optional
			Timeout:   5 * time.Second,
			RateLimit: 20,
			RateBurst: 10,
			Breaker:   defaultBreaker(),
		},
		Discovery: DiscoveryConfig{
			PageSize:            20,
			DebounceDelay:       300 * time.Millisecond,
			FetchTimeout:        10 * time.Second,
			MaxRetries:          2,
			RetryBaseDelay:      250 * time.Millisecond,
			TierEpsilon:         0.01,
			SmartEpsilon:        0.1,
			SuggestionThreshold: 5,
			ScrollThreshold:     3,
			StatsCacheTTL:       5 * time.Minute,
			Status:              "PUBLISH",
		},
		Sessions: SessionsConfig{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
			MaxSessions:   10000,
		},
		Regions: RegionsConfig{
			DefaultRadiusKm: 25,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// defaultBreaker opens after a 60% failure rate over at least 10 requests
// and probes again after 2 minutes with up to 3 requests.
func defaultBreaker() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// LISTING_URL -> listing.url
	// TASTEMAP_SESSIONS__IDLE_TTL -> sessions.idle_ttl
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps short environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Listing service mappings
	"listing_url":        "listing.url",
	"listing_api_key":    "listing.api_key",
	"listing_timeout":    "listing.timeout",
	"listing_rate_limit": "listing.rate_limit",
	"listing_rate_burst": "listing.rate_burst",

	// Preference statistics mappings
	"stats_enabled":    "stats.enabled",
	"stats_url":        "stats.url",
	"stats_api_key":    "stats.api_key",
	"stats_timeout":    "stats.timeout",
	"stats_rate_limit": "stats.rate_limit",
	"stats_rate_burst": "stats.rate_burst",

	// Discovery mappings
	"discovery_page_size":      "discovery.page_size",
	"discovery_debounce":       "discovery.debounce_delay",
	"discovery_fetch_timeout":  "discovery.fetch_timeout",
	"discovery_max_retries":    "discovery.max_retries",
	"discovery_stats_ttl":      "discovery.stats_cache_ttl",
	"discovery_listing_status": "discovery.status",

	// Session mappings
	"session_idle_ttl":       "sessions.idle_ttl",
	"session_sweep_interval": "sessions.sweep_interval",
	"max_sessions":           "sessions.max_sessions",

	// Security mappings
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - LISTING_URL -> listing.url
//   - HTTP_PORT -> server.port
//   - TASTEMAP_REGIONS__DEFAULT_RADIUS_KM -> regions.default_radius_km
//
// Unknown variables map to "" and are skipped so that unrelated environment
// variables cannot pollute the configuration.
func envTransformFunc(key string) string {
	if rest, ok := strings.CutPrefix(key, EnvPrefix); ok {
		return strings.ReplaceAll(strings.ToLower(rest), "__", ".")
	}

	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage.
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
