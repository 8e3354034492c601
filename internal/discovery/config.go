// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"errors"
	"fmt"
	"time"
)

// Config contains all configuration for the discovery engine.
type Config struct {
	// PageSize is the number of records requested per page.
	// Default: 20.
	PageSize int `json:"page_size"`

	// DebounceDelay coalesces filter and search edits.
	// Default: 300ms.
	DebounceDelay time.Duration `json:"debounce_delay"`

	// Fetch controls listing requests.
	Fetch FetchConfig `json:"fetch"`

	// Ranking contains comparator tolerances.
	Ranking RankingConfig `json:"ranking"`

	// SuggestionThreshold is the result count below which suggestions are shown.
	// Default: 5.
	SuggestionThreshold int `json:"suggestion_threshold"`

	// ScrollThreshold is how many items from the end of the rendered list
	// a visible item must be to trigger the next page.
	// Default: 3.
	ScrollThreshold int `json:"scroll_threshold"`

	// StatsCacheTTL is how long preference statistics responses are reused.
	// Zero disables the cache. Default: 5m.
	StatsCacheTTL time.Duration `json:"stats_cache_ttl"`

	// Status is forwarded to the listing service as the status filter.
	// Default: "PUBLISH".
	Status string `json:"status"`
}

// FetchConfig controls listing requests.
type FetchConfig struct {
	// Timeout bounds each attempt. Default: 10s.
	Timeout time.Duration `json:"timeout"`

	// MaxRetries is the number of retries after the first attempt. Default: 2.
	MaxRetries int `json:"max_retries"`

	// RetryBaseDelay is the first backoff delay; it doubles per retry. Default: 250ms.
	RetryBaseDelay time.Duration `json:"retry_base_delay"`
}

// RankingConfig contains comparator tolerances.
type RankingConfig struct {
	// TierEpsilon applies to palate-tiered sorting. Default: 0.01.
	TierEpsilon float64 `json:"tier_epsilon"`

	// SmartEpsilon applies to SMART sorting. Default: 0.1.
	SmartEpsilon float64 `json:"smart_epsilon"`
}

// DefaultConfig returns the default discovery configuration.
func DefaultConfig() *Config {
	return &Config{
		PageSize:      20,
		DebounceDelay: 300 * time.Millisecond,
		Fetch: FetchConfig{
			Timeout:        10 * time.Second,
			MaxRetries:     2,
			RetryBaseDelay: 250 * time.Millisecond,
		},
		Ranking: RankingConfig{
			TierEpsilon:  0.01,
			SmartEpsilon: 0.1,
		},
		SuggestionThreshold: 5,
		ScrollThreshold:     3,
		StatsCacheTTL:       5 * time.Minute,
		Status:              "PUBLISH",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be positive, got %d", c.PageSize))
	}
	if c.DebounceDelay < 0 {
		errs = append(errs, fmt.Errorf("debounce_delay must be non-negative, got %s", c.DebounceDelay))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must be positive, got %s", c.Fetch.Timeout))
	}
	if c.Fetch.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_retries must be non-negative, got %d", c.Fetch.MaxRetries))
	}
	if c.Fetch.MaxRetries > 0 && c.Fetch.RetryBaseDelay <= 0 {
		errs = append(errs, errors.New("fetch.retry_base_delay must be positive when retries are enabled"))
	}
	if c.Ranking.TierEpsilon < 0 || c.Ranking.SmartEpsilon < 0 {
		errs = append(errs, errors.New("ranking epsilons must be non-negative"))
	}
	if c.SuggestionThreshold < 0 {
		errs = append(errs, fmt.Errorf("suggestion_threshold must be non-negative, got %d", c.SuggestionThreshold))
	}
	if c.ScrollThreshold < 0 {
		errs = append(errs, fmt.Errorf("scroll_threshold must be non-negative, got %d", c.ScrollThreshold))
	}
	if c.StatsCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("stats_cache_ttl must be non-negative, got %s", c.StatsCacheTTL))
	}

	return errors.Join(errs...)
}
