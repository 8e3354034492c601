// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package main

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/tastemap/internal/cache"
	"github.com/tomtom215/tastemap/internal/config"
	"github.com/tomtom215/tastemap/internal/discovery"
	"github.com/tomtom215/tastemap/internal/geo"
	"github.com/tomtom215/tastemap/internal/listing"
	"github.com/tomtom215/tastemap/internal/models"
)

// engine holds the discovery engine and the upstream clients it was built from.
type engine struct {
	registry  *discovery.Registry
	listing   *listing.Client
	statsMemo *cache.Cache[models.PreferenceStatsMap]
}

// Close closes every open session and stops the stats memo janitor.
func (e *engine) Close() {
	e.registry.CloseAll()
	if e.statsMemo != nil {
		e.statsMemo.Close()
	}
}

// discoveryConfig maps the application config onto the engine's tuning.
func discoveryConfig(c *config.DiscoveryConfig) *discovery.Config {
	return &discovery.Config{
		PageSize:      c.PageSize,
		DebounceDelay: c.DebounceDelay,
		Fetch: discovery.FetchConfig{
			Timeout:        c.FetchTimeout,
			MaxRetries:     c.MaxRetries,
			RetryBaseDelay: c.RetryBaseDelay,
		},
		Ranking: discovery.RankingConfig{
			TierEpsilon:  c.TierEpsilon,
			SmartEpsilon: c.SmartEpsilon,
		},
		SuggestionThreshold: c.SuggestionThreshold,
		ScrollThreshold:     c.ScrollThreshold,
		StatsCacheTTL:       c.StatsCacheTTL,
		Status:              c.Status,
	}
}

// initEngine builds the upstream clients, the geographic helpers and the
// session registry.
func initEngine(cfg *config.Config, logger zerolog.Logger) (*engine, error) {
	dcfg := discoveryConfig(&cfg.Discovery)
	if err := dcfg.Validate(); err != nil {
		return nil, err
	}

	listingClient := listing.NewClient(&cfg.Listing, logger.With().Str("upstream", "listing").Logger())

	deps := discovery.Dependencies{
		Listing:   listingClient,
		Relevance: geo.NewRelevance(cfg.Regions.DefaultRadiusKm),
		Regions:   geo.NewRegionTable(cfg.Regions.Overrides),
	}

	e := &engine{listing: listingClient}

	if cfg.Stats.Enabled {
		deps.Stats = listing.NewStatsClient(&cfg.Stats, logger.With().Str("upstream", "stats").Logger())
		if dcfg.StatsCacheTTL > 0 {
			e.statsMemo = cache.NewWithCleanup[models.PreferenceStatsMap](dcfg.StatsCacheTTL, dcfg.StatsCacheTTL)
			deps.StatsMemo = e.statsMemo
		}
		logger.Info().Str("url", cfg.Stats.URL).Dur("cache_ttl", dcfg.StatsCacheTTL).Msg("Preference statistics enabled")
	} else {
		logger.Info().Msg("Preference statistics disabled (STATS_ENABLED=false)")
	}

	e.registry = discovery.NewRegistry(dcfg, deps, cfg.Sessions.IdleTTL, cfg.Sessions.MaxSessions,
		logger.With().Str("component", "discovery").Logger())

	logger.Info().
		Str("listing_url", cfg.Listing.URL).
		Int("page_size", dcfg.PageSize).
		Dur("debounce", dcfg.DebounceDelay).
		Dur("idle_ttl", cfg.Sessions.IdleTTL).
		Int("max_sessions", cfg.Sessions.MaxSessions).
		Msg("Discovery engine initialized")

	return e, nil
}
