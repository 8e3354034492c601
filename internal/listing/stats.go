// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package listing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tastemap/internal/config"
	"github.com/tomtom215/tastemap/internal/discovery"
	"github.com/tomtom215/tastemap/internal/models"
)

// StatsClient implements discovery.PreferenceStatsService against a REST endpoint:
//
//	GET {url}?palates=korean,thai
//	{"stats": {"<restaurant id>": {"avg": 4.6, "count": 12}}}
type StatsClient struct {
	upstream
	endpoint string
	breaker  *breaker[models.PreferenceStatsMap]
	logger   zerolog.Logger
}

var _ discovery.PreferenceStatsService = (*StatsClient)(nil)

// NewStatsClient creates a preference statistics client.
//
//nolint:gocritic // logger by value for zerolog
func NewStatsClient(cfg *config.StatsConfig, logger zerolog.Logger) *StatsClient {
	logger = logger.With().Str("component", "stats-client").Logger()
	return &StatsClient{
		upstream: upstream{
			client:  &http.Client{Timeout: cfg.Timeout},
			apiKey:  cfg.APIKey,
			limiter: newLimiter(cfg.RateLimit, cfg.RateBurst),
		},
		endpoint: cfg.URL,
		breaker:  newBreaker[models.PreferenceStatsMap]("stats-api", cfg.Breaker, logger),
		logger:   logger,
	}
}

type statsResponse struct {
	Stats models.PreferenceStatsMap `json:"stats"`
}

// Fetch returns statistics for palates. A missing "stats" object is an
// empty map, not an error.
func (c *StatsClient) Fetch(ctx context.Context, palates []string) (models.PreferenceStatsMap, error) {
	start := time.Now()

	stats, err := c.breaker.execute(func() (models.PreferenceStatsMap, error) {
		return c.fetch(ctx, palates)
	})
	if err != nil {
		return nil, fmt.Errorf("preference stats for %d palate(s): %w", len(palates), err)
	}

	c.logger.Debug().
		Strs("palates", palates).
		Int("restaurants", len(stats)).
		Dur("duration", time.Since(start)).
		Msg("preference stats fetched")
	return stats, nil
}

func (c *StatsClient) fetch(ctx context.Context, palates []string) (models.PreferenceStatsMap, error) {
	params := url.Values{}
	params.Set("palates", strings.Join(palates, ","))

	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp statsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Stats == nil {
		return models.PreferenceStatsMap{}, nil
	}
	return resp.Stats, nil
}
