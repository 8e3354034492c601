// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package listing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tastemap/internal/config"
	"github.com/tomtom215/tastemap/internal/discovery"
	"github.com/tomtom215/tastemap/internal/models"
)

// listingsQuery requests one offset page of published listings.
const listingsQuery = `query Listings($search: String, $first: Int!, $offset: Int!, $cuisine: [String], $palates: [String], $price: String, $userId: ID, $status: String, $recognition: String) {
  listings(first: $first, offset: $offset, where: {search: $search, cuisine: $cuisine, palates: $palates, priceRange: $price, userId: $userId, status: $status, recognition: $recognition}) {
    pageInfo { hasNextPage nextOffset }
    nodes {
      id
      databaseId
      title
      averageRating
      ratingsCount
      priceRange
      palates
      recognitionCount
      createdAt
      categories { id name slug }
      location { streetAddress neighborhood city state country countryCode postalCode latitude longitude }
    }
  }
}`

// Client implements discovery.ListingService against a GraphQL endpoint.
type Client struct {
	upstream
	endpoint string
	breaker  *breaker[discovery.ListingPage]
	logger   zerolog.Logger
}

var _ discovery.ListingService = (*Client)(nil)

// NewClient creates a listing client.
//
//nolint:gocritic // logger by value for zerolog
func NewClient(cfg *config.ListingConfig, logger zerolog.Logger) *Client {
	logger = logger.With().Str("component", "listing-client").Logger()
	return &Client{
		upstream: upstream{
			client:  &http.Client{Timeout: cfg.Timeout},
			apiKey:  cfg.APIKey,
			limiter: newLimiter(cfg.RateLimit, cfg.RateBurst),
		},
		endpoint: cfg.URL,
		breaker:  newBreaker[discovery.ListingPage]("listing-api", cfg.Breaker, logger),
		logger:   logger,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// GraphQLError is one entry of a GraphQL "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// GraphQLErrors reports a response whose "errors" array was not empty.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ge := range e {
		msgs = append(msgs, ge.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

type listingsResponse struct {
	Data *struct {
		Listings *struct {
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
				NextOffset  *int `json:"nextOffset"`
			} `json:"pageInfo"`
			Nodes []listingNode `json:"nodes"`
		} `json:"listings"`
	} `json:"data"`
	Errors GraphQLErrors `json:"errors"`
}

type listingNode struct {
	ID               string                   `json:"id"`
	DatabaseID       int64                    `json:"databaseId"`
	Title            string                   `json:"title"`
	AverageRating    float64                  `json:"averageRating"`
	RatingsCount     int                      `json:"ratingsCount"`
	PriceRange       string                   `json:"priceRange"`
	Palates          []string                 `json:"palates"`
	RecognitionCount *int                     `json:"recognitionCount"`
	CreatedAt        *time.Time               `json:"createdAt"`
	Categories       []models.ListingCategory `json:"categories"`
	Location         struct {
		StreetAddress string  `json:"streetAddress"`
		Neighborhood  string  `json:"neighborhood"`
		City          string  `json:"city"`
		State         string  `json:"state"`
		Country       string  `json:"country"`
		CountryCode   string  `json:"countryCode"`
		PostalCode    string  `json:"postalCode"`
		Latitude      float64 `json:"latitude"`
		Longitude     float64 `json:"longitude"`
	} `json:"location"`
}

//nolint:gocritic // hugeParam: nodes are converted once
func (n listingNode) record() models.RestaurantRecord {
	return models.RestaurantRecord{
		ID:                n.ID,
		DatabaseID:        n.DatabaseID,
		Name:              n.Title,
		Rating:            n.AverageRating,
		RatingsCount:      n.RatingsCount,
		PriceRange:        n.PriceRange,
		PalatesNames:      n.Palates,
		ListingCategories: n.Categories,
		RecognitionCount:  n.RecognitionCount,
		CreatedAt:         n.CreatedAt,
		Location: models.Location{
			StreetAddress: n.Location.StreetAddress,
			Neighborhood:  n.Location.Neighborhood,
			City:          n.Location.City,
			State:         n.Location.State,
			Country:       n.Location.Country,
			CountryCode:   n.Location.CountryCode,
			PostalCode:    n.Location.PostalCode,
			Latitude:      n.Location.Latitude,
			Longitude:     n.Location.Longitude,
		},
	}
}

// variables maps a query onto GraphQL variables. Empty filters are omitted.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func variables(q discovery.ListingQuery) map[string]any {
	vars := map[string]any{
		"first":  q.PageSize,
		"offset": q.Cursor,
	}
	setString := func(key, v string) {
		if v != "" {
			vars[key] = v
		}
	}
	setString("search", q.SearchTerm)
	setString("price", q.Price)
	setString("userId", q.UserID)
	setString("status", q.Status)
	setString("recognition", q.Badge)
	if len(q.Cuisine) > 0 {
		vars["cuisine"] = q.Cuisine
	}
	if len(q.Palates) > 0 {
		vars["palates"] = q.Palates
	}
	return vars
}

// BreakerState reports the listing breaker as closed, half-open or open.
func (c *Client) BreakerState() string {
	return stateToString(c.breaker.State())
}

// FetchPage requests one page of listings.
// When the server omits nextOffset the cursor advances by the page length.
//
//nolint:gocritic // hugeParam: query passed by value per the ListingService interface
func (c *Client) FetchPage(ctx context.Context, q discovery.ListingQuery) (discovery.ListingPage, error) {
	start := time.Now()

	page, err := c.breaker.execute(func() (discovery.ListingPage, error) {
		return c.fetchPage(ctx, q)
	})

	event := c.logger.Debug()
	if err != nil {
		event = c.logger.Warn().Err(err)
	}
	event.Int("offset", q.Cursor).
		Int("page_size", q.PageSize).
		Int("records", len(page.Records)).
		Dur("duration", time.Since(start)).
		Msg("listing page fetched")

	if err != nil {
		return discovery.ListingPage{}, fmt.Errorf("listing fetch at offset %d: %w", q.Cursor, err)
	}
	return page, nil
}

//nolint:gocritic // hugeParam: see FetchPage
func (c *Client) fetchPage(ctx context.Context, q discovery.ListingQuery) (discovery.ListingPage, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint, graphQLRequest{
		Query:     listingsQuery,
		Variables: variables(q),
	})
	if err != nil {
		return discovery.ListingPage{}, err
	}

	var resp listingsResponse
	if err := c.do(req, &resp); err != nil {
		return discovery.ListingPage{}, err
	}
	if len(resp.Errors) > 0 {
		return discovery.ListingPage{}, resp.Errors
	}
	if resp.Data == nil || resp.Data.Listings == nil {
		return discovery.ListingPage{}, fmt.Errorf("%w: response has no listings", discovery.ErrMalformedPage)
	}

	listings := resp.Data.Listings
	records := make([]models.RestaurantRecord, 0, len(listings.Nodes))
	for i := range listings.Nodes {
		records = append(records, listings.Nodes[i].record())
	}

	next := q.Cursor + len(records)
	if listings.PageInfo.NextOffset != nil {
		next = *listings.PageInfo.NextOffset
	}

	return discovery.ListingPage{
		Records:    records,
		NextCursor: next,
		HasMore:    listings.PageInfo.HasNextPage,
	}, nil
}
