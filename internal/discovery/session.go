// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/tastemap/internal/cache"
	"github.com/tomtom215/tastemap/internal/models"
)

// NoticeFetchFailed is shown when the listing service could not be reached.
const NoticeFetchFailed = "Some restaurants could not be loaded. Showing what we have so far."

// Dependencies are the external collaborators of a session.
type Dependencies struct {
	Listing   ListingService
	Stats     PreferenceStatsService
	Relevance LocationRelevance
	Regions   RegionExpansion
	// StatsMemo is shared across sessions. Nil disables memoisation.
	StatsMemo *cache.Cache[models.PreferenceStatsMap]
}

// SessionOptions describe a new session.
type SessionOptions struct {
	ID     string
	UserID string
	// UserPalates are the palate preferences from the user's profile.
	UserPalates []string
	Initial     models.FilterState
}

// View is the read-only output handed to the presentation layer.
type View struct {
	Records []models.RestaurantRecord
	Loading bool
	HasMore bool
	Notice  string
	Sort    models.SortOption
	Filters models.FilterState
}

// Session owns the filter state, candidate set, cursor and preference
// statistics of one user's discovery flow and wires the data flow between
// them. Network calls never run under the session lock.
type Session struct {
	id     string
	userID string
	cfg    *Config
	logger zerolog.Logger

	filters *FilterStore
	fetcher *PageFetcher
	stats   *PreferenceStatsCache
	ranker  *Ranker
	suggest *SuggestionFallback
	loader  *ScrollLoader

	// ctx bounds work started by debounced filter commits.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	userPalates []string
	notice      string
	closed      bool
	lastAccess  time.Time
	suggestKey  string
	suggestions Suggestions
}

// NewSession creates a session. No fetch is issued until Refresh is called.
//
//nolint:gocritic // hugeParam: opts and deps copied once at construction; logger by value for zerolog
func NewSession(opts SessionOptions, cfg *Config, deps Dependencies, logger zerolog.Logger) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Listing == nil {
		return nil, errors.New("listing service is required")
	}
	if deps.Stats == nil {
		deps.Stats = noStats{}
	}

	logger = logger.With().Str("session_id", opts.ID).Logger()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:          opts.ID,
		userID:      opts.UserID,
		cfg:         cfg,
		logger:      logger.With().Str("component", "session").Logger(),
		fetcher:     NewPageFetcher(deps.Listing, cfg.Fetch, logger),
		stats:       NewPreferenceStatsCache(deps.Stats, deps.StatsMemo, logger),
		ranker:      NewRanker(deps.Relevance, cfg.Ranking),
		suggest:     NewSuggestionFallback(deps.Listing, deps.Regions, cfg.SuggestionThreshold, cfg.PageSize, cfg.Fetch.Timeout, logger),
		ctx:         ctx,
		cancel:      cancel,
		userPalates: slices.Clone(opts.UserPalates),
		lastAccess:  time.Now(),
	}
	s.filters = NewFilterStore(opts.Initial, cfg.DebounceDelay, s.onFiltersChanged)
	s.loader = NewScrollLoader(s, cfg.ScrollThreshold)
	s.fetcher.SetQuery(s.listingQuery(&opts.Initial))

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UpdateFilters applies a partial filter update after the debounce window.
//
//nolint:gocritic // hugeParam: update passed by value for immutability
func (s *Session) UpdateFilters(u models.FilterUpdate) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.filters.Update(u)
	return nil
}

// SetSearchTerm sets the free-text search term after the debounce window.
// A changed term starts a new search epoch.
func (s *Session) SetSearchTerm(term string) error {
	return s.UpdateFilters(models.FilterUpdate{SearchTerm: &term})
}

// FlushFilters commits any pending debounced update now, on the caller's goroutine.
func (s *Session) FlushFilters() bool {
	return s.filters.Flush()
}

// SetUserPalates replaces the user's profile palates. This can change the
// default sort and which preference statistics are needed.
func (s *Session) SetUserPalates(ctx context.Context, palates []string) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.mu.Lock()
	changed := !slices.Equal(s.userPalates, palates)
	s.userPalates = slices.Clone(palates)
	s.mu.Unlock()

	if changed {
		state := s.filters.Snapshot()
		s.syncStats(ctx, &state)
	}
	return nil
}

// Refresh starts a new search epoch: the first page is fetched and replaces
// the candidate set while preference statistics load concurrently.
// A *FetchError is returned on failure and also surfaces as the view notice.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.touch(); err != nil {
		return err
	}
	state := s.filters.Snapshot()
	s.fetcher.SetQuery(s.listingQuery(&state))

	var res PageResult
	var g errgroup.Group
	g.Go(func() error {
		var err error
		res, err = s.fetcher.Fetch(ctx, true, s.cfg.PageSize)
		return err
	})
	g.Go(func() error {
		s.syncStats(ctx, &state)
		return nil
	})
	err := g.Wait()

	s.recordOutcome(res, err)
	return err
}

// LoadMore fetches the next page and merges it into the candidate set.
func (s *Session) LoadMore(ctx context.Context) error {
	if err := s.touch(); err != nil {
		return err
	}
	res, err := s.fetcher.Fetch(ctx, false, s.cfg.PageSize)
	s.recordOutcome(res, err)
	return err
}

// OnVisible reports that the item at index of a rendered list became visible.
// It returns whether a next-page load was started.
func (s *Session) OnVisible(ctx context.Context, index, rendered int) (bool, error) {
	if err := s.touch(); err != nil {
		return false, err
	}
	return s.loader.OnVisible(ctx, index, rendered)
}

// HasMore reports whether another page can be loaded.
func (s *Session) HasMore() bool { return s.fetcher.HasMore() }

// Loading reports whether a fetch is in flight.
func (s *Session) Loading() bool { return s.fetcher.Loading() }

// Results ranks the current candidates against the committed filter state.
func (s *Session) Results() View {
	state := s.filters.Snapshot()
	sort := state.EffectiveSort(s.hasUserPalates())
	records := s.rank(state, sort)

	s.mu.Lock()
	notice := s.notice
	s.mu.Unlock()

	return View{
		Records: records,
		Loading: s.fetcher.Loading(),
		HasMore: s.fetcher.HasMore(),
		Notice:  notice,
		Sort:    sort,
		Filters: state,
	}
}

// Suggestions returns the suggestion section. It is empty unless the ranked
// result set is below the threshold with a palate filter active. A failed
// secondary fetch yields an empty section with Err set.
func (s *Session) Suggestions(ctx context.Context) Suggestions {
	if err := s.touch(); err != nil {
		return Suggestions{}
	}
	state := s.filters.Snapshot()
	ranked := s.rank(state, state.EffectiveSort(s.hasUserPalates()))
	if !s.suggest.ShouldSuggest(len(ranked), len(state.Palates) > 0) {
		return Suggestions{}
	}

	exclude := make(map[string]struct{}, len(ranked))
	ids := make([]string, 0, len(ranked))
	for i := range ranked {
		exclude[ranked[i].ID] = struct{}{}
		ids = append(ids, ranked[i].ID)
	}

	base := s.fetcher.Query()
	base.Cuisine = slices.Clone(state.Cuisine)
	if state.Price != nil {
		base.Price = *state.Price
	}
	key := cache.GenerateKey("suggestions", struct {
		Epoch uint64
		Query ListingQuery
		IDs   []string
	}{s.fetcher.Epoch(), base, ids})

	s.mu.Lock()
	if key == s.suggestKey {
		cached := s.suggestions
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	res := s.suggest.Fetch(ctx, base, exclude)
	if res.Err == nil {
		s.mu.Lock()
		s.suggestKey = key
		s.suggestions = res
		s.mu.Unlock()
	}
	return res
}

// LastAccess returns when the session was last used.
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// Close cancels pending and in-flight work and waits for background
// refreshes to finish. Further operations return ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.filters.Cancel()
	s.cancel()
	s.stats.Cancel()
	s.wg.Wait()
	s.logger.Debug().Msg("session closed")
}

// onFiltersChanged classifies a committed change. Server-side filters restart
// the epoch; display filters only affect ranking, which is recomputed on read.
//
//nolint:gocritic // hugeParam: states passed by value for immutability
func (s *Session) onFiltersChanged(prev, next models.FilterState) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	palatesChanged := !slices.Equal(prev.Palates, next.Palates)
	restart := prev.SearchTerm != next.SearchTerm || palatesChanged || !ptrEqual(prev.Badge, next.Badge)

	s.logger.Debug().
		Bool("restart", restart).
		Bool("palates_changed", palatesChanged).
		Msg("filters committed")

	if restart {
		if err := s.Refresh(s.ctx); err != nil && !errors.Is(err, ErrSessionClosed) {
			s.logger.Debug().Err(err).Msg("refresh after filter change failed")
		}
		return
	}

	hasPalates := s.hasUserPalates()
	if prev.EffectiveSort(hasPalates) != next.EffectiveSort(hasPalates) {
		s.syncStats(s.ctx, &next)
	}
}

// syncStats loads statistics when sorting by MY_PREFERENCE with palates to
// personalize on, and cancels any in-flight load otherwise.
func (s *Session) syncStats(ctx context.Context, state *models.FilterState) {
	palates := s.statsPalates(state)
	if state.EffectiveSort(s.hasUserPalates()) != models.SortMyPreference || len(palates) == 0 {
		s.stats.Cancel()
		return
	}
	if _, key := s.stats.Current(); key == StatsKey(palates) && !s.stats.InFlight() {
		return
	}
	s.stats.Load(ctx, palates)
}

// statsPalates personalizes on the active palate filter, falling back to the
// user's profile palates.
func (s *Session) statsPalates(state *models.FilterState) []string {
	if len(state.Palates) > 0 {
		return state.Palates
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.userPalates)
}

func (s *Session) hasUserPalates() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.userPalates) > 0
}

//nolint:gocritic // hugeParam: state passed by value for immutability
func (s *Session) rank(state models.FilterState, sort models.SortOption) []models.RestaurantRecord {
	state.SortOption = &sort
	stats, _ := s.stats.Current()
	return s.ranker.Rank(s.fetcher.Candidates(), state, stats)
}

// listingQuery builds the server-side query. Display filters are applied by
// the ranker and are not sent.
func (s *Session) listingQuery(state *models.FilterState) ListingQuery {
	q := ListingQuery{
		SearchTerm: state.SearchTerm,
		Palates:    slices.Clone(state.Palates),
		UserID:     s.userID,
		Status:     s.cfg.Status,
	}
	if state.Badge != nil {
		q.Badge = *state.Badge
	}
	return q
}

func (s *Session) recordOutcome(res PageResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fetchErr *FetchError
	switch {
	case errors.As(err, &fetchErr):
		s.notice = NoticeFetchFailed
	case err == nil && !res.Ignored && !res.Stale:
		s.notice = ""
	}
}

func (s *Session) touch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.lastAccess = time.Now()
	return nil
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// noStats is used when no statistics service is configured.
type noStats struct{}

func (noStats) Fetch(context.Context, []string) (models.PreferenceStatsMap, error) {
	return models.PreferenceStatsMap{}, nil
}
