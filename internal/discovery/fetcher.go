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
	"golang.org/x/sync/semaphore"

	"github.com/tomtom215/tastemap/internal/metrics"
	"github.com/tomtom215/tastemap/internal/models"
)

// PageResult describes the outcome of one Fetch call.
type PageResult struct {
	// Records are the deduplicated records of the fetched page.
	Records []models.RestaurantRecord
	// Cursor is the fetcher cursor after the call.
	Cursor models.PaginationCursor
	// Added is the number of IDs new to the candidate set.
	Added int
	// Ignored is true when the call was a no-op: a duplicate first-page reset,
	// a next-page request with nothing more to load, or one made while the
	// first page is still loading.
	Ignored bool
	// Stale is true when a newer reset superseded this fetch before it
	// completed; its records were discarded.
	Stale bool
}

// PageFetcher requests pages from a ListingService and merges them into the
// candidate set of the current search epoch.
//
// A reset starts a new epoch: the cursor returns to (0, true) and the first
// page replaces the candidate set. Next-page fetches are serialized so pages
// apply in request order, and results from a superseded epoch are dropped.
type PageFetcher struct {
	svc    ListingService
	cfg    FetchConfig
	logger zerolog.Logger

	// pages serializes next-page fetches. Resets do not take it.
	pages *semaphore.Weighted

	mu         sync.Mutex
	query      ListingQuery
	candidates *CandidateSet
	cursor     models.PaginationCursor
	epoch      uint64
	// resetInFlight holds the query of the first page being loaded, if any.
	resetInFlight *ListingQuery
	pagesInFlight int
	lastErr       error
}

// NewPageFetcher creates a fetcher. The cursor starts at (0, true) with an
// empty candidate set; call Fetch with reset=true to load the first page.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPageFetcher(svc ListingService, cfg FetchConfig, logger zerolog.Logger) *PageFetcher {
	return &PageFetcher{
		svc:        svc,
		cfg:        cfg,
		logger:     logger.With().Str("component", "page_fetcher").Logger(),
		pages:      semaphore.NewWeighted(1),
		candidates: NewCandidateSet(),
		cursor:     models.InitialCursor(),
	}
}

// SetQuery sets the server-side query used by subsequent fetches. It does not
// start a new epoch by itself; follow it with a reset Fetch.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func (f *PageFetcher) SetQuery(q ListingQuery) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = cloneQuery(q)
}

// Query returns the current server-side query.
func (f *PageFetcher) Query() ListingQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneQuery(f.query)
}

// Fetch loads a page of pageSize records.
//
// With reset=true the cursor is reset and the page replaces the candidate set.
// A reset issued while the first page for the same query is still in flight is
// ignored. Otherwise the next page after the current cursor is loaded and
// merged by ID.
//
// On failure a *FetchError is returned, the candidate set is left unchanged,
// and HasMore is forced to false.
func (f *PageFetcher) Fetch(ctx context.Context, reset bool, pageSize int) (PageResult, error) {
	if pageSize <= 0 {
		return PageResult{}, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if reset {
		return f.fetchFirst(ctx, pageSize)
	}
	return f.fetchNext(ctx, pageSize)
}

func (f *PageFetcher) fetchFirst(ctx context.Context, pageSize int) (PageResult, error) {
	f.mu.Lock()
	if f.resetInFlight != nil && queryEqual(*f.resetInFlight, f.query) {
		cursor := f.cursor
		f.mu.Unlock()
		metrics.RecordDiscardedFetch("duplicate_reset")
		f.logger.Debug().Msg("first page already in flight, reset ignored")
		return PageResult{Cursor: cursor, Ignored: true}, nil
	}
	f.epoch++
	epoch := f.epoch
	q := cloneQuery(f.query)
	f.resetInFlight = &q
	f.cursor = models.InitialCursor()
	f.lastErr = nil
	f.mu.Unlock()

	q.PageSize = pageSize
	q.Cursor = 0
	page, attempts, err := f.fetchWithRetry(ctx, q, metrics.FetchKindFirstPage)

	f.mu.Lock()
	defer f.mu.Unlock()

	if epoch != f.epoch {
		metrics.RecordDiscardedFetch("stale_epoch")
		f.logger.Debug().Uint64("epoch", epoch).Uint64("current", f.epoch).Msg("discarding superseded first page")
		return PageResult{Cursor: f.cursor, Stale: true}, nil
	}
	f.resetInFlight = nil

	if err == nil {
		err = checkPage(page, 0)
	}
	if err != nil {
		return f.failLocked(true, 0, attempts, err)
	}

	records, dropped := dedupePage(page.Records)
	f.candidates.Replace(records)
	f.cursor = models.PaginationCursor{Offset: page.NextCursor, HasMore: page.HasMore}
	metrics.RecordCandidateSetSize(f.candidates.Len())

	f.logger.Debug().
		Uint64("epoch", epoch).
		Int("records", len(records)).
		Int("dropped", dropped).
		Bool("has_more", page.HasMore).
		Msg("first page loaded")

	return PageResult{Records: records, Cursor: f.cursor, Added: len(records)}, nil
}

func (f *PageFetcher) fetchNext(ctx context.Context, pageSize int) (PageResult, error) {
	f.mu.Lock()
	f.pagesInFlight++
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.pagesInFlight--
		f.mu.Unlock()
	}()

	if err := f.pages.Acquire(ctx, 1); err != nil {
		return PageResult{Cursor: f.Cursor()}, fmt.Errorf("waiting for previous page: %w", err)
	}
	defer f.pages.Release(1)

	f.mu.Lock()
	if f.resetInFlight != nil || !f.cursor.HasMore {
		cursor := f.cursor
		f.mu.Unlock()
		return PageResult{Cursor: cursor, Ignored: true}, nil
	}
	epoch := f.epoch
	offset := f.cursor.Offset
	q := cloneQuery(f.query)
	f.mu.Unlock()

	q.PageSize = pageSize
	q.Cursor = offset
	page, attempts, err := f.fetchWithRetry(ctx, q, metrics.FetchKindNextPage)

	f.mu.Lock()
	defer f.mu.Unlock()

	if epoch != f.epoch {
		metrics.RecordDiscardedFetch("stale_epoch")
		return PageResult{Cursor: f.cursor, Stale: true}, nil
	}

	if err == nil {
		err = checkPage(page, offset)
	}
	if err != nil {
		return f.failLocked(false, offset, attempts, err)
	}

	records, dropped := dedupePage(page.Records)
	added := f.candidates.Merge(records)
	f.cursor = models.PaginationCursor{Offset: page.NextCursor, HasMore: page.HasMore}
	metrics.RecordCandidateSetSize(f.candidates.Len())

	f.logger.Debug().
		Uint64("epoch", epoch).
		Int("offset", offset).
		Int("records", len(records)).
		Int("added", added).
		Int("dropped", dropped).
		Bool("has_more", page.HasMore).
		Msg("page merged")

	return PageResult{Records: records, Cursor: f.cursor, Added: added}, nil
}

// failLocked records a failed fetch. Caller must hold f.mu.
func (f *PageFetcher) failLocked(reset bool, offset, attempts int, err error) (PageResult, error) {
	f.cursor.HasMore = false
	fetchErr := &FetchError{Reset: reset, Offset: offset, Attempts: attempts, Err: err}
	f.lastErr = fetchErr

	f.logger.Error().
		Err(err).
		Bool("reset", reset).
		Int("offset", offset).
		Int("attempts", attempts).
		Msg("listing fetch failed")

	return PageResult{Cursor: f.cursor}, fetchErr
}

// fetchWithRetry calls the listing service with exponential backoff.
// Each attempt runs under the configured timeout. Context cancellation by the
// caller is not retried.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func (f *PageFetcher) fetchWithRetry(ctx context.Context, q ListingQuery, kind string) (ListingPage, int, error) {
	start := time.Now()
	delay := f.cfg.RetryBaseDelay
	attempts := 0

	var page ListingPage
	var err error
	for {
		attempts++
		page, err = f.attempt(ctx, q)
		if err == nil || ctx.Err() != nil || attempts > f.cfg.MaxRetries {
			break
		}

		f.logger.Warn().
			Err(err).
			Int("attempt", attempts).
			Int("max_attempts", f.cfg.MaxRetries+1).
			Dur("delay", delay).
			Msg("retrying listing fetch")
		metrics.RecordListingRetry()

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			err = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
		delay *= 2
	}

	metrics.RecordListingFetch(kind, time.Since(start), err)
	return page, attempts, err
}

//nolint:gocritic // hugeParam: query passed by value for immutability
func (f *PageFetcher) attempt(ctx context.Context, q ListingQuery) (ListingPage, error) {
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}
	page, err := f.svc.FetchPage(ctx, q)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return page, fmt.Errorf("timed out after %s: %w", f.cfg.Timeout, err)
	}
	return page, err
}

// checkPage enforces the pagination contract on a response.
func checkPage(page ListingPage, offset int) error {
	if page.HasMore && page.NextCursor <= offset {
		return fmt.Errorf("%w: cursor did not advance past %d", ErrMalformedPage, offset)
	}
	if page.NextCursor < offset {
		return fmt.Errorf("%w: cursor moved backwards from %d to %d", ErrMalformedPage, offset, page.NextCursor)
	}
	return nil
}

// Cursor returns the current pagination cursor.
func (f *PageFetcher) Cursor() models.PaginationCursor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// HasMore reports whether another page can be requested.
func (f *PageFetcher) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor.HasMore
}

// Loading reports whether any fetch is in flight.
func (f *PageFetcher) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resetInFlight != nil || f.pagesInFlight > 0
}

// Epoch returns the current search epoch. It increases on every accepted reset.
func (f *PageFetcher) Epoch() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.epoch
}

// Candidates returns a copy of the candidate set in first-seen order.
func (f *PageFetcher) Candidates() []models.RestaurantRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.candidates.Records()
}

// CandidateCount returns the size of the candidate set.
func (f *PageFetcher) CandidateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.candidates.Len()
}

// LastError returns the FetchError of the most recent failed fetch in the
// current epoch, or nil.
func (f *PageFetcher) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

//nolint:gocritic // hugeParam: query passed by value for immutability
func cloneQuery(q ListingQuery) ListingQuery {
	q.Cuisine = slices.Clone(q.Cuisine)
	q.Palates = slices.Clone(q.Palates)
	return q
}

// queryEqual compares the server-side parameters of two queries.
//
//nolint:gocritic // hugeParam: queries passed by value for immutability
func queryEqual(a, b ListingQuery) bool {
	return a.SearchTerm == b.SearchTerm &&
		a.Price == b.Price &&
		a.UserID == b.UserID &&
		a.Status == b.Status &&
		a.Badge == b.Badge &&
		slices.Equal(a.Cuisine, b.Cuisine) &&
		slices.Equal(a.Palates, b.Palates)
}
