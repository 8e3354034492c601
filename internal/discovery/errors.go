// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package discovery

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPage is wrapped by FetchError when the listing service returns
// a page that violates the pagination contract.
var ErrMalformedPage = errors.New("malformed listing page")

// ErrSessionClosed is returned by Session operations after Close.
var ErrSessionClosed = errors.New("session closed")

// FetchError reports that the listing source failed, timed out, or returned
// malformed data. The candidate set is left at its last good state and
// automatic loading stops until the next reset.
type FetchError struct {
	// Reset is true when the failed fetch was a first-page reset.
	Reset bool
	// Offset is the cursor offset that was requested.
	Offset int
	// Attempts is the number of attempts made, including retries.
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	kind := "next page"
	if e.Reset {
		kind = "first page"
	}
	return fmt.Sprintf("fetch %s at offset %d failed after %d attempt(s): %v", kind, e.Offset, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PreferenceStatsError reports a failed or cancelled preference statistics load.
// It is logged and counted but never returned from PreferenceStatsCache.Load.
type PreferenceStatsError struct {
	Palates   []string
	Cancelled bool
	Err       error
}

func (e *PreferenceStatsError) Error() string {
	if e.Cancelled {
		return fmt.Sprintf("preference stats for [%s] cancelled", strings.Join(e.Palates, ","))
	}
	return fmt.Sprintf("preference stats for [%s]: %v", strings.Join(e.Palates, ","), e.Err)
}

func (e *PreferenceStatsError) Unwrap() error { return e.Err }

// SuggestionFetchError reports a failed suggestion fetch. It only suppresses
// the suggestion section.
type SuggestionFetchError struct {
	Palates []string
	Err     error
}

func (e *SuggestionFetchError) Error() string {
	return fmt.Sprintf("suggestion fetch for [%s]: %v", strings.Join(e.Palates, ","), e.Err)
}

func (e *SuggestionFetchError) Unwrap() error { return e.Err }
