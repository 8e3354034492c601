// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package discovery implements restaurant discovery ranking, filtering and
incremental pagination.

The engine turns a paginated stream of restaurant records plus a mutable set
of filter and sort criteria into a stable, deduplicated, ordered result list.

# Components

Leaf first:

  - Debouncer: trailing-edge debounce with cancel-on-supersede
  - FilterStore: owns FilterState; coalesces edits within the debounce window
  - CandidateSet: records seen in the current search epoch, deduplicated by ID
  - PageFetcher: cursor, hasMore, epoch guard, bounded retry
  - PreferenceStatsCache: cancellable palate statistics loads
  - Ranker: pure filter and sort pipeline
  - SuggestionFallback: expanded-palate secondary fetch for small result sets
  - ScrollLoader: visibility-driven next-page trigger
  - Session: single owner of all of the above, wires the data flow
  - Registry: tracks open sessions and reaps idle ones

# Data Flow

	FilterStore (debounced) ──▶ PageFetcher reset ──▶ Ranker ──▶ View
	                                   ▲                          │
	                                   └──── ScrollLoader ◀───────┘

Search term, palate and badge changes are forwarded to the listing service
and restart the search epoch. Cuisine, price, rating, keyword, region and sort
are display filters applied by the Ranker over already-fetched candidates.

# Failure Model

No error is fatal to a session. A FetchError leaves the candidate set at its
last good state and stops automatic loading. Preference statistics failures
degrade to an empty map. Suggestion failures suppress the suggestion section.

# Thread Safety

Session, PageFetcher, PreferenceStatsCache, FilterStore, Debouncer and
Registry are safe for concurrent use. Ranker is stateless apart from its
configuration. CandidateSet is not synchronized and is owned by PageFetcher.
*/
package discovery
