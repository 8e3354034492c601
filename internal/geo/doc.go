// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package geo provides the location services used by the discovery engine.

Relevance scores restaurants against a free-text address keyword and decides
which restaurants belong to a selected region. Regions with a centre point are
matched by great-circle distance using a spatial hash grid; regions without one
are matched by city and country containment.

RegionTable maps palate region keys (for example "east-asian") to the leaf
palates they contain. It expands region selections into concrete palates when
the discovery engine issues a suggestion fetch.

Both types are safe for concurrent use.
*/
package geo
