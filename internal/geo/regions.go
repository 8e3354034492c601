// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

package geo

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// defaultRegions is the built-in palate region table.
var defaultRegions = map[string][]string{
	"east-asian":      {"korean", "japanese", "chinese", "taiwanese", "mongolian"},
	"southeast-asian": {"thai", "vietnamese", "malaysian", "indonesian", "filipino", "singaporean"},
	"south-asian":     {"indian", "pakistani", "bangladeshi", "sri-lankan", "nepalese"},
	"middle-eastern":  {"lebanese", "turkish", "persian", "israeli", "syrian"},
	"european":        {"italian", "french", "spanish", "greek", "german", "portuguese"},
	"latin-american":  {"mexican", "peruvian", "brazilian", "argentinian", "colombian"},
	"african":         {"ethiopian", "nigerian", "moroccan", "senegalese"},
	"north-american":  {"american", "canadian", "cajun", "southern"},
}

// RegionTable maps region keys to leaf palates. Keys are case-insensitive.
type RegionTable struct {
	mu      sync.RWMutex
	regions map[string][]string
}

// DefaultRegionTable returns a table with the built-in regions.
func DefaultRegionTable() *RegionTable {
	return NewRegionTable(nil)
}

// NewRegionTable creates a table from the built-in regions with overrides
// applied. An override replaces the region of the same key; an override with
// no palates removes it.
func NewRegionTable(overrides map[string][]string) *RegionTable {
	t := &RegionTable{regions: make(map[string][]string, len(defaultRegions)+len(overrides))}
	for k, v := range defaultRegions {
		t.regions[k] = slices.Clone(v)
	}
	for k, v := range overrides {
		key := normalizeKey(k)
		if len(v) == 0 {
			delete(t.regions, key)
			continue
		}
		t.regions[key] = normalizePalates(v)
	}
	return t
}

// ChildrenOf returns the leaf palates of key, or nil when key is not a region.
func (t *RegionTable) ChildrenOf(key string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	children, ok := t.regions[normalizeKey(key)]
	if !ok {
		return nil
	}
	return slices.Clone(children)
}

// IsRegion reports whether key names a region.
func (t *RegionTable) IsRegion(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.regions[normalizeKey(key)]
	return ok
}

// Keys returns the region keys in sorted order.
func (t *RegionTable) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.regions))
}

// Set replaces the palates of a region at runtime.
func (t *RegionTable) Set(key string, palates []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.regions[normalizeKey(key)] = normalizePalates(palates)
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func normalizePalates(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = normalizeKey(p); p != "" && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}
