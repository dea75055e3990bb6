// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package recommend

import (
	"strconv"
	"strings"
)

// Preference keys understood by the engine. Strategies may read others.
const (
	PrefLimit             = "limit"
	PrefMaxPerGenre       = "max_per_genre"
	PrefMaxPerContributor = "max_per_contributor"
	PrefDiversify         = "diversify"
)

// Preferences is an opaque pass-through map from the caller.
// Values usually arrive from decoded JSON, so numbers may be float64.
type Preferences map[string]any

// Int returns the value at key as an int.
func (p Preferences) Int(key string) (int, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		return n, err == nil
	default:
		return 0, false
	}
}

// Float returns the value at key as a float64.
func (p Preferences) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// String returns the value at key if it is a string.
func (p Preferences) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Bool returns the value at key as a bool.
func (p Preferences) Bool(key string) bool {
	switch val := p[key].(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		return err == nil && b
	default:
		return false
	}
}

// CatalogLookup resolves metadata for an item ID.
type CatalogLookup interface {
	Lookup(itemID string) (*CatalogItem, bool)
}

// Catalog is a map-backed CatalogLookup keyed by item ID.
type Catalog map[string]CatalogItem

// NewCatalog indexes items by ID. The first occurrence of a duplicated ID
// wins, as it does for PoolLookup.
func NewCatalog(items []CatalogItem) Catalog {
	c := make(Catalog, len(items))
	for i := range items {
		if _, exists := c[items[i].ItemID]; exists {
			continue
		}
		c[items[i].ItemID] = items[i]
	}
	return c
}

// Lookup implements CatalogLookup.
func (c Catalog) Lookup(itemID string) (*CatalogItem, bool) {
	item, ok := c[itemID]
	if !ok {
		return nil, false
	}
	return &item, true
}

// PoolLookup resolves item IDs against a candidate pool.
type PoolLookup []CatalogItem

// Lookup implements CatalogLookup with a linear scan. The first match wins.
func (p PoolLookup) Lookup(itemID string) (*CatalogItem, bool) {
	for i := range p {
		if p[i].ItemID == itemID {
			return &p[i], true
		}
	}
	return nil, false
}

// chainLookup consults each lookup in order.
type chainLookup []CatalogLookup

func (c chainLookup) Lookup(itemID string) (*CatalogItem, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if item, ok := l.Lookup(itemID); ok {
			return item, true
		}
	}
	return nil, false
}
