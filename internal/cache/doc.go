// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

/*
Package cache provides a bounded, thread-safe in-memory cache with TTL support.

# Overview

LRUCache is an explicit cache object: it has a fixed capacity, a per-entry
time-to-live and its own lock. There is no package-level state, so every
owner creates and sizes its own instance.

  - Least recently used eviction once capacity is reached
  - Lazy expiration on Get, eager expiration via CleanupExpired
  - Hit and miss counters for observability

# Usage Example

	results := cache.NewLRUCache[[]recommend.Recommendation](1000, 5*time.Minute)
	results.Add("rec:user-1:attribute_content:v3:v9:10", recs)

	if recs, ok := results.Get(key); ok {
	    return recs
	}

# Invalidation

The cache does not know when its source data changes. Owners key entries
by data version and call Clear when versions move.
*/
package cache
