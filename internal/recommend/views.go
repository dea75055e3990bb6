// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package recommend

import (
	"context"
	"strconv"
	"time"
)

// ByGenre ranks only pool items tagged with genre.
// An empty filtered pool yields an empty response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) ByGenre(ctx context.Context, req Request, genre string) (*Response, error) {
	key := NormalizeKey(genre)
	return e.run(ctx, req, nil, "genre:"+key, func(item *CatalogItem) bool {
		for _, g := range item.Genres {
			if NormalizeKey(g) == key {
				return true
			}
		}
		return false
	})
}

// ByContributor ranks only pool items credited to name.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) ByContributor(ctx context.Context, req Request, name string) (*Response, error) {
	key := NormalizeKey(name)
	return e.run(ctx, req, nil, "contributor:"+key, func(item *CatalogItem) bool {
		return key != "" && NormalizeKey(item.Contributor) == key
	})
}

// ByDecade ranks only pool items released in decade. Any year inside the
// decade is accepted, so 1994 selects the 1990s.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) ByDecade(ctx context.Context, req Request, decade int) (*Response, error) {
	decade = DecadeOf(decade)
	return e.run(ctx, req, nil, "decade:"+strconv.Itoa(decade), func(item *CatalogItem) bool {
		d, ok := item.Decade()
		return ok && d == decade
	})
}

// ByPeers ranks the pool with the registered peer correlation strategy.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) ByPeers(ctx context.Context, req Request) (*Response, error) {
	s, ok := e.Strategy(StrategyPeer)
	if !ok {
		e.counters.requests.Add(1)
		return nil, e.fail(time.Now(), "unknown", validationErr("strategy", "peer strategy not registered"))
	}
	return e.run(ctx, req, s, "peers", nil)
}

// DiversifiedRecommendations ranks an over-fetched list and applies the
// genre and contributor caps.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) DiversifiedRecommendations(ctx context.Context, req Request) (*Response, error) {
	prefs := make(Preferences, len(req.Preferences)+1)
	for k, v := range req.Preferences {
		prefs[k] = v
	}
	prefs[PrefDiversify] = true
	req.Preferences = prefs
	return e.run(ctx, req, nil, "diversified", nil)
}
