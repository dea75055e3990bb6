// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package algorithms

import (
	"context"

	"github.com/rw3iss/movie-recommender/internal/recommend"
)

// Ensure all strategies implement the interface.
var (
	_ recommend.Strategy = (*AttributeContent)(nil)
	_ recommend.Strategy = (*PeerCorrelation)(nil)
)

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// fallbackScore is the score of a candidate with no attribute signal:
// its baseline rating, or the user's overall average without one.
func fallbackScore(candidate *recommend.CatalogItem, profile *recommend.AffinityProfile) float64 {
	if b, ok := candidate.Baseline(); ok {
		return recommend.ClampScore(b)
	}
	if profile == nil {
		return recommend.MinScore
	}
	return recommend.ClampScore(profile.OverallAverage)
}
