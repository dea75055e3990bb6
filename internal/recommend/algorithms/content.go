// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package algorithms

import "github.com/rw3iss/movie-recommender/internal/recommend"

// NewContentOnly creates the content-only strategy: the attribute scorer
// with every weight but text overlap set to zero.
//
// Without highly rated titles in the history no term applies and every
// candidate takes the cold fallback (baseline, then overall average).
func NewContentOnly(cfg recommend.AttributeConfig) *AttributeContent {
	cfg.GenreWeight = 0
	cfg.ContributorWeight = 0
	cfg.DecadeWeight = 0
	cfg.ContentWeight = 1

	return &AttributeContent{
		name:        recommend.StrategyContentOnly,
		description: "Scores unseen titles by text overlap with titles you rated highly, blended with the catalog rating.",
		factors:     []string{"content overlap", "baseline rating"},
		config:      withAttributeDefaults(cfg),
	}
}
