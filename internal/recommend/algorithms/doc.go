// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

// Package algorithms implements the scoring strategies for the
// recommendation engine.
//
// Each strategy implements the recommend.Strategy interface and is
// registered with the engine by name.
//
// # Strategies
//
// AttributeContent ("attribute_content") blends the user's genre,
// contributor and decade affinity with text overlap against their highly
// rated titles:
//
//	score = genre*wg + contributor*wc + decade*wd + content*wt
//
// Weights come from recommend.AttributeConfig. A candidate with no signal
// at all falls back to its baseline rating, or to the user's overall
// average rating when it has none.
//
// Content-only ("content_only") is the same scorer with every attribute
// weight zeroed, so only the title and synopsis overlap counts.
//
// PeerCorrelation ("peer_correlation") computes Pearson similarity between
// the user and every rater in the peer corpus over co-rated items, keeps
// the most similar peers above a threshold and aggregates what they rated
// highly, weighted by similarity. Small corpora, corpora without similar
// peers and scans that exceed the configured timeout all fall back to the
// attribute strategy.
//
// # Usage Example
//
//	attr := algorithms.NewAttributeContent(cfg.Attribute)
//	peer := algorithms.NewPeerCorrelation(cfg.Peer, attr)
//
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	engine.RegisterStrategy(attr)
//	engine.RegisterStrategy(peer)
//
// # Thread Safety
//
// Strategies hold only immutable configuration after construction and
// are safe for concurrent use.
package algorithms
