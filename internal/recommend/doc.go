// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

// Package recommend implements the recommendation scoring and ranking core.
//
// # Architecture
//
// A request carries everything the engine needs: the user's ratings, the
// candidate pool, an optional peer corpus and optional catalog metadata for
// rated items. The engine never fetches or persists data.
//
//   - Affinity profile: mean rating per genre, contributor and release decade
//   - Strategies: attribute/content scoring, content-only scoring and peer
//     correlation (see the algorithms subpackage)
//   - Orchestration: validation, strategy dispatch, ranking, specialized
//     views and diversification
//
// # Output Guarantees
//
// Every response satisfies the following:
//
//   - No item the user has rated is returned
//   - Scores lie in [0, 10]
//   - Ranks are 1..N in output order, which is descending score order
//   - At most the requested limit is returned (10 by default)
//   - Item IDs are unique
//
// # Errors
//
// Empty ratings, an empty pool or a missing strategy abort with a
// *ValidationError. A strategy error or panic aborts with a
// *StrategyFailure naming the stage. Degenerate data such as too few
// co-rated items is absorbed by the strategies and never surfaced.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	attr := algorithms.NewAttributeContent(cfg.Attribute)
//	engine.RegisterStrategy(attr)
//	engine.RegisterStrategy(algorithms.NewPeerCorrelation(cfg.Peer, attr))
//
//	resp, err := engine.GenerateRecommendations(ctx, recommend.Request{
//	    Ratings: ratings,
//	    Pool:    pool,
//	})
//
// # Thread Safety
//
// Register strategies during initialization. After that the engine is
// read-only and safe for concurrent use. Strategy selection is per call
// (Request.Strategy, GenerateWith) or per derived engine (WithStrategy).
package recommend
