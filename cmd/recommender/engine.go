// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rw3iss/movie-recommender/internal/config"
	"github.com/rw3iss/movie-recommender/internal/recommend"
	"github.com/rw3iss/movie-recommender/internal/recommend/algorithms"
)

// initEngine builds the engine and registers the configured strategies.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEngine(cfg *config.Config, logger zerolog.Logger) (*recommend.Engine, error) {
	engineCfg := cfg.Recommend.EngineConfig()

	engine, err := recommend.NewEngine(engineCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create recommendation engine: %w", err)
	}

	// Peer correlation delegates to attribute scoring even when attribute
	// scoring is not itself selectable.
	attribute := algorithms.NewAttributeContent(engineCfg.Attribute)

	for _, name := range cfg.Recommend.Strategies {
		switch name {
		case recommend.StrategyAttribute:
			engine.RegisterStrategy(attribute)
		case recommend.StrategyContentOnly:
			engine.RegisterStrategy(algorithms.NewContentOnly(engineCfg.Attribute))
		case recommend.StrategyPeer:
			engine.RegisterStrategy(algorithms.NewPeerCorrelation(engineCfg.Peer, attribute))
		default:
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
	}

	logger.Debug().
		Strs("strategies", cfg.Recommend.Strategies).
		Str("default", engineCfg.DefaultStrategy).
		Msg("recommendation engine ready")

	return engine, nil
}
