// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

/*
Package config provides layered configuration loading for the recommender.

# Configuration Sources

LoadWithKoanf merges three layers, later layers winning:

 1. Built-in defaults (the same values as recommend.DefaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml or
    /etc/movie-recommender/config.yaml
 3. Environment variables, mapped explicitly by envTransformFunc

The CLI loads a .env file with godotenv before calling LoadWithKoanf, so
values from it behave like ordinary environment variables.

# Example config.yaml

	logging:
	  level: info
	  format: console
	recommend:
	  default_strategy: attribute_content
	  strategies: [attribute_content, content_only, peer_correlation]
	  peer:
	    min_similarity: 0.3
	    timeout: 2s
	  diversity:
	    max_per_genre: 3

# Environment Variables

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Engine:
  - RECOMMEND_DEFAULT_STRATEGY, RECOMMEND_STRATEGIES (comma-separated)
  - RECOMMEND_DEFAULT_LIMIT, RECOMMEND_MAX_LIMIT
  - RECOMMEND_ATTRIBUTE_* (genre_weight, contributor_weight, decade_weight,
    content_weight, baseline_blend, high_rating, neutral_content, high_baseline)
  - RECOMMEND_PEER_* (min_common_items, min_similarity, max_peers,
    endorse_rating, min_corpus, max_corpus, workers, timeout)
  - RECOMMEND_DIVERSITY_* (max_per_genre, max_per_contributor, overfetch)
  - RECOMMEND_CACHE_* (enabled, ttl, max_entries)

Unmapped variables are ignored.

# Validation

Validate rejects unknown log levels and formats and unknown strategy names.
It also rejects a default strategy that is not enabled, and anything
recommend.Config.Validate rejects.
*/
package config
