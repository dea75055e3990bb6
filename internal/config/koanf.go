// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rw3iss/movie-recommender/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/movie-recommender/config.yaml",
	"/etc/movie-recommender/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()

	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			DefaultStrategy: engine.DefaultStrategy,
			Strategies: []string{
				recommend.StrategyAttribute,
				recommend.StrategyContentOnly,
				recommend.StrategyPeer,
			},
			DefaultLimit: engine.Limits.DefaultLimit,
			MaxLimit:     engine.Limits.MaxLimit,
			Attribute: AttributeConfig{
				GenreWeight:       engine.Attribute.GenreWeight,
				ContributorWeight: engine.Attribute.ContributorWeight,
				DecadeWeight:      engine.Attribute.DecadeWeight,
				ContentWeight:     engine.Attribute.ContentWeight,
				BaselineBlend:     engine.Attribute.BaselineBlend,
				HighRating:        engine.Attribute.HighRating,
				NeutralContent:    engine.Attribute.NeutralContent,
				HighBaseline:      engine.Attribute.HighBaseline,
			},
			Peer: PeerConfig{
				MinCommonItems: engine.Peer.MinCommonItems,
				MinSimilarity:  engine.Peer.MinSimilarity,
				MaxPeers:       engine.Peer.MaxPeers,
				EndorseRating:  engine.Peer.EndorseRating,
				MinCorpus:      engine.Peer.MinCorpus,
				MaxCorpus:      engine.Peer.MaxCorpus,
				Workers:        engine.Peer.Workers,
				Timeout:        engine.Peer.Timeout,
			},
			Diversity: DiversityConfig{
				MaxPerGenre:       engine.Diversity.MaxPerGenre,
				MaxPerContributor: engine.Diversity.MaxPerContributor,
				Overfetch:         engine.Diversity.Overfetch,
			},
			Cache: CacheConfig{
				Enabled:    engine.Cache.Enabled,
				TTL:        engine.Cache.TTL,
				MaxEntries: engine.Cache.MaxEntries,
			},
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults matching recommend.DefaultConfig
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// RECOMMEND_PEER_MIN_SIMILARITY -> recommend.peer.min_similarity
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"recommend.strategies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML lists arrive as slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Engine mappings
	"recommend_default_strategy": "recommend.default_strategy",
	"recommend_strategies":       "recommend.strategies",
	"recommend_default_limit":    "recommend.default_limit",
	"recommend_max_limit":        "recommend.max_limit",

	// Attribute scoring
	"recommend_attribute_genre_weight":       "recommend.attribute.genre_weight",
	"recommend_attribute_contributor_weight": "recommend.attribute.contributor_weight",
	"recommend_attribute_decade_weight":      "recommend.attribute.decade_weight",
	"recommend_attribute_content_weight":     "recommend.attribute.content_weight",
	"recommend_attribute_baseline_blend":     "recommend.attribute.baseline_blend",
	"recommend_attribute_high_rating":        "recommend.attribute.high_rating",
	"recommend_attribute_neutral_content":    "recommend.attribute.neutral_content",
	"recommend_attribute_high_baseline":      "recommend.attribute.high_baseline",

	// Peer correlation
	"recommend_peer_min_common_items": "recommend.peer.min_common_items",
	"recommend_peer_min_similarity":   "recommend.peer.min_similarity",
	"recommend_peer_max_peers":        "recommend.peer.max_peers",
	"recommend_peer_endorse_rating":   "recommend.peer.endorse_rating",
	"recommend_peer_min_corpus":       "recommend.peer.min_corpus",
	"recommend_peer_max_corpus":       "recommend.peer.max_corpus",
	"recommend_peer_workers":          "recommend.peer.workers",
	"recommend_peer_timeout":          "recommend.peer.timeout",

	// Diversification
	"recommend_diversity_max_per_genre":       "recommend.diversity.max_per_genre",
	"recommend_diversity_max_per_contributor": "recommend.diversity.max_per_contributor",
	"recommend_diversity_overfetch":           "recommend.diversity.overfetch",

	// Result cache
	"recommend_cache_enabled":     "recommend.cache.enabled",
	"recommend_cache_ttl":         "recommend.cache.ttl",
	"recommend_cache_max_entries": "recommend.cache.max_entries",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - LOG_LEVEL -> logging.level
//   - RECOMMEND_PEER_MIN_SIMILARITY -> recommend.peer.min_similarity
//   - RECOMMEND_CACHE_TTL -> recommend.cache.ttl
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated environment variables
	// never reach the config.
	return ""
}
