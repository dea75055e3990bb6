// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rw3iss/movie-recommender/internal/logging"
	"github.com/rw3iss/movie-recommender/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds recommendation engine configuration.
//
// Environment Variables:
//   - RECOMMEND_DEFAULT_STRATEGY: Strategy used when a request names none
//     (default: attribute_content)
//   - RECOMMEND_STRATEGIES: Comma-separated list of strategies to register
//     (default: attribute_content,content_only,peer_correlation)
//   - RECOMMEND_DEFAULT_LIMIT / RECOMMEND_MAX_LIMIT: Output limits (default: 10 / 100)
//   - RECOMMEND_PEER_*: Peer correlation tuning, e.g. RECOMMEND_PEER_MIN_SIMILARITY
//   - RECOMMEND_CACHE_ENABLED: Memoize results keyed by input versions (default: false)
//
// Example - attribute scoring only:
//
//	cfg := RecommendConfig{
//	    DefaultStrategy: "attribute_content",
//	    Strategies:      []string{"attribute_content"},
//	}
type RecommendConfig struct {
	// DefaultStrategy is used when a request names none.
	DefaultStrategy string `koanf:"default_strategy"`

	// Strategies is the list of strategies registered at startup.
	// Available: attribute_content, content_only, peer_correlation
	Strategies []string `koanf:"strategies"`

	// DefaultLimit is the number of recommendations returned by default.
	DefaultLimit int `koanf:"default_limit"`

	// MaxLimit is the largest limit a caller may request.
	MaxLimit int `koanf:"max_limit"`

	Attribute AttributeConfig `koanf:"attribute"`
	Peer      PeerConfig      `koanf:"peer"`
	Diversity DiversityConfig `koanf:"diversity"`
	Cache     CacheConfig     `koanf:"cache"`
}

// AttributeConfig holds attribute/content scoring weights.
type AttributeConfig struct {
	GenreWeight       float64 `koanf:"genre_weight"`
	ContributorWeight float64 `koanf:"contributor_weight"`
	DecadeWeight      float64 `koanf:"decade_weight"`
	ContentWeight     float64 `koanf:"content_weight"`
	BaselineBlend     float64 `koanf:"baseline_blend"`
	HighRating        int     `koanf:"high_rating"`
	NeutralContent    float64 `koanf:"neutral_content"`
	HighBaseline      float64 `koanf:"high_baseline"`
}

// PeerConfig holds peer correlation settings.
type PeerConfig struct {
	MinCommonItems int           `koanf:"min_common_items"`
	MinSimilarity  float64       `koanf:"min_similarity"`
	MaxPeers       int           `koanf:"max_peers"`
	EndorseRating  int           `koanf:"endorse_rating"`
	MinCorpus      int           `koanf:"min_corpus"`
	MaxCorpus      int           `koanf:"max_corpus"`
	Workers        int           `koanf:"workers"`
	Timeout        time.Duration `koanf:"timeout"`
}

// DiversityConfig holds diversification caps.
type DiversityConfig struct {
	MaxPerGenre       int `koanf:"max_per_genre"`
	MaxPerContributor int `koanf:"max_per_contributor"`
	Overfetch         int `koanf:"overfetch"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// knownStrategies lists the strategy names the CLI can construct.
var knownStrategies = map[string]bool{
	recommend.StrategyAttribute:   true,
	recommend.StrategyContentOnly: true,
	recommend.StrategyPeer:        true,
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateRecommend()
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, disabled (got %q)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if len(r.Strategies) == 0 {
		return fmt.Errorf("RECOMMEND_STRATEGIES must list at least one strategy")
	}

	enabled := false
	for _, name := range r.Strategies {
		if !knownStrategies[name] {
			return fmt.Errorf("RECOMMEND_STRATEGIES contains unknown strategy %q", name)
		}
		if name == r.DefaultStrategy {
			enabled = true
		}
	}
	if !enabled {
		return fmt.Errorf("RECOMMEND_DEFAULT_STRATEGY %q is not in RECOMMEND_STRATEGIES", r.DefaultStrategy)
	}

	if err := r.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// HasStrategy reports whether name is in the enabled strategy list.
func (r *RecommendConfig) HasStrategy(name string) bool {
	for _, s := range r.Strategies {
		if s == name {
			return true
		}
	}
	return false
}

// EngineConfig maps the application settings onto the engine configuration.
func (r *RecommendConfig) EngineConfig() *recommend.Config {
	return &recommend.Config{
		DefaultStrategy: r.DefaultStrategy,
		Attribute: recommend.AttributeConfig{
			GenreWeight:       r.Attribute.GenreWeight,
			ContributorWeight: r.Attribute.ContributorWeight,
			DecadeWeight:      r.Attribute.DecadeWeight,
			ContentWeight:     r.Attribute.ContentWeight,
			BaselineBlend:     r.Attribute.BaselineBlend,
			HighRating:        r.Attribute.HighRating,
			NeutralContent:    r.Attribute.NeutralContent,
			HighBaseline:      r.Attribute.HighBaseline,
		},
		Peer: recommend.PeerConfig{
			MinCommonItems: r.Peer.MinCommonItems,
			MinSimilarity:  r.Peer.MinSimilarity,
			MaxPeers:       r.Peer.MaxPeers,
			EndorseRating:  r.Peer.EndorseRating,
			MinCorpus:      r.Peer.MinCorpus,
			MaxCorpus:      r.Peer.MaxCorpus,
			Workers:        r.Peer.Workers,
			Timeout:        r.Peer.Timeout,
		},
		Diversity: recommend.DiversityConfig{
			MaxPerGenre:       r.Diversity.MaxPerGenre,
			MaxPerContributor: r.Diversity.MaxPerContributor,
			Overfetch:         r.Diversity.Overfetch,
		},
		Limits: recommend.LimitsConfig{
			DefaultLimit: r.DefaultLimit,
			MaxLimit:     r.MaxLimit,
		},
		Cache: recommend.CacheConfig{
			Enabled:    r.Cache.Enabled,
			TTL:        r.Cache.TTL,
			MaxEntries: r.Cache.MaxEntries,
		},
	}
}

// LoggingSettings converts the logging section for logging.Init.
func (l LoggingConfig) LoggingSettings() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = strings.ToLower(l.Format)
	cfg.Caller = l.Caller
	return cfg
}
