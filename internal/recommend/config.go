// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package recommend

import (
	"fmt"
	"time"
)

// Strategy names used by the registry.
const (
	StrategyAttribute   = "attribute_content"
	StrategyContentOnly = "content_only"
	StrategyPeer        = "peer_correlation"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// DefaultStrategy is used when a request names none.
	DefaultStrategy string `json:"default_strategy"`

	// Attribute contains parameters for attribute/content scoring.
	Attribute AttributeConfig `json:"attribute"`

	// Peer contains parameters for peer correlation.
	Peer PeerConfig `json:"peer"`

	// Diversity contains the per-attribute caps for Diversify.
	Diversity DiversityConfig `json:"diversity"`

	// Limits contains output limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains result cache parameters.
	Cache CacheConfig `json:"cache"`
}

// AttributeConfig contains weights for attribute/content scoring.
// Weights of the terms that apply to a candidate are renormalized, so they
// need not sum to 1.0.
type AttributeConfig struct {
	// GenreWeight scores the mean affinity of matched genres.
	// Default: 0.4.
	GenreWeight float64 `json:"genre_weight"`

	// ContributorWeight scores the affinity for the candidate's contributor.
	// Default: 0.3.
	ContributorWeight float64 `json:"contributor_weight"`

	// DecadeWeight scores the affinity for the candidate's release decade.
	// Default: 0.2.
	DecadeWeight float64 `json:"decade_weight"`

	// ContentWeight scores text overlap with highly rated titles.
	// Default: 0.1.
	ContentWeight float64 `json:"content_weight"`

	// BaselineBlend is the share of the final score taken from the
	// catalog baseline rating when one exists.
	// Default: 0.2.
	BaselineBlend float64 `json:"baseline_blend"`

	// HighRating is the minimum rating for a "highly rated" history item.
	// Default: 7.
	HighRating int `json:"high_rating"`

	// NeutralContent is the content term used when no item is highly rated.
	// Default: 5.0.
	NeutralContent float64 `json:"neutral_content"`

	// HighBaseline is the baseline at which the reason mentions it.
	// Default: 7.5.
	HighBaseline float64 `json:"high_baseline"`
}

// PeerConfig contains parameters for peer correlation.
type PeerConfig struct {
	// MinCommonItems is the minimum number of co-rated items for a
	// similarity to be computed. Below it the similarity is 0.
	// Default: 3.
	MinCommonItems int `json:"min_common_items"`

	// MinSimilarity is the exclusive lower bound for keeping a peer.
	// Default: 0.3.
	MinSimilarity float64 `json:"min_similarity"`

	// MaxPeers is the number of most similar peers kept.
	// Default: 10.
	MaxPeers int `json:"max_peers"`

	// EndorseRating is the minimum peer rating that endorses an item.
	// Default: 7.
	EndorseRating int `json:"endorse_rating"`

	// MinCorpus is the corpus size below which the strategy delegates
	// to attribute scoring.
	// Default: 2.
	MinCorpus int `json:"min_corpus"`

	// MaxCorpus caps how many peers are scanned per call.
	// Default: 5000.
	MaxCorpus int `json:"max_corpus"`

	// Workers is the number of parallel similarity workers.
	// Default: 4.
	Workers int `json:"workers"`

	// Timeout bounds the peer scan. Zero disables the deadline.
	// Default: 2s.
	Timeout time.Duration `json:"timeout"`
}

// DiversityConfig contains caps enforced by Diversify.
type DiversityConfig struct {
	// MaxPerGenre is the maximum number of results sharing a genre.
	// Default: 3.
	MaxPerGenre int `json:"max_per_genre"`

	// MaxPerContributor is the maximum number of results sharing a contributor.
	// Default: 2.
	MaxPerContributor int `json:"max_per_contributor"`

	// Overfetch multiplies the limit when ranking before diversification.
	// Default: 3.
	Overfetch int `json:"overfetch"`
}

// LimitsConfig contains output limits.
type LimitsConfig struct {
	// DefaultLimit is the number of recommendations returned by default.
	// Default: 10.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit is the largest limit a caller may request.
	// Default: 100.
	MaxLimit int `json:"max_limit"`
}

// CacheConfig contains result cache parameters.
type CacheConfig struct {
	// Enabled controls whether results are memoized.
	// Default: false.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries bounds the number of cached results.
	// Default: 1000.
	MaxEntries int `json:"max_entries"`
}

// DefaultAttributeConfig returns the standard attribute weights.
func DefaultAttributeConfig() AttributeConfig {
	return AttributeConfig{
		GenreWeight:       0.4,
		ContributorWeight: 0.3,
		DecadeWeight:      0.2,
		ContentWeight:     0.1,
		BaselineBlend:     0.2,
		HighRating:        7,
		NeutralContent:    5.0,
		HighBaseline:      7.5,
	}
}

// DefaultPeerConfig returns the standard peer correlation parameters.
func DefaultPeerConfig() PeerConfig {
	return PeerConfig{
		MinCommonItems: 3,
		MinSimilarity:  0.3,
		MaxPeers:       10,
		EndorseRating:  7,
		MinCorpus:      2,
		MaxCorpus:      5000,
		Workers:        4,
		Timeout:        2 * time.Second,
	}
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultStrategy: StrategyAttribute,
		Attribute:       DefaultAttributeConfig(),
		Peer:            DefaultPeerConfig(),
		Diversity: DiversityConfig{
			MaxPerGenre:       3,
			MaxPerContributor: 2,
			Overfetch:         3,
		},
		Limits: LimitsConfig{
			DefaultLimit: 10,
			MaxLimit:     100,
		},
		Cache: CacheConfig{
			Enabled:    false,
			TTL:        5 * time.Minute,
			MaxEntries: 1000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	a := c.Attribute
	if a.GenreWeight < 0 || a.ContributorWeight < 0 || a.DecadeWeight < 0 || a.ContentWeight < 0 {
		return fmt.Errorf("attribute weights must be non-negative")
	}
	if a.GenreWeight+a.ContributorWeight+a.DecadeWeight+a.ContentWeight == 0 {
		return fmt.Errorf("attribute weights must not all be zero")
	}
	if a.BaselineBlend < 0 || a.BaselineBlend > 1 {
		return fmt.Errorf("attribute.baseline_blend must be in [0, 1], got %f", a.BaselineBlend)
	}
	if a.HighRating < 0 || a.HighRating > 10 {
		return fmt.Errorf("attribute.high_rating must be in [0, 10], got %d", a.HighRating)
	}

	p := c.Peer
	if p.MinCommonItems < 1 {
		return fmt.Errorf("peer.min_common_items must be positive, got %d", p.MinCommonItems)
	}
	if p.MinSimilarity < -1 || p.MinSimilarity >= 1 {
		return fmt.Errorf("peer.min_similarity must be in [-1, 1), got %f", p.MinSimilarity)
	}
	if p.MaxPeers <= 0 {
		return fmt.Errorf("peer.max_peers must be positive, got %d", p.MaxPeers)
	}
	if p.MaxCorpus < p.MinCorpus {
		return fmt.Errorf("peer.max_corpus must be >= peer.min_corpus, got %d < %d", p.MaxCorpus, p.MinCorpus)
	}
	if p.Workers <= 0 {
		return fmt.Errorf("peer.workers must be positive, got %d", p.Workers)
	}
	if p.Timeout < 0 {
		return fmt.Errorf("peer.timeout must be non-negative, got %v", p.Timeout)
	}

	if c.Diversity.MaxPerGenre <= 0 || c.Diversity.MaxPerContributor <= 0 {
		return fmt.Errorf("diversity caps must be positive")
	}
	if c.Diversity.Overfetch < 1 {
		return fmt.Errorf("diversity.overfetch must be >= 1, got %d", c.Diversity.Overfetch)
	}

	if c.Limits.DefaultLimit <= 0 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries <= 0 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
