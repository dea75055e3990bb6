// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package recommend

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// RatedItem is a single rating from a user's history.
// The engine treats it as read-only input.
type RatedItem struct {
	// ItemID is the stable catalog key.
	ItemID string `json:"item_id" validate:"required"`

	// Title is the display title at rating time.
	Title string `json:"title"`

	// Rating is the user's score on a 0-10 scale.
	Rating int `json:"rating" validate:"min=0,max=10"`

	// RatedAt is when the rating was recorded.
	RatedAt time.Time `json:"rated_at"`

	// Note is optional free text attached to the rating.
	Note string `json:"note,omitempty"`
}

// CatalogItem is a candidate item with optional metadata.
type CatalogItem struct {
	ItemID         string    `json:"item_id" validate:"required"`
	Title          string    `json:"title"`
	Year           *int      `json:"year,omitempty"`
	Genres         GenreList `json:"genres,omitempty"`
	Contributor    string    `json:"contributor,omitempty"`
	Synopsis       string    `json:"synopsis,omitempty"`
	BaselineRating *float64  `json:"baseline_rating,omitempty" validate:"omitempty,min=0,max=10"`
}

// HasYear reports whether the item carries a release year.
func (c *CatalogItem) HasYear() bool {
	return c.Year != nil && *c.Year > 0
}

// Decade returns the release decade and whether the item has a year.
func (c *CatalogItem) Decade() (int, bool) {
	if !c.HasYear() {
		return 0, false
	}
	return DecadeOf(*c.Year), true
}

// Baseline returns the external baseline rating and whether it is present.
func (c *CatalogItem) Baseline() (float64, bool) {
	if c.BaselineRating == nil {
		return 0, false
	}
	return *c.BaselineRating, true
}

// DecadeOf returns floor(year/10)*10.
func DecadeOf(year int) int {
	if year < 0 {
		return ((year - 9) / 10) * 10
	}
	return (year / 10) * 10
}

// GenreList is a list of genre tags. It decodes from either a JSON array
// or a single comma-separated string.
type GenreList []string

// ParseGenres splits a comma-separated genre string, dropping blank tags.
func ParseGenres(s string) GenreList {
	parts := strings.Split(s, ",")
	out := make(GenreList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// UnmarshalJSON accepts ["Action","Drama"] or "Action, Drama".
func (g *GenreList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = ParseGenres(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(GenreList, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*g = out
	return nil
}

// Recommendation is a single ranked output entry.
type Recommendation struct {
	ItemID      string   `json:"item_id"`
	Title       string   `json:"title"`
	Year        *int     `json:"year,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Contributor string   `json:"contributor,omitempty"`

	// Score is the predicted affinity in [0, 10].
	Score float64 `json:"score"`

	// Reason is a human-readable explanation.
	Reason string `json:"reason"`

	// Rank is 1-based and dense in output order.
	Rank int `json:"rank"`
}

// NewRecommendation builds an unranked recommendation for a catalog item.
func NewRecommendation(item *CatalogItem, score float64, reason string) Recommendation {
	var genres []string
	if len(item.Genres) > 0 {
		genres = append(genres, item.Genres...)
	}
	return Recommendation{
		ItemID:      item.ItemID,
		Title:       item.Title,
		Year:        item.Year,
		Genres:      genres,
		Contributor: item.Contributor,
		Score:       ClampScore(score),
		Reason:      reason,
	}
}

// Score bounds.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// ClampScore bounds a score to [MinScore, MaxScore]. NaN maps to MinScore.
func ClampScore(s float64) float64 {
	if s != s || s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}

// Description explains a strategy to callers.
type Description struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Factors     []string `json:"factors"`
}

// Strategy scores candidates for a single user.
//
// Implementations must never return an item the user has already rated and
// must degrade to a fallback score instead of failing when a candidate
// carries no signal.
type Strategy interface {
	// Name returns the registry identifier.
	Name() string

	// Describe returns the strategy's name, description and scoring factors.
	Describe() Description

	// Score returns the predicted affinity of one candidate in [0, 10].
	Score(candidate *CatalogItem, history []RatedItem, profile *AffinityProfile) float64

	// Recommend scores the input pool and returns unranked recommendations.
	Recommend(ctx context.Context, in *Input) ([]Recommendation, error)
}

// Input is everything a strategy needs for one call.
type Input struct {
	Ratings     []RatedItem
	Pool        []CatalogItem
	Peers       [][]RatedItem
	Profile     *AffinityProfile
	Preferences Preferences
	Limit       int

	rated map[string]struct{}
}

// NewInput builds an Input and its rated-item exclusion set.
// A nil profile is built from ratings joined against the pool.
func NewInput(ratings []RatedItem, pool []CatalogItem, peers [][]RatedItem, profile *AffinityProfile) *Input {
	rated := make(map[string]struct{}, len(ratings))
	for i := range ratings {
		rated[ratings[i].ItemID] = struct{}{}
	}
	if profile == nil {
		profile = BuildProfile(ratings, PoolLookup(pool))
	}
	return &Input{
		Ratings: ratings,
		Pool:    pool,
		Peers:   peers,
		Profile: profile,
		rated:   rated,
	}
}

// IsRated reports whether the user has rated the item.
func (in *Input) IsRated(itemID string) bool {
	_, ok := in.rated[itemID]
	return ok
}

// Request is a recommendation request.
type Request struct {
	// RequestID is used for tracing. Generated if empty.
	RequestID string

	// UserID identifies the user for logging and caching. Optional.
	UserID string

	// Ratings is the user's rating history. Required.
	Ratings []RatedItem

	// Pool is the candidate set. Required.
	Pool []CatalogItem

	// Peers holds other users' rating vectors for peer correlation.
	Peers [][]RatedItem

	// Catalog joins metadata onto rated items. The pool is consulted
	// for items missing here.
	Catalog Catalog

	// Preferences is passed through to strategies.
	Preferences Preferences

	// Limit caps the output length. Zero uses the configured default.
	Limit int

	// Strategy names a registered strategy. Empty uses the engine default.
	Strategy string

	// RatingsVersion and PoolVersion key the result cache.
	RatingsVersion string
	PoolVersion    string
}

// Response contains a ranked recommendation list.
type Response struct {
	Items           []Recommendation `json:"items"`
	TotalCandidates int              `json:"total_candidates"`
	Metadata        ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID string    `json:"request_id"`
	UserID    string    `json:"user_id,omitempty"`
	Strategy  string    `json:"strategy"`
	View      string    `json:"view"`
	LatencyMS int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
}

// Metrics is a snapshot of engine counters.
type Metrics struct {
	RequestCount     int64   `json:"request_count"`
	CacheHits        int64   `json:"cache_hits"`
	CacheMisses      int64   `json:"cache_misses"`
	CacheEntries     int     `json:"cache_entries"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
	ErrorCount       int64   `json:"error_count"`
	ValidationErrors int64   `json:"validation_errors"`
	StrategyFailures int64   `json:"strategy_failures"`
}
