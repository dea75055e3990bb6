// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package algorithms

import (
	"context"
	"fmt"
	"strings"

	"github.com/rw3iss/movie-recommender/internal/recommend"
)

// maxReasonGenres bounds how many genre names a reason lists.
const maxReasonGenres = 3

// cancelCheckInterval is how many candidates are scored between context checks.
const cancelCheckInterval = 256

// AttributeContent scores candidates by how well their attributes match
// the user's affinity profile.
//
// Four terms participate when applicable:
//
//	genre       mean affinity of the candidate's genres present in the profile
//	contributor affinity for the candidate's contributor
//	decade      affinity for the candidate's release decade
//	content     rating-weighted token Jaccard against highly rated titles, on [0, 10]
//
// Their weighted mean is renormalized by the weights that applied. With no
// applicable term the candidate falls back to its baseline rating or the
// user's overall average. A baseline rating, when present, is blended in
// as a prior.
type AttributeContent struct {
	name        string
	description string
	factors     []string
	config      recommend.AttributeConfig
}

// NewAttributeContent creates the attribute/content strategy.
func NewAttributeContent(cfg recommend.AttributeConfig) *AttributeContent {
	return &AttributeContent{
		name:        recommend.StrategyAttribute,
		description: "Scores unseen titles by your genre, contributor and decade affinities, text overlap with titles you rated highly and the catalog rating.",
		factors:     []string{"genre affinity", "contributor affinity", "decade affinity", "content overlap", "baseline rating"},
		config:      withAttributeDefaults(cfg),
	}
}

func withAttributeDefaults(cfg recommend.AttributeConfig) recommend.AttributeConfig {
	def := recommend.DefaultAttributeConfig()
	if cfg.GenreWeight < 0 {
		cfg.GenreWeight = 0
	}
	if cfg.ContributorWeight < 0 {
		cfg.ContributorWeight = 0
	}
	if cfg.DecadeWeight < 0 {
		cfg.DecadeWeight = 0
	}
	if cfg.ContentWeight < 0 {
		cfg.ContentWeight = 0
	}
	if cfg.BaselineBlend < 0 || cfg.BaselineBlend > 1 {
		cfg.BaselineBlend = def.BaselineBlend
	}
	if cfg.HighRating <= 0 {
		cfg.HighRating = def.HighRating
	}
	if cfg.NeutralContent <= 0 {
		cfg.NeutralContent = def.NeutralContent
	}
	if cfg.HighBaseline <= 0 {
		cfg.HighBaseline = def.HighBaseline
	}
	return cfg
}

// Name returns the strategy identifier.
func (a *AttributeContent) Name() string {
	return a.name
}

// Describe returns the strategy's name, description and scoring factors.
func (a *AttributeContent) Describe() recommend.Description {
	factors := make([]string, len(a.factors))
	copy(factors, a.factors)
	return recommend.Description{
		Name:        a.name,
		Description: a.description,
		Factors:     factors,
	}
}

// Score returns the predicted affinity of one candidate in [0, 10].
// A nil profile is built from history without attribute metadata.
func (a *AttributeContent) Score(candidate *recommend.CatalogItem, history []recommend.RatedItem, profile *recommend.AffinityProfile) float64 {
	if candidate == nil {
		return recommend.MinScore
	}
	if profile == nil {
		profile = recommend.BuildProfile(history, nil)
	}
	return a.evaluate(candidate, a.likedTitles(history), profile).score
}

// Recommend scores every unrated pool item.
func (a *AttributeContent) Recommend(ctx context.Context, in *recommend.Input) ([]recommend.Recommendation, error) {
	profile := in.Profile
	if profile == nil {
		profile = recommend.BuildProfile(in.Ratings, recommend.PoolLookup(in.Pool))
	}
	liked := a.likedTitles(in.Ratings)

	recs := make([]recommend.Recommendation, 0, len(in.Pool))
	for i := range in.Pool {
		if i%cancelCheckInterval == 0 && ContextCancelled(ctx) {
			return nil, &recommend.TimeoutError{Stage: "attribute scoring", Err: ctx.Err()}
		}

		item := &in.Pool[i]
		if in.IsRated(item.ItemID) {
			continue
		}

		ev := a.evaluate(item, liked, profile)
		recs = append(recs, recommend.NewRecommendation(item, ev.score, a.reason(item, ev)))
	}

	return recs, nil
}

// likedTitle is a tokenized highly rated title and its rating.
type likedTitle struct {
	tokens tokenSet
	rating float64
}

func (a *AttributeContent) likedTitles(history []recommend.RatedItem) []likedTitle {
	var liked []likedTitle
	for i := range history {
		if history[i].Rating < a.config.HighRating {
			continue
		}
		liked = append(liked, likedTitle{
			tokens: tokenize(history[i].Title),
			rating: float64(history[i].Rating),
		})
	}
	return liked
}

// evaluation is one candidate's score and the attributes that produced it.
type evaluation struct {
	score         float64
	genres        []string
	contributor   string
	attributeHits int
	cold          bool
}

func (a *AttributeContent) evaluate(c *recommend.CatalogItem, liked []likedTitle, profile *recommend.AffinityProfile) evaluation {
	var (
		ev        evaluation
		weighted  float64
		weightSum float64
	)

	if a.config.GenreWeight > 0 {
		if mean, matched := genreAffinity(c.Genres, profile); len(matched) > 0 {
			weighted += a.config.GenreWeight * mean
			weightSum += a.config.GenreWeight
			ev.genres = matched
			ev.attributeHits++
		}
	}

	if a.config.ContributorWeight > 0 {
		if v, ok := profile.Contributor(c.Contributor); ok {
			weighted += a.config.ContributorWeight * v
			weightSum += a.config.ContributorWeight
			ev.contributor = strings.TrimSpace(c.Contributor)
			ev.attributeHits++
		}
	}

	if a.config.DecadeWeight > 0 {
		if decade, ok := c.Decade(); ok {
			if v, ok := profile.Decade(decade); ok {
				weighted += a.config.DecadeWeight * v
				weightSum += a.config.DecadeWeight
				ev.attributeHits++
			}
		}
	}

	// The neutral content value alone is not a signal.
	if a.config.ContentWeight > 0 && (len(liked) > 0 || ev.attributeHits > 0) {
		weighted += a.config.ContentWeight * a.contentTerm(c, liked)
		weightSum += a.config.ContentWeight
	}

	if weightSum == 0 {
		ev.cold = true
		ev.score = fallbackScore(c, profile)
		return ev
	}

	score := weighted / weightSum
	if b, ok := c.Baseline(); ok {
		score = (1-a.config.BaselineBlend)*score + a.config.BaselineBlend*b
	}
	ev.score = recommend.ClampScore(score)
	return ev
}

// contentTerm returns the mean over liked titles of jaccard * rating.
// A liked title's rating bounds what an exact match against it contributes.
func (a *AttributeContent) contentTerm(c *recommend.CatalogItem, liked []likedTitle) float64 {
	if len(liked) == 0 {
		return a.config.NeutralContent
	}

	text := tokenize(append([]string{c.Title, c.Synopsis}, c.Genres...)...)

	var sum float64
	for i := range liked {
		sum += jaccardSimilarity(text, liked[i].tokens) * liked[i].rating
	}
	return sum / float64(len(liked))
}

// genreAffinity returns the mean profile affinity over the candidate's
// genres present in the profile, and those genres in candidate order.
func genreAffinity(genres []string, profile *recommend.AffinityProfile) (float64, []string) {
	var (
		sum     float64
		matched []string
	)
	seen := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		key := recommend.NormalizeKey(g)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if v, ok := profile.Genre(key); ok {
			sum += v
			matched = append(matched, strings.TrimSpace(g))
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}
	return sum / float64(len(matched)), matched
}

// reason explains a score: matched genres, then matched contributor, then
// a high baseline, then a score tier.
func (a *AttributeContent) reason(c *recommend.CatalogItem, ev evaluation) string {
	if len(ev.genres) > 0 {
		genres := ev.genres
		if len(genres) > maxReasonGenres {
			genres = genres[:maxReasonGenres]
		}
		return "matches genres you rated: " + strings.Join(genres, ", ")
	}
	if ev.contributor != "" {
		return fmt.Sprintf("from %s, whose work you rated", ev.contributor)
	}
	if b, ok := c.Baseline(); ok && b >= a.config.HighBaseline {
		return fmt.Sprintf("highly rated (%.1f/10)", b)
	}
	return scoreTier(ev.score)
}

func scoreTier(score float64) string {
	switch {
	case score >= 7:
		return "strong match"
	case score >= 6:
		return "good match"
	default:
		return "potential discovery"
	}
}
