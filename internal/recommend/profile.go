// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package recommend

import "strings"

// AffinityProfile holds a user's mean rating per attribute value.
//
// Buckets with no observations are absent from the maps, so a missing key
// means "no data" rather than an average of zero. Genre and contributor
// keys are normalized with NormalizeKey.
type AffinityProfile struct {
	GenreAffinity       map[string]float64 `json:"genre_affinity"`
	ContributorAffinity map[string]float64 `json:"contributor_affinity"`
	DecadeAffinity      map[int]float64    `json:"decade_affinity"`
	OverallAverage      float64            `json:"overall_average"`

	// RatingCount is the number of ratings the profile was built from.
	RatingCount int `json:"rating_count"`
}

// NormalizeKey lowercases and trims an attribute value for bucket lookup.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsCold reports whether the profile has no attribute signal at all.
func (p *AffinityProfile) IsCold() bool {
	return p == nil ||
		(len(p.GenreAffinity) == 0 && len(p.ContributorAffinity) == 0 && len(p.DecadeAffinity) == 0)
}

// Genre returns the affinity for a genre tag.
func (p *AffinityProfile) Genre(genre string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	v, ok := p.GenreAffinity[NormalizeKey(genre)]
	return v, ok
}

// Contributor returns the affinity for a contributor name.
func (p *AffinityProfile) Contributor(name string) (float64, bool) {
	if p == nil || strings.TrimSpace(name) == "" {
		return 0, false
	}
	v, ok := p.ContributorAffinity[NormalizeKey(name)]
	return v, ok
}

// Decade returns the affinity for a decade.
func (p *AffinityProfile) Decade(decade int) (float64, bool) {
	if p == nil {
		return 0, false
	}
	v, ok := p.DecadeAffinity[decade]
	return v, ok
}

// bucket accumulates a running mean.
type bucket struct {
	sum   float64
	count int
}

func (b *bucket) add(v float64) {
	b.sum += v
	b.count++
}

func (b bucket) mean() float64 {
	return b.sum / float64(b.count)
}

// BuildProfile aggregates ratings into an AffinityProfile.
//
// Each rating joined to catalog metadata is added to every genre bucket of
// the item, to its contributor bucket and to its release decade bucket.
// Ratings without metadata still count toward OverallAverage.
func BuildProfile(ratings []RatedItem, lookup CatalogLookup) *AffinityProfile {
	genres := make(map[string]*bucket)
	contributors := make(map[string]*bucket)
	decades := make(map[int]*bucket)
	var overall bucket

	for i := range ratings {
		r := &ratings[i]
		v := float64(r.Rating)
		overall.add(v)

		if lookup == nil {
			continue
		}
		item, ok := lookup.Lookup(r.ItemID)
		if !ok || item == nil {
			continue
		}

		// A tag repeated on one item counts once.
		seen := make(map[string]struct{}, len(item.Genres))
		for _, g := range item.Genres {
			key := NormalizeKey(g)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			addTo(genres, key, v)
		}

		if key := NormalizeKey(item.Contributor); key != "" {
			addTo(contributors, key, v)
		}

		if decade, ok := item.Decade(); ok {
			b, exists := decades[decade]
			if !exists {
				b = &bucket{}
				decades[decade] = b
			}
			b.add(v)
		}
	}

	profile := &AffinityProfile{
		GenreAffinity:       means(genres),
		ContributorAffinity: means(contributors),
		DecadeAffinity:      make(map[int]float64, len(decades)),
		RatingCount:         overall.count,
	}
	for d, b := range decades {
		profile.DecadeAffinity[d] = b.mean()
	}
	if overall.count > 0 {
		profile.OverallAverage = overall.mean()
	}
	return profile
}

func addTo(m map[string]*bucket, key string, v float64) {
	b, ok := m[key]
	if !ok {
		b = &bucket{}
		m[key] = b
	}
	b.add(v)
}

func means(m map[string]*bucket) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, b := range m {
		out[k] = b.mean()
	}
	return out
}
