// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package recommend

// DiversityCaps bounds how many results may share an attribute value.
type DiversityCaps struct {
	MaxPerGenre       int
	MaxPerContributor int
}

// Diversify walks an already ranked list in order and keeps each item whose
// genres and contributor stay within caps, stopping at limit.
//
// It never reorders: kept items retain their relative order. Skipped items
// do not count toward any cap. The result is re-ranked densely from 1.
func Diversify(base []Recommendation, limit int, caps DiversityCaps) []Recommendation {
	if limit <= 0 || len(base) == 0 {
		return []Recommendation{}
	}

	genreCounts := make(map[string]int)
	contributorCounts := make(map[string]int)
	out := make([]Recommendation, 0, min(limit, len(base)))

	for i := range base {
		if len(out) >= limit {
			break
		}
		rec := &base[i]

		genres := distinctKeys(rec.Genres)
		if exceedsGenreCap(genres, genreCounts, caps.MaxPerGenre) {
			continue
		}
		contributor := NormalizeKey(rec.Contributor)
		if contributor != "" && caps.MaxPerContributor > 0 &&
			contributorCounts[contributor]+1 > caps.MaxPerContributor {
			continue
		}

		for _, g := range genres {
			genreCounts[g]++
		}
		if contributor != "" {
			contributorCounts[contributor]++
		}
		out = append(out, *rec)
	}

	assignRanks(out)
	return out
}

func exceedsGenreCap(genres []string, counts map[string]int, capacity int) bool {
	if capacity <= 0 {
		return false
	}
	for _, g := range genres {
		if counts[g]+1 > capacity {
			return true
		}
	}
	return false
}

// distinctKeys normalizes genre tags and drops blanks and repeats.
func distinctKeys(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	keys := make([]string, 0, len(tags))
	for _, t := range tags {
		k := NormalizeKey(t)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// assignRanks sets dense 1-based ranks in slice order.
func assignRanks(recs []Recommendation) {
	for i := range recs {
		recs[i].Rank = i + 1
	}
}
