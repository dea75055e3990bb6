// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package algorithms

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/rw3iss/movie-recommender/internal/recommend"
)

// PearsonSimilarity computes the Pearson correlation of two rating vectors
// over their commonly rated items.
//
//	r = (Σxy - ΣxΣy/n) / sqrt((Σx² - (Σx)²/n)(Σy² - (Σy)²/n))
//
// Fewer than minCommon common items, or zero variance on either side,
// yields 0. Sums run over common items in sorted key order, so the result
// does not depend on argument order.
func PearsonSimilarity(a, b map[string]float64, minCommon int) float64 {
	common := commonKeys(a, b)
	n := len(common)
	if n == 0 || n < minCommon {
		return 0
	}

	var sumX, sumY, sumXX, sumYY, sumXY float64
	for _, k := range common {
		x, y := a[k], b[k]
		sumX += x
		sumY += y
		sumXX += x * x
		sumYY += y * y
		sumXY += x * y
	}

	nf := float64(n)
	num := sumXY - sumX*sumY/nf
	den := (sumXX - sumX*sumX/nf) * (sumYY - sumY*sumY/nf)
	if den <= 0 {
		return 0
	}

	r := num / math.Sqrt(den)
	// Rounding can push |r| slightly past 1.
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

// commonKeys returns the keys present in both maps, sorted.
func commonKeys(a, b map[string]float64) []string {
	if len(b) < len(a) {
		a, b = b, a
	}
	keys := make([]string, 0, len(a))
	for k := range a {
		if _, ok := b[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// ratingVector converts a rating history to itemID -> rating.
// Duplicate ratings of one item keep the highest.
func ratingVector(ratings []recommend.RatedItem) map[string]float64 {
	v := make(map[string]float64, len(ratings))
	for i := range ratings {
		r := float64(ratings[i].Rating)
		if cur, ok := v[ratings[i].ItemID]; !ok || r > cur {
			v[ratings[i].ItemID] = r
		}
	}
	return v
}

type tokenSet map[string]struct{}

// tokenize lower-cases the given texts and splits them on anything that
// is not a letter or digit.
func tokenize(texts ...string) tokenSet {
	set := make(tokenSet)
	for _, text := range texts {
		fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, f := range fields {
			set[f] = struct{}{}
		}
	}
	return set
}

// jaccardSimilarity computes |A ∩ B| / |A ∪ B|. Two empty sets yield 0.
func jaccardSimilarity(a, b tokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}

	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
