// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package recommend

import (
	"fmt"
	"math"
	"testing"

	"github.com/goccy/go-json"
)

func TestGenreList_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"array", `["Action","Drama"]`, []string{"Action", "Drama"}, false},
		{"array trims and drops blanks", `[" Action ","", "  "]`, []string{"Action"}, false},
		{"comma string", `"Crime, Drama ,Thriller"`, []string{"Crime", "Drama", "Thriller"}, false},
		{"empty string", `""`, []string{}, false},
		{"number", `42`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var g GenreList
			err := json.Unmarshal([]byte(tt.input), &g)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if fmt.Sprint([]string(g)) != fmt.Sprint(tt.want) {
				t.Errorf("GenreList = %q, want %q", []string(g), tt.want)
			}
		})
	}
}

func TestCatalogItem_DecodesBothGenreForms(t *testing.T) {
	data := `[
		{"item_id": "a", "genres": ["Western"], "year": 1966},
		{"item_id": "b", "genres": "Horror, Sci-Fi", "baseline_rating": 8.4}
	]`

	var items []CatalogItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if d, ok := items[0].Decade(); !ok || d != 1960 {
		t.Errorf("Decade() = %d, %v, want 1960, true", d, ok)
	}
	if len(items[1].Genres) != 2 || items[1].Genres[1] != "Sci-Fi" {
		t.Errorf("Genres = %q", items[1].Genres)
	}
	if b, ok := items[1].Baseline(); !ok || b != 8.4 {
		t.Errorf("Baseline() = %v, %v, want 8.4, true", b, ok)
	}
	if _, ok := items[0].Baseline(); ok {
		t.Error("Baseline() ok = true for item without baseline")
	}
}

func TestDecadeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		year int
		want int
	}{
		{1994, 1990},
		{1990, 1990},
		{1999, 1990},
		{2000, 2000},
		{7, 0},
		{0, 0},
		{-1, -10},
		{-10, -10},
		{-11, -20},
	}
	for _, tt := range tests {
		if got := DecadeOf(tt.year); got != tt.want {
			t.Errorf("DecadeOf(%d) = %d, want %d", tt.year, got, tt.want)
		}
	}
}

func TestCatalogItem_HasYear(t *testing.T) {
	tests := []struct {
		name string
		year *int
		want bool
	}{
		{"nil", nil, false},
		{"zero", intPtr(0), false},
		{"set", intPtr(1982), true},
	}
	for _, tt := range tests {
		item := CatalogItem{ItemID: "x", Year: tt.year}
		if got := item.HasYear(); got != tt.want {
			t.Errorf("%s: HasYear() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{5.5, 5.5},
		{10, 10},
		{10.01, 10},
		{math.Inf(1), 10},
		{math.Inf(-1), 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRecommendation(t *testing.T) {
	item := &CatalogItem{
		ItemID:      "heat",
		Title:       "Heat",
		Year:        intPtr(1995),
		Genres:      GenreList{"Crime"},
		Contributor: "Michael Mann",
	}

	r := NewRecommendation(item, 12, "because")
	if r.Score != 10 {
		t.Errorf("Score = %v, want 10", r.Score)
	}
	if r.ItemID != "heat" || r.Title != "Heat" || r.Contributor != "Michael Mann" || r.Reason != "because" {
		t.Errorf("Recommendation = %+v", r)
	}
	if r.Rank != 0 {
		t.Errorf("Rank = %d, want 0 before ranking", r.Rank)
	}

	r.Genres[0] = "Changed"
	if item.Genres[0] != "Crime" {
		t.Error("NewRecommendation shares the item's genre slice")
	}

	bare := NewRecommendation(&CatalogItem{ItemID: "x"}, 3, "")
	if bare.Genres != nil {
		t.Errorf("Genres = %v, want nil", bare.Genres)
	}
}

func TestInput_IsRated(t *testing.T) {
	in := NewInput(sampleRatings(), samplePool(), nil, nil)

	if !in.IsRated("m1") || !in.IsRated("m2") {
		t.Error("IsRated() = false for a rated item")
	}
	if in.IsRated("m3") {
		t.Error("IsRated(m3) = true, want false")
	}
	if in.Profile == nil {
		t.Fatal("Profile = nil, want profile built from the pool")
	}
	if in.Profile.RatingCount != 2 {
		t.Errorf("RatingCount = %d, want 2", in.Profile.RatingCount)
	}
}

func TestPreferences(t *testing.T) {
	t.Parallel()

	p := Preferences{
		"int":     3,
		"int64":   int64(4),
		"float":   5.9,
		"string":  " 6 ",
		"bad":     "six",
		"bool":    true,
		"boolstr": "true",
		"nil":     nil,
		"slice":   []int{1},
	}

	intTests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"int", 3, true},
		{"int64", 4, true},
		{"float", 5, true},
		{"string", 6, true},
		{"bad", 0, false},
		{"nil", 0, false},
		{"slice", 0, false},
		{"absent", 0, false},
	}
	for _, tt := range intTests {
		got, ok := p.Int(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Int(%q) = %d, %v, want %d, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}

	if f, ok := p.Float("float"); !ok || f != 5.9 {
		t.Errorf("Float(float) = %v, %v, want 5.9, true", f, ok)
	}
	if f, ok := p.Float("int"); !ok || f != 3 {
		t.Errorf("Float(int) = %v, %v, want 3, true", f, ok)
	}
	if _, ok := p.Float("bad"); ok {
		t.Error("Float(bad) ok = true")
	}

	if s, ok := p.String("bad"); !ok || s != "six" {
		t.Errorf("String(bad) = %q, %v", s, ok)
	}
	if _, ok := p.String("int"); ok {
		t.Error("String(int) ok = true")
	}

	if !p.Bool("bool") || !p.Bool("boolstr") {
		t.Error("Bool() = false for a true value")
	}
	if p.Bool("bad") || p.Bool("absent") || p.Bool("int") {
		t.Error("Bool() = true for a non-boolean value")
	}

	var empty Preferences
	if _, ok := empty.Int(PrefLimit); ok {
		t.Error("nil Preferences Int() ok = true")
	}
}

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	pool := []CatalogItem{{ItemID: "a", Title: "Pool A"}, {ItemID: "b", Title: "Pool B"}}
	catalog := NewCatalog([]CatalogItem{{ItemID: "a", Title: "Catalog A"}, {ItemID: "c", Title: "first"}, {ItemID: "c", Title: "second"}})
	dupPool := []CatalogItem{{ItemID: "d", Title: "first"}, {ItemID: "d", Title: "second"}}

	tests := []struct {
		name   string
		lookup CatalogLookup
		id     string
		want   string
		ok     bool
	}{
		{"catalog hit", catalog, "a", "Catalog A", true},
		{"catalog first duplicate wins", catalog, "c", "first", true},
		{"pool first duplicate wins", PoolLookup(dupPool), "d", "first", true},
		{"catalog built from pool agrees with pool", NewCatalog(dupPool), "d", "first", true},
		{"catalog miss", catalog, "b", "", false},
		{"pool hit", PoolLookup(pool), "b", "Pool B", true},
		{"pool miss", PoolLookup(pool), "z", "", false},
		{"chain prefers first", chainLookup{catalog, PoolLookup(pool)}, "a", "Catalog A", true},
		{"chain falls through", chainLookup{catalog, PoolLookup(pool)}, "b", "Pool B", true},
		{"chain skips nil", chainLookup{nil, PoolLookup(pool)}, "a", "Pool A", true},
		{"chain miss", chainLookup{catalog, PoolLookup(pool)}, "z", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			item, ok := tt.lookup.Lookup(tt.id)
			if ok != tt.ok {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.id, ok, tt.ok)
			}
			if ok && item.Title != tt.want {
				t.Errorf("Lookup(%q) title = %q, want %q", tt.id, item.Title, tt.want)
			}
		})
	}
}
