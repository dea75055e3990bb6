// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package recommend

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockStrategy implements Strategy for testing.
type mockStrategy struct {
	name string

	// scores maps item IDs to raw scores. Unlisted items score 5.
	scores map[string]float64

	// includeRated emits rated items as well.
	includeRated bool

	// duplicate emits every item twice, the copy scoring one point lower.
	duplicate bool

	err      error
	panicMsg string

	calls atomic.Int32

	mu        sync.Mutex
	lastInput *Input
}

func newMockStrategy(name string) *mockStrategy {
	return &mockStrategy{name: name, scores: make(map[string]float64)}
}

func (m *mockStrategy) Name() string {
	return m.name
}

func (m *mockStrategy) Describe() Description {
	return Description{Name: m.name, Description: "mock", Factors: []string{"fixed scores"}}
}

func (m *mockStrategy) Score(candidate *CatalogItem, _ []RatedItem, _ *AffinityProfile) float64 {
	if s, ok := m.scores[candidate.ItemID]; ok {
		return ClampScore(s)
	}
	return 5
}

func (m *mockStrategy) Recommend(_ context.Context, in *Input) ([]Recommendation, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastInput = in
	m.mu.Unlock()

	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.err != nil {
		return nil, m.err
	}

	var recs []Recommendation
	for i := range in.Pool {
		item := &in.Pool[i]
		if !m.includeRated && in.IsRated(item.ItemID) {
			continue
		}
		score, ok := m.scores[item.ItemID]
		if !ok {
			score = 5
		}
		rec := Recommendation{ItemID: item.ItemID, Title: item.Title, Year: item.Year, Genres: item.Genres, Contributor: item.Contributor, Score: score, Reason: "mock"}
		recs = append(recs, rec)
		if m.duplicate {
			rec.Score = score - 1
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (m *mockStrategy) input() *Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastInput
}

// testLogger returns a zerolog logger for testing.
func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestEngine(t *testing.T, cfg *Config, strategies ...Strategy) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	for _, s := range strategies {
		engine.RegisterStrategy(s)
	}
	return engine
}

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func sampleRatings() []RatedItem {
	return []RatedItem{
		{ItemID: "m1", Title: "First", Rating: 9},
		{ItemID: "m2", Title: "Second", Rating: 8},
	}
}

func samplePool() []CatalogItem {
	return []CatalogItem{
		{ItemID: "m1", Title: "First"},
		{ItemID: "m3", Title: "Third", Genres: GenreList{"Action"}, Contributor: "X"},
	}
}

// --- Test: NewEngine ---

func TestNewEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       *Config
		wantErr   bool
		wantCache bool
	}{
		{name: "nil config uses defaults"},
		{name: "default config", cfg: DefaultConfig()},
		{
			name: "cache enabled",
			cfg: func() *Config {
				cfg := DefaultConfig()
				cfg.Cache.Enabled = true
				return cfg
			}(),
			wantCache: true,
		},
		{
			name: "invalid config",
			cfg: func() *Config {
				cfg := DefaultConfig()
				cfg.Limits.DefaultLimit = 0
				return cfg
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(tt.cfg, testLogger())
			if tt.wantErr {
				if err == nil {
					t.Error("NewEngine() = nil error, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEngine() error = %v, want nil", err)
			}
			if (engine.results != nil) != tt.wantCache {
				t.Errorf("cache present = %v, want %v", engine.results != nil, tt.wantCache)
			}
		})
	}
}

func TestEngine_ConfigIsCopied(t *testing.T) {
	cfg := DefaultConfig()
	engine := newTestEngine(t, cfg)

	cfg.Limits.DefaultLimit = 1
	if got := engine.GetConfig().Limits.DefaultLimit; got != 10 {
		t.Errorf("DefaultLimit = %d after caller mutation, want 10", got)
	}

	out := engine.GetConfig()
	out.Limits.DefaultLimit = 2
	if got := engine.GetConfig().Limits.DefaultLimit; got != 10 {
		t.Errorf("DefaultLimit = %d after GetConfig mutation, want 10", got)
	}
}

func TestEngine_RegisterStrategy(t *testing.T) {
	engine := newTestEngine(t, nil)

	first := newMockStrategy("first")
	second := newMockStrategy("second")
	replacement := newMockStrategy("first")

	engine.RegisterStrategy(first)
	engine.RegisterStrategy(second)
	engine.RegisterStrategy(replacement)

	all := engine.Strategies()
	if len(all) != 2 {
		t.Fatalf("len(Strategies()) = %d, want 2", len(all))
	}
	if all[0] != Strategy(replacement) || all[1] != Strategy(second) {
		t.Errorf("Strategies() order = [%s %s], want replacement then second", all[0].Name(), all[1].Name())
	}

	if s, ok := engine.Strategy("first"); !ok || s != Strategy(replacement) {
		t.Error("Strategy(first) did not return the replacement")
	}
	if _, ok := engine.Strategy("missing"); ok {
		t.Error("Strategy(missing) ok = true, want false")
	}
}

// --- Test: GenerateRecommendations ---

func TestEngine_GenerateRecommendations_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		register  bool
		request   Request
		wantField string
	}{
		{
			name:      "empty pool",
			register:  true,
			request:   Request{Ratings: sampleRatings()},
			wantField: "pool",
		},
		{
			name:      "empty pool without strategy",
			request:   Request{Ratings: sampleRatings()},
			wantField: "pool",
		},
		{
			name:      "empty ratings",
			register:  true,
			request:   Request{Pool: samplePool()},
			wantField: "ratings",
		},
		{
			name:      "no strategy configured",
			request:   Request{Ratings: sampleRatings(), Pool: samplePool()},
			wantField: "strategy",
		},
		{
			name:      "unknown strategy",
			register:  true,
			request:   Request{Ratings: sampleRatings(), Pool: samplePool(), Strategy: "missing"},
			wantField: "strategy",
		},
		{
			name:      "rating above range",
			register:  true,
			request:   Request{Ratings: []RatedItem{{ItemID: "m1", Rating: 11}}, Pool: samplePool()},
			wantField: "ratings[0]",
		},
		{
			name:      "negative rating",
			register:  true,
			request:   Request{Ratings: []RatedItem{{ItemID: "m1", Rating: 5}, {ItemID: "m2", Rating: -1}}, Pool: samplePool()},
			wantField: "ratings[1]",
		},
		{
			name:      "blank pool item id",
			register:  true,
			request:   Request{Ratings: sampleRatings(), Pool: []CatalogItem{{Title: "Nameless"}}},
			wantField: "pool[0]",
		},
		{
			name:     "baseline above range",
			register: true,
			request: Request{Ratings: sampleRatings(), Pool: []CatalogItem{
				{ItemID: "m3", BaselineRating: floatPtr(10.5)},
			}},
			wantField: "pool[0]",
		},
		{
			name:     "invalid peer rating",
			register: true,
			request: Request{Ratings: sampleRatings(), Pool: samplePool(), Peers: [][]RatedItem{
				{{ItemID: "m1", Rating: 4}},
				{{ItemID: "m1", Rating: 4}, {ItemID: "", Rating: 4}},
			}},
			wantField: "peers[1][1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := newMockStrategy(StrategyAttribute)
			engine := newTestEngine(t, nil)
			if tt.register {
				engine.RegisterStrategy(strategy)
			}

			resp, err := engine.GenerateRecommendations(context.Background(), tt.request)
			if resp != nil {
				t.Errorf("resp = %+v, want nil", resp)
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
			if strategy.calls.Load() != 0 {
				t.Error("strategy invoked despite validation failure")
			}
		})
	}
}

func TestEngine_GenerateRecommendations_ExcludesRated(t *testing.T) {
	strategy := newMockStrategy(StrategyAttribute)
	strategy.includeRated = true
	engine := newTestEngine(t, nil, strategy)

	resp, err := engine.GenerateRecommendations(context.Background(), Request{
		Ratings: sampleRatings(),
		Pool:    samplePool(),
	})
	if err != nil {
		t.Fatalf("GenerateRecommendations() error = %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ItemID != "m3" {
		t.Errorf("Items = %+v, want only m3", resp.Items)
	}
	if resp.TotalCandidates != 2 {
		t.Errorf("TotalCandidates = %d, want 2", resp.TotalCandidates)
	}
}

func TestEngine_GenerateRecommendations_OutputInvariants(t *testing.T) {
	strategy := newMockStrategy(StrategyAttribute)
	strategy.duplicate = true
	strategy.scores = map[string]float64{
		"low":  -3,
		"high": 15,
		"nan":  math.NaN(),
		"tieB": 6,
		"tieA": 6,
	}

	pool := []CatalogItem{{ItemID: "low"}, {ItemID: "high"}, {ItemID: "nan"}, {ItemID: "tieB"}, {ItemID: "tieA"}}
	for _, id := range []string{"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10"} {
		pool = append(pool, CatalogItem{ItemID: id})
	}
	engine := newTestEngine(t, nil, strategy)

	resp, err := engine.GenerateRecommendations(context.Background(), Request{
		Ratings: []RatedItem{{ItemID: "seen", Rating: 5}},
		Pool:    pool,
	})
	if err != nil {
		t.Fatalf("GenerateRecommendations() error = %v", err)
	}

	if len(resp.Items) != 10 {
		t.Fatalf("len(Items) = %d, want default limit 10", len(resp.Items))
	}

	seen := make(map[string]bool)
	for i, rec := range resp.Items {
		if seen[rec.ItemID] {
			t.Errorf("duplicate item %s", rec.ItemID)
		}
		seen[rec.ItemID] = true

		if rec.Score < MinScore || rec.Score > MaxScore || rec.Score != rec.Score {
			t.Errorf("item %s score %v out of bounds", rec.ItemID, rec.Score)
		}
		if rec.Rank != i+1 {
			t.Errorf("item %s rank = %d, want %d", rec.ItemID, rec.Rank, i+1)
		}
		if i > 0 && rec.Score > resp.Items[i-1].Score {
			t.Errorf("item %s not in descending order", rec.ItemID)
		}
	}

	if resp.Items[0].ItemID != "high" || resp.Items[0].Score != MaxScore {
		t.Errorf("top = %+v, want high clamped to 10", resp.Items[0])
	}
	// Duplicates keep the better copy, and equal scores order by ID.
	if resp.Items[1].ItemID != "tieA" || resp.Items[2].ItemID != "tieB" || resp.Items[1].Score != 6 {
		t.Errorf("items[1:3] = %s/%v, %s/%v, want tieA/6 then tieB/6",
			resp.Items[1].ItemID, resp.Items[1].Score, resp.Items[2].ItemID, resp.Items[2].Score)
	}
}

func TestEngine_GenerateRecommendations_Limit(t *testing.T) {
	t.Parallel()

	pool := make([]CatalogItem, 0, 20)
	for i := 0; i < 20; i++ {
		pool = append(pool, CatalogItem{ItemID: string(rune('a' + i))})
	}

	tests := []struct {
		name      string
		request   Request
		maxLimit  int
		wantItems int
	}{
		{name: "default", request: Request{}, wantItems: 10},
		{name: "request limit", request: Request{Limit: 3}, wantItems: 3},
		{name: "preference limit", request: Request{Preferences: Preferences{PrefLimit: "4"}}, wantItems: 4},
		{name: "request limit wins over preference", request: Request{Limit: 2, Preferences: Preferences{PrefLimit: 7}}, wantItems: 2},
		{name: "raised above default", request: Request{Limit: 15}, wantItems: 15},
		{name: "capped at max", request: Request{Limit: 50}, maxLimit: 12, wantItems: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.maxLimit > 0 {
				cfg.Limits.MaxLimit = tt.maxLimit
			}
			engine := newTestEngine(t, cfg, newMockStrategy(StrategyAttribute))

			req := tt.request
			req.Ratings = []RatedItem{{ItemID: "seen", Rating: 5}}
			req.Pool = pool

			resp, err := engine.GenerateRecommendations(context.Background(), req)
			if err != nil {
				t.Fatalf("GenerateRecommendations() error = %v", err)
			}
			if len(resp.Items) != tt.wantItems {
				t.Errorf("len(Items) = %d, want %d", len(resp.Items), tt.wantItems)
			}
		})
	}
}

func TestEngine_GenerateRecommendations_Idempotent(t *testing.T) {
	strategy := newMockStrategy(StrategyAttribute)
	strategy.scores = map[string]float64{"a": 7, "b": 7, "c": 3.25, "d": 9.5}
	engine := newTestEngine(t, nil, strategy)

	req := Request{
		Ratings: sampleRatings(),
		Pool:    []CatalogItem{{ItemID: "d"}, {ItemID: "c"}, {ItemID: "b"}, {ItemID: "a"}},
	}

	first, err := engine.GenerateRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateRecommendations() error = %v", err)
	}
	for run := 0; run < 10; run++ {
		again, err := engine.GenerateRecommendations(context.Background(), req)
		if err != nil {
			t.Fatalf("GenerateRecommendations() error = %v", err)
		}
		for i := range first.Items {
			if again.Items[i].ItemID != first.Items[i].ItemID || again.Items[i].Score != first.Items[i].Score {
				t.Fatalf("run %d differs at %d: %+v vs %+v", run, i, again.Items[i], first.Items[i])
			}
		}
	}
}

func TestEngine_GenerateRecommendations_RequestID(t *testing.T) {
	engine := newTestEngine(t, nil, newMockStrategy(StrategyAttribute))

	generated, err := engine.GenerateRecommendations(context.Background(), Request{Ratings: sampleRatings(), Pool: samplePool()})
	if err != nil {
		t.Fatalf("GenerateRecommendations() error = %v", err)
	}
	if len(generated.Metadata.RequestID) != 36 {
		t.Errorf("generated RequestID = %q, want UUID", generated.Metadata.RequestID)
	}

	given, err := engine.GenerateRecommendations(context.Background(), Request{RequestID: "req-1", UserID: "u1", Ratings: sampleRatings(), Pool: samplePool()})
	if err != nil {
		t.Fatalf("GenerateRecommendations() error = %v", err)
	}
	if given.Metadata.RequestID != "req-1" || given.Metadata.UserID != "u1" {
		t.Errorf("Metadata = %+v, want request and user IDs echoed", given.Metadata)
	}
	if given.Metadata.View != viewAll {
		t.Errorf("View = %q, want %q", given.Metadata.View, viewAll)
	}
}

func TestEngine_GenerateRecommendations_CatalogJoin(t *testing.T) {
	strategy := newMockStrategy(StrategyAttribute)
	engine := newTestEngine(t, nil, strategy)

	ratings := []RatedItem{
		{ItemID: "old", Rating: 9},
		{ItemID: "inpool", Rating: 3},
		{ItemID: "unknown", Rating: 6},
	}
	catalog := NewCatalog([]CatalogItem{
		{ItemID: "old", Genres: GenreList{"Western"}, Contributor: "Leone", Year: intPtr(1966)},
	})
	pool := []CatalogItem{
		{ItemID: "inpool", Genres: GenreList{"Musical"}},
		{ItemID: "new", Genres: GenreList{"Western"}},
	}

	if _, err := engine.GenerateRecommendations(context.Background(), Request{Ratings: ratings, Pool: pool, Catalog: catalog}); err != nil {
		t.Fatalf("GenerateRecommendations() error = %v", err)
	}

	profile := strategy.input().Profile
	if v, ok := profile.Genre("western"); !ok || v != 9 {
		t.Errorf("western affinity = %v/%v, want 9 from catalog", v, ok)
	}
	if v, ok := profile.Genre("musical"); !ok || v != 3 {
		t.Errorf("musical affinity = %v/%v, want 3 from pool", v, ok)
	}
	if v, ok := profile.Decade(1960); !ok || v != 9 {
		t.Errorf("1960s affinity = %v/%v, want 9", v, ok)
	}
	if profile.OverallAverage != 6 || profile.RatingCount != 3 {
		t.Errorf("overall = %v over %d, want 6 over 3", profile.OverallAverage, profile.RatingCount)
	}
}

// --- Test: strategy failures ---

func TestEngine_GenerateRecommendations_StrategyFailure(t *testing.T) {
	cause := errors.New("matrix exploded")

	tests := []struct {
		name      string
		setup     func(*mockStrategy)
		wantCause error
	}{
		{name: "error is wrapped", setup: func(m *mockStrategy) { m.err = cause }, wantCause: cause},
		{name: "panic is recovered", setup: func(m *mockStrategy) { m.panicMsg = "boom" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := newMockStrategy(StrategyAttribute)
			tt.setup(strategy)
			engine := newTestEngine(t, nil, strategy)

			resp, err := engine.GenerateRecommendations(context.Background(), Request{Ratings: sampleRatings(), Pool: samplePool()})
			if resp != nil {
				t.Errorf("resp = %+v, want nil", resp)
			}

			var sf *StrategyFailure
			if !errors.As(err, &sf) {
				t.Fatalf("error = %v, want *StrategyFailure", err)
			}
			if sf.Strategy != StrategyAttribute || sf.Stage != stageScore {
				t.Errorf("StrategyFailure = %+v", sf)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("errors.Is(err, cause) = false for %v", err)
			}
			if IsRetryable(err) {
				t.Error("IsRetryable() = true, want false")
			}
			if strategy.calls.Load() != 1 {
				t.Errorf("strategy calls = %d, want 1 (no retry)", strategy.calls.Load())
			}

			m := engine.GetMetrics()
			if m.StrategyFailures != 1 || m.ErrorCount != 1 || m.ValidationErrors != 0 {
				t.Errorf("metrics = %+v", m)
			}
		})
	}
}

func TestEngine_GenerateRecommendations_TimeoutIsRetryable(t *testing.T) {
	strategy := newMockStrategy(StrategyPeer)
	strategy.err = &TimeoutError{Stage: "peer scan", Err: context.DeadlineExceeded}
	engine := newTestEngine(t, nil, strategy)

	_, err := engine.GenerateRecommendations(context.Background(), Request{
		Ratings:  sampleRatings(),
		Pool:     samplePool(),
		Strategy: StrategyPeer,
	})
	if !IsStrategyFailure(err) {
		t.Errorf("IsStrategyFailure(%v) = false, want true", err)
	}
	if !IsRetryable(err) {
		t.Errorf("IsRetryable(%v) = false, want true", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("errors.Is(err, DeadlineExceeded) = false for %v", err)
	}
}

// --- Test: strategy selection ---

func TestEngine_WithStrategy(t *testing.T) {
	base := newMockStrategy(StrategyAttribute)
	base.scores = map[string]float64{"m3": 4}
	other := newMockStrategy("other")
	other.scores = map[string]float64{"m3": 8}

	engine := newTestEngine(t, nil, base)
	derived := engine.WithStrategy(other)

	req := Request{Ratings: sampleRatings(), Pool: samplePool()}

	got, err := derived.GenerateRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("derived error = %v", err)
	}
	if got.Metadata.Strategy != "other" || got.Items[0].Score != 8 {
		t.Errorf("derived used %s/%v, want other/8", got.Metadata.Strategy, got.Items[0].Score)
	}

	orig, err := engine.GenerateRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("original error = %v", err)
	}
	if orig.Metadata.Strategy != StrategyAttribute || orig.Items[0].Score != 4 {
		t.Errorf("original used %s/%v, want %s/4", orig.Metadata.Strategy, orig.Items[0].Score, StrategyAttribute)
	}

	// An explicit name still wins over the derived default.
	req.Strategy = StrategyAttribute
	named, err := derived.GenerateRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("named error = %v", err)
	}
	if named.Metadata.Strategy != StrategyAttribute {
		t.Errorf("named request used %s, want %s", named.Metadata.Strategy, StrategyAttribute)
	}

	// Counters are shared with the original.
	if n := engine.GetMetrics().RequestCount; n != 3 {
		t.Errorf("RequestCount = %d, want 3", n)
	}
}

func TestEngine_GenerateWith(t *testing.T) {
	engine := newTestEngine(t, nil)
	unregistered := newMockStrategy("adhoc")

	resp, err := engine.GenerateWith(context.Background(), unregistered, Request{Ratings: sampleRatings(), Pool: samplePool()})
	if err != nil {
		t.Fatalf("GenerateWith() error = %v", err)
	}
	if resp.Metadata.Strategy != "adhoc" {
		t.Errorf("Strategy = %q, want adhoc", resp.Metadata.Strategy)
	}

	if _, err := engine.GenerateWith(context.Background(), nil, Request{Ratings: sampleRatings(), Pool: samplePool()}); !IsValidation(err) {
		t.Errorf("GenerateWith(nil) error = %v, want ValidationError", err)
	}
}

// --- Test: result cache ---

func TestEngine_Cache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Enabled = true

	strategy := newMockStrategy(StrategyAttribute)
	engine := newTestEngine(t, cfg, strategy)

	req := Request{
		UserID:         "u1",
		Ratings:        sampleRatings(),
		Pool:           samplePool(),
		RatingsVersion: "r1",
		PoolVersion:    "p1",
	}

	first, err := engine.GenerateRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("first call error = %v", err)
	}
	if first.Metadata.CacheHit {
		t.Error("first call CacheHit = true, want false")
	}

	// Mutating a returned list must not leak into the cache.
	first.Items[0].Score = 0

	second, err := engine.GenerateRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if !second.Metadata.CacheHit {
		t.Error("second call CacheHit = false, want true")
	}
	if second.Items[0].Score != 5 || second.TotalCandidates != 2 {
		t.Errorf("cached response = %+v", second)
	}
	if strategy.calls.Load() != 1 {
		t.Errorf("strategy calls = %d, want 1", strategy.calls.Load())
	}

	// A new ratings version misses.
	req.RatingsVersion = "r2"
	if resp, _ := engine.GenerateRecommendations(context.Background(), req); resp.Metadata.CacheHit {
		t.Error("new version CacheHit = true, want false")
	}

	engine.InvalidateCache()
	req.RatingsVersion = "r1"
	if resp, _ := engine.GenerateRecommendations(context.Background(), req); resp.Metadata.CacheHit {
		t.Error("after InvalidateCache CacheHit = true, want false")
	}

	m := engine.GetMetrics()
	if m.CacheHits != 1 || m.CacheMisses != 3 || m.RequestCount != 4 {
		t.Errorf("metrics = %+v, want 1 hit, 3 misses, 4 requests", m)
	}
	if m.CacheEntries != 1 {
		t.Errorf("CacheEntries = %d, want 1", m.CacheEntries)
	}
	if m.CacheHitRate != 25 {
		t.Errorf("CacheHitRate = %v, want 25", m.CacheHitRate)
	}
}

func TestEngine_CacheKeyedByDiversityCaps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Enabled = true

	strategy := newMockStrategy(StrategyAttribute)
	engine := newTestEngine(t, cfg, strategy)

	pool := make([]CatalogItem, 0, 5)
	for i, id := range []string{"d1", "d2", "d3", "d4", "d5"} {
		pool = append(pool, CatalogItem{ItemID: id, Genres: GenreList{"Drama"}, Contributor: "director-" + id})
		strategy.scores[id] = float64(9 - i)
	}

	call := func(maxPerGenre int) *Response {
		t.Helper()
		resp, err := engine.DiversifiedRecommendations(context.Background(), Request{
			UserID:         "u1",
			Ratings:        sampleRatings(),
			Pool:           pool,
			Preferences:    Preferences{PrefMaxPerGenre: maxPerGenre},
			RatingsVersion: "r1",
			PoolVersion:    "p1",
		})
		if err != nil {
			t.Fatalf("DiversifiedRecommendations() error = %v", err)
		}
		return resp
	}

	tests := []struct {
		name        string
		maxPerGenre int
		wantItems   int
		wantHit     bool
	}{
		{name: "one per genre", maxPerGenre: 1, wantItems: 1},
		{name: "looser cap is a new entry", maxPerGenre: 3, wantItems: 3},
		{name: "first cap is cached", maxPerGenre: 1, wantItems: 1, wantHit: true},
		{name: "second cap is cached", maxPerGenre: 3, wantItems: 3, wantHit: true},
	}

	for _, tt := range tests {
		resp := call(tt.maxPerGenre)
		if len(resp.Items) != tt.wantItems {
			t.Errorf("%s: items = %d, want %d", tt.name, len(resp.Items), tt.wantItems)
		}
		if resp.Metadata.CacheHit != tt.wantHit {
			t.Errorf("%s: CacheHit = %v, want %v", tt.name, resp.Metadata.CacheHit, tt.wantHit)
		}
	}

	if strategy.calls.Load() != 2 {
		t.Errorf("strategy calls = %d, want 2", strategy.calls.Load())
	}
}

func TestEngine_CachedItemsAreIsolated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Enabled = true

	engine := newTestEngine(t, cfg, newMockStrategy(StrategyAttribute))

	req := Request{
		UserID:         "u1",
		Ratings:        sampleRatings(),
		Pool:           []CatalogItem{{ItemID: "m9", Year: intPtr(1999), Genres: GenreList{"Action"}}},
		RatingsVersion: "r1",
		PoolVersion:    "p1",
	}

	first, err := engine.GenerateRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("first call error = %v", err)
	}
	first.Items[0].Genres[0] = "mutated"
	*first.Items[0].Year = 2042

	second, err := engine.GenerateRecommendations(context.Background(), req)
	if err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if !second.Metadata.CacheHit {
		t.Fatal("second call CacheHit = false, want true")
	}
	if got := second.Items[0].Genres[0]; got != "Action" {
		t.Errorf("cached Genres[0] = %q, want Action", got)
	}
	if got := *second.Items[0].Year; got != 1999 {
		t.Errorf("cached Year = %d, want 1999", got)
	}

	// A cached list handed out twice shares nothing either.
	second.Items[0].Genres[0] = "again"
	third, _ := engine.GenerateRecommendations(context.Background(), req)
	if got := third.Items[0].Genres[0]; got != "Action" {
		t.Errorf("third Genres[0] = %q, want Action", got)
	}
}

func TestEngine_CacheSweepsExpiredWhenFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.MaxEntries = 2
	cfg.Cache.TTL = 20 * time.Millisecond

	engine := newTestEngine(t, cfg, newMockStrategy(StrategyAttribute))

	generate := func(version string) {
		t.Helper()
		_, err := engine.GenerateRecommendations(context.Background(), Request{
			UserID:         "u1",
			Ratings:        sampleRatings(),
			Pool:           samplePool(),
			RatingsVersion: version,
			PoolVersion:    "p1",
		})
		if err != nil {
			t.Fatalf("GenerateRecommendations(%s) error = %v", version, err)
		}
	}

	generate("r1")
	generate("r2")
	if n := engine.GetMetrics().CacheEntries; n != 2 {
		t.Fatalf("CacheEntries = %d, want 2", n)
	}

	time.Sleep(40 * time.Millisecond)
	generate("r3")

	// Both expired entries are swept, not just the least recently used one.
	if n := engine.GetMetrics().CacheEntries; n != 1 {
		t.Errorf("CacheEntries = %d, want 1", n)
	}
}

func TestEngine_CacheSkippedWithoutVersions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Enabled = true

	strategy := newMockStrategy(StrategyAttribute)
	engine := newTestEngine(t, cfg, strategy)

	req := Request{UserID: "u1", Ratings: sampleRatings(), Pool: samplePool(), RatingsVersion: "r1"}
	for i := 0; i < 2; i++ {
		resp, err := engine.GenerateRecommendations(context.Background(), req)
		if err != nil {
			t.Fatalf("GenerateRecommendations() error = %v", err)
		}
		if resp.Metadata.CacheHit {
			t.Error("CacheHit = true without pool version")
		}
	}
	if strategy.calls.Load() != 2 {
		t.Errorf("strategy calls = %d, want 2", strategy.calls.Load())
	}
}

// --- Test: concurrency ---

func TestEngine_ConcurrentRequests(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Enabled = true

	a := newMockStrategy(StrategyAttribute)
	b := newMockStrategy("b")
	b.scores = map[string]float64{"m3": 9}
	engine := newTestEngine(t, cfg, a, b)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := Request{UserID: "u", Ratings: sampleRatings(), Pool: samplePool(), RatingsVersion: "r", PoolVersion: "p"}
			want := 5.0
			if i%2 == 0 {
				req.Strategy = "b"
				want = 9
			}
			resp, err := engine.GenerateRecommendations(context.Background(), req)
			if err != nil {
				t.Errorf("request %d error = %v", i, err)
				return
			}
			if resp.Items[0].Score != want {
				t.Errorf("request %d score = %v, want %v", i, resp.Items[0].Score, want)
			}
		}(i)
	}
	wg.Wait()

	if n := engine.GetMetrics().RequestCount; n != 50 {
		t.Errorf("RequestCount = %d, want 50", n)
	}
}

func TestEngine_ResponseTimestamp(t *testing.T) {
	engine := newTestEngine(t, nil, newMockStrategy(StrategyAttribute))
	before := time.Now()

	resp, err := engine.GenerateRecommendations(context.Background(), Request{Ratings: sampleRatings(), Pool: samplePool()})
	if err != nil {
		t.Fatalf("GenerateRecommendations() error = %v", err)
	}
	if resp.Metadata.Timestamp.Before(before) {
		t.Errorf("Timestamp = %v, want >= %v", resp.Metadata.Timestamp, before)
	}
	if resp.Metadata.LatencyMS < 0 {
		t.Errorf("LatencyMS = %d, want >= 0", resp.Metadata.LatencyMS)
	}
}
