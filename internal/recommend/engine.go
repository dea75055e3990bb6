// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rw3iss/movie-recommender/internal/cache"
	"github.com/rw3iss/movie-recommender/internal/logging"
	"github.com/rw3iss/movie-recommender/internal/metrics"
	"github.com/rw3iss/movie-recommender/internal/validation"
)

// Engine validates requests, runs a strategy and ranks its output.
//
// Strategies are registered once during initialization. After that the
// engine holds no per-call mutable state, so one instance may serve any
// number of concurrent callers. Selecting a different strategy never
// mutates a shared engine: use Request.Strategy, GenerateWith or
// WithStrategy.
type Engine struct {
	config *Config
	logger zerolog.Logger

	strategies *registry

	// override replaces the configured default strategy in derived engines.
	override Strategy

	results  *cache.LRUCache[cachedResult]
	counters *counters
}

// cachedResult is a memoized ranked list and the candidate count behind it.
type cachedResult struct {
	items      []Recommendation
	candidates int
}

type registry struct {
	mu     sync.RWMutex
	byName map[string]Strategy
	order  []string
}

type counters struct {
	requests         atomic.Int64
	errors           atomic.Int64
	validationErrors atomic.Int64
	strategyFailures atomic.Int64
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:     cfg.Clone(),
		logger:     logger.With().Str("component", "recommend").Logger(),
		strategies: &registry{byName: make(map[string]Strategy)},
		counters:   &counters{},
	}

	if cfg.Cache.Enabled {
		e.results = cache.NewLRUCache[cachedResult](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}

	return e, nil
}

// RegisterStrategy makes a strategy selectable by name.
// Registering a name twice replaces the earlier strategy.
func (e *Engine) RegisterStrategy(s Strategy) {
	e.strategies.mu.Lock()
	defer e.strategies.mu.Unlock()

	name := s.Name()
	if _, exists := e.strategies.byName[name]; !exists {
		e.strategies.order = append(e.strategies.order, name)
	}
	e.strategies.byName[name] = s

	e.logger.Info().
		Str("strategy", name).
		Msg("registered strategy")
}

// Strategy returns the registered strategy with the given name.
func (e *Engine) Strategy(name string) (Strategy, bool) {
	e.strategies.mu.RLock()
	defer e.strategies.mu.RUnlock()

	s, ok := e.strategies.byName[name]
	return s, ok
}

// Strategies returns registered strategies in registration order.
func (e *Engine) Strategies() []Strategy {
	e.strategies.mu.RLock()
	defer e.strategies.mu.RUnlock()

	out := make([]Strategy, 0, len(e.strategies.order))
	for _, name := range e.strategies.order {
		out = append(out, e.strategies.byName[name])
	}
	return out
}

// WithStrategy returns an engine that uses s when a request names no
// strategy. The receiver is not modified; registry, cache and counters
// are shared.
func (e *Engine) WithStrategy(s Strategy) *Engine {
	derived := *e
	derived.override = s
	return &derived
}

// GenerateRecommendations ranks the request pool with the resolved strategy.
func (e *Engine) GenerateRecommendations(ctx context.Context, req Request) (*Response, error) {
	return e.run(ctx, req, nil, viewAll, nil)
}

// GenerateWith ranks the request pool with the given strategy.
func (e *Engine) GenerateWith(ctx context.Context, s Strategy, req Request) (*Response, error) {
	if s == nil {
		return nil, validationErr("strategy", "no strategy configured")
	}
	return e.run(ctx, req, s, viewAll, nil)
}

// Diversify applies the configured genre and contributor caps to a ranked list.
func (e *Engine) Diversify(base []Recommendation, limit int) []Recommendation {
	return Diversify(base, limit, e.diversityCaps(nil))
}

// GetMetrics returns the current engine counters.
// Cache figures are zero when the result cache is disabled.
func (e *Engine) GetMetrics() Metrics {
	m := Metrics{
		RequestCount:     e.counters.requests.Load(),
		ErrorCount:       e.counters.errors.Load(),
		ValidationErrors: e.counters.validationErrors.Load(),
		StrategyFailures: e.counters.strategyFailures.Load(),
	}
	if e.results != nil {
		m.CacheHits, m.CacheMisses, m.CacheEntries = e.results.Stats()
		m.CacheHitRate = e.results.HitRate()
	}
	return m
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// InvalidateCache drops every memoized result.
func (e *Engine) InvalidateCache() {
	if e.results == nil {
		return
	}
	e.results.Clear()
	e.logger.Debug().Msg("cache cleared")
}

// poolFilter selects candidates for a specialized view.
type poolFilter func(item *CatalogItem) bool

const viewAll = "all"

// run is the shared pipeline behind every public entry point.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) run(ctx context.Context, req Request, s Strategy, view string, filter poolFilter) (*Response, error) {
	start := time.Now()
	e.counters.requests.Add(1)

	req = e.prepareRequest(req)

	if err := validateRequest(&req); err != nil {
		return nil, e.fail(start, "unknown", err)
	}

	if s == nil {
		s = e.resolveStrategy(req.Strategy)
		if s == nil {
			return nil, e.fail(start, "unknown", e.missingStrategy(req.Strategy))
		}
	}
	name := s.Name()

	limit := e.resolveLimit(req)
	diversify := req.Preferences.Bool(PrefDiversify)
	logger := e.createRequestLogger(req, name, view)
	logger.Debug().Msg("processing recommendation request")

	var caps DiversityCaps
	if diversify {
		caps = e.diversityCaps(req.Preferences)
	}

	key := e.cacheKey(req, name, view, limit, diversify, caps)
	if resp := e.tryGetCachedResponse(key, req, name, view, start, logger); resp != nil {
		return resp, nil
	}

	pool := filterPool(req.Pool, filter)
	if len(pool) == 0 {
		logger.Debug().Msg("no candidates after filtering")
		metrics.RecordRecommendation(name, metrics.StatusEmpty, time.Since(start), 0)
		return e.buildResponse(req, name, view, []Recommendation{}, 0, start), nil
	}

	profile := BuildProfile(req.Ratings, chainLookup{req.Catalog, NewCatalog(req.Pool)})
	in := NewInput(req.Ratings, pool, req.Peers, profile)
	in.Preferences = req.Preferences
	in.Limit = limit
	if diversify {
		in.Limit = limit * e.config.Diversity.Overfetch
	}

	ctx = logging.ContextWithLogger(ctx, logger)
	ctx = logging.ContextWithRequestID(ctx, req.RequestID)

	recs, err := e.invoke(ctx, s, in)
	if err != nil {
		e.counters.strategyFailures.Add(1)
		metrics.RecordStrategyFailure(name, stageScore)
		logger.Error().Err(err).Msg("strategy failed")
		return nil, e.fail(start, name, err)
	}

	ranked := rankRecommendations(recs, in)
	if diversify {
		ranked = Diversify(ranked, limit, caps)
	} else {
		ranked = truncate(ranked, limit)
	}

	e.storeCache(key, ranked, len(pool))
	metrics.RecordRecommendation(name, metrics.StatusOK, time.Since(start), len(ranked))

	resp := e.buildResponse(req, name, view, ranked, len(pool), start)
	logger.Debug().
		Int("candidates", len(pool)).
		Int("returned", len(ranked)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

const stageScore = "score candidates"

// invoke runs the strategy and converts panics and errors into StrategyFailure.
func (e *Engine) invoke(ctx context.Context, s Strategy, in *Input) (recs []Recommendation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &StrategyFailure{Strategy: s.Name(), Stage: stageScore, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	recs, err = s.Recommend(ctx, in)
	if err != nil {
		return nil, &StrategyFailure{Strategy: s.Name(), Stage: stageScore, Err: err}
	}
	return recs, nil
}

// fail records an aborted call and returns err unchanged.
func (e *Engine) fail(start time.Time, strategy string, err error) error {
	e.counters.errors.Add(1)
	status := metrics.StatusError
	if IsValidation(err) {
		e.counters.validationErrors.Add(1)
		status = metrics.StatusInvalid
	}
	metrics.RecordRecommendation(strategy, status, time.Since(start), 0)
	return err
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = logging.GenerateRequestID()
	}
	return req
}

// resolveLimit picks the request limit, then the preference, then the default.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) resolveLimit(req Request) int {
	limit := req.Limit
	if limit <= 0 {
		if n, ok := req.Preferences.Int(PrefLimit); ok && n > 0 {
			limit = n
		}
	}
	if limit <= 0 {
		limit = e.config.Limits.DefaultLimit
	}
	if limit > e.config.Limits.MaxLimit {
		limit = e.config.Limits.MaxLimit
	}
	return limit
}

func (e *Engine) resolveStrategy(name string) Strategy {
	if name != "" {
		s, _ := e.Strategy(name)
		return s
	}
	if e.override != nil {
		return e.override
	}
	s, _ := e.Strategy(e.config.DefaultStrategy)
	return s
}

func (e *Engine) missingStrategy(name string) error {
	if name != "" {
		return validationErr("strategy", "unknown strategy %q", name)
	}
	return validationErr("strategy", "no strategy configured")
}

func (e *Engine) diversityCaps(prefs Preferences) DiversityCaps {
	caps := DiversityCaps{
		MaxPerGenre:       e.config.Diversity.MaxPerGenre,
		MaxPerContributor: e.config.Diversity.MaxPerContributor,
	}
	if n, ok := prefs.Int(PrefMaxPerGenre); ok && n > 0 {
		caps.MaxPerGenre = n
	}
	if n, ok := prefs.Int(PrefMaxPerContributor); ok && n > 0 {
		caps.MaxPerContributor = n
	}
	return caps
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request, strategy, view string) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Str("strategy", strategy).
		Str("view", view).
		Logger()
}

// validateRequest rejects empty inputs and malformed items.
func validateRequest(req *Request) error {
	if len(req.Ratings) == 0 {
		return validationErr("ratings", "at least one rating is required")
	}
	if len(req.Pool) == 0 {
		return validationErr("pool", "candidate pool must not be empty")
	}

	for i := range req.Ratings {
		if verr := validation.ValidateStruct(&req.Ratings[i]); verr != nil {
			return validationErr(fmt.Sprintf("ratings[%d]", i), "%s", verr.Error())
		}
	}
	for i := range req.Pool {
		if verr := validation.ValidateStruct(&req.Pool[i]); verr != nil {
			return validationErr(fmt.Sprintf("pool[%d]", i), "%s", verr.Error())
		}
	}
	for p, vector := range req.Peers {
		for i := range vector {
			if verr := validation.ValidateStruct(&vector[i]); verr != nil {
				return validationErr(fmt.Sprintf("peers[%d][%d]", p, i), "%s", verr.Error())
			}
		}
	}
	return nil
}

// filterPool returns the items accepted by filter, or pool itself when
// filter is nil.
func filterPool(pool []CatalogItem, filter poolFilter) []CatalogItem {
	if filter == nil {
		return pool
	}
	out := make([]CatalogItem, 0, len(pool))
	for i := range pool {
		if filter(&pool[i]) {
			out = append(out, pool[i])
		}
	}
	return out
}

// rankRecommendations drops rated and duplicate items, clamps scores and
// sorts by score descending with item ID as the tie-breaker. Ranks are
// assigned over the full sorted list.
func rankRecommendations(recs []Recommendation, in *Input) []Recommendation {
	seen := make(map[string]int, len(recs))
	out := make([]Recommendation, 0, len(recs))

	for i := range recs {
		rec := recs[i]
		if in.IsRated(rec.ItemID) {
			continue
		}
		rec.Score = ClampScore(rec.Score)

		// Keep the best-scoring copy of a duplicate.
		if idx, dup := seen[rec.ItemID]; dup {
			if rec.Score > out[idx].Score {
				out[idx] = rec
			}
			continue
		}
		seen[rec.ItemID] = len(out)
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ItemID < out[j].ItemID
	})

	assignRanks(out)
	return out
}

func truncate(recs []Recommendation, limit int) []Recommendation {
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// cacheKey returns "" when the request cannot be cached. Caps are part of
// the key because they change a diversified result.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func (e *Engine) cacheKey(req Request, strategy, view string, limit int, diversify bool, caps DiversityCaps) string {
	if e.results == nil || req.UserID == "" || req.RatingsVersion == "" || req.PoolVersion == "" {
		return ""
	}
	return fmt.Sprintf("rec:%s:%s:%s:%s:%s:%d:%t:%d:%d",
		req.UserID, strategy, view, req.RatingsVersion, req.PoolVersion, limit,
		diversify, caps.MaxPerGenre, caps.MaxPerContributor)
}

// tryGetCachedResponse attempts to retrieve a cached response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(key string, req Request, strategy, view string, start time.Time, logger zerolog.Logger) *Response {
	if key == "" {
		return nil
	}

	hit, ok := e.results.Get(key)
	metrics.RecordCacheLookup(ok)
	if !ok {
		return nil
	}

	resp := e.buildResponse(req, strategy, view, copyRecommendations(hit.items), hit.candidates, start)
	resp.Metadata.CacheHit = true
	logger.Debug().Msg("cache hit")
	metrics.RecordRecommendation(strategy, metrics.StatusOK, time.Since(start), len(hit.items))
	return resp
}

func (e *Engine) storeCache(key string, recs []Recommendation, candidates int) {
	if key == "" {
		return
	}

	// Drop expired entries before a full cache evicts a live one.
	if e.results.Len() >= e.config.Cache.MaxEntries {
		if n := e.results.CleanupExpired(); n > 0 {
			e.logger.Debug().Int("expired", n).Msg("swept expired cache entries")
		}
	}

	e.results.Add(key, cachedResult{items: copyRecommendations(recs), candidates: candidates})
}

// copyRecommendations deep-copies recs so cached lists never share
// Genres or Year with a response.
func copyRecommendations(recs []Recommendation) []Recommendation {
	out := make([]Recommendation, len(recs))
	copy(out, recs)
	for i := range out {
		if out[i].Genres != nil {
			out[i].Genres = append([]string(nil), out[i].Genres...)
		}
		if out[i].Year != nil {
			year := *out[i].Year
			out[i].Year = &year
		}
	}
	return out
}

// buildResponse constructs the final response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponse(req Request, strategy, view string, items []Recommendation, candidates int, start time.Time) *Response {
	return &Response{
		Items:           items,
		TotalCandidates: candidates,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			UserID:    req.UserID,
			Strategy:  strategy,
			View:      view,
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: time.Now(),
		},
	}
}
