// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcome labels.
const (
	StatusOK      = "ok"
	StatusEmpty   = "empty"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

var (
	// Recommendation request metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by strategy and outcome",
		},
		[]string{"strategy", "status"}, // status: ok, empty, invalid, error
	)

	RecommendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	RecommendResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_result_items",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	RecommendStrategyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_strategy_failures_total",
			Help: "Total number of strategy failures by strategy and stage",
		},
		[]string{"strategy", "stage"},
	)

	// Peer correlation metrics
	PeerSimilaritiesComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_peer_similarities_total",
			Help: "Total number of peer similarity computations",
		},
	)

	PeersRetained = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_peers_retained",
			Help:    "Number of peers above the similarity threshold per scan",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	PeerScanTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_peer_scan_timeouts_total",
			Help: "Total number of peer scans interrupted by deadline or cancellation",
		},
	)

	PeerFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_peer_fallbacks_total",
			Help: "Total number of peer requests delegated to attribute scoring",
		},
		[]string{"reason"}, // "small_corpus", "no_similar_peers", "no_endorsements"
	)

	// Result cache metrics
	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation result cache hits",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation result cache misses",
		},
	)
)

// RecordRecommendation records the outcome of one recommendation request.
func RecordRecommendation(strategy, status string, duration time.Duration, returned int) {
	RecommendRequestsTotal.WithLabelValues(strategy, status).Inc()
	RecommendRequestDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if status == StatusOK || status == StatusEmpty {
		RecommendResultSize.Observe(float64(returned))
	}
}

// RecordStrategyFailure records a failed strategy run.
func RecordStrategyFailure(strategy, stage string) {
	RecommendStrategyFailures.WithLabelValues(strategy, stage).Inc()
}

// RecordPeerScan records one peer correlation scan.
func RecordPeerScan(evaluated, retained int) {
	PeerSimilaritiesComputed.Add(float64(evaluated))
	PeersRetained.Observe(float64(retained))
}

// RecordPeerTimeout records an interrupted peer scan.
func RecordPeerTimeout() {
	PeerScanTimeouts.Inc()
}

// RecordPeerFallback records a delegation to attribute scoring.
func RecordPeerFallback(reason string) {
	PeerFallbacks.WithLabelValues(reason).Inc()
}

// RecordCacheLookup records a result cache lookup.
func RecordCacheLookup(hit bool) {
	if hit {
		RecommendCacheHits.Inc()
		return
	}
	RecommendCacheMisses.Inc()
}
