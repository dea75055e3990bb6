// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

/*
Package metrics provides Prometheus instrumentation for the recommendation core.

All collectors are registered with the default registry through promauto.
The engine and the strategies call the Record helpers; nothing here serves
HTTP. The CLI can write a snapshot with prometheus.WriteToTextfile.

# Available Metrics

Request Metrics:
  - recommend_requests_total: Requests by outcome (counter)
    Labels: strategy, status (ok, empty, invalid, error)
  - recommend_request_duration_seconds: Request latency (histogram)
    Labels: strategy
  - recommend_result_items: Items returned per request (histogram)
  - recommend_strategy_failures_total: Strategy errors and panics (counter)
    Labels: strategy, stage

Peer Correlation Metrics:
  - recommend_peer_similarities_total: Similarities computed (counter)
  - recommend_peers_retained: Peers above threshold per scan (histogram)
  - recommend_peer_scan_timeouts_total: Interrupted scans (counter)
  - recommend_peer_fallbacks_total: Delegations to attribute scoring (counter)
    Labels: reason (small_corpus, no_similar_peers, no_endorsements)

Cache Metrics:
  - recommend_cache_hits_total: Result cache hits (counter)
  - recommend_cache_misses_total: Result cache misses (counter)

# Usage

	start := time.Now()
	recs, err := strategy.Recommend(ctx, in)
	if err != nil {
	    metrics.RecordStrategyFailure(name, "score candidates")
	}
	metrics.RecordRecommendation(name, metrics.StatusOK, time.Since(start), len(recs))

# Thread Safety

Prometheus collectors are safe for concurrent use.
*/
package metrics
