// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rw3iss/movie-recommender/internal/logging"
	"github.com/rw3iss/movie-recommender/internal/metrics"
	"github.com/rw3iss/movie-recommender/internal/recommend"
)

// Fallback reasons reported to metrics.
const (
	fallbackSmallCorpus   = "small_corpus"
	fallbackNoPeers       = "no_similar_peers"
	fallbackNoEndorsement = "no_endorsements"
)

const stagePeerScan = "peer scan"

// errNoFallback is returned when delegation is required but no fallback
// strategy was configured.
var errNoFallback = errors.New("peer correlation: no fallback strategy configured")

// PeerCorrelation recommends items endorsed by peers whose ratings
// correlate with the target user's.
//
// For each peer, sim(u, v) is the Pearson correlation over co-rated items.
// Peers with sim > MinSimilarity are kept, at most MaxPeers of them. Each
// unrated pool item that a kept peer rated at least EndorseRating receives
// a similarity-weighted running average:
//
//	avg' = (avg*count + rating*sim) / (count + sim)
//	count' = count + sim
//
// A corpus smaller than MinCorpus, no surviving peer, or no endorsed pool
// item delegates the whole request to the fallback strategy.
type PeerCorrelation struct {
	config   recommend.PeerConfig
	fallback recommend.Strategy
}

// NewPeerCorrelation creates the peer correlation strategy.
// fallback handles requests without usable peer signal.
func NewPeerCorrelation(cfg recommend.PeerConfig, fallback recommend.Strategy) *PeerCorrelation {
	def := recommend.DefaultPeerConfig()
	if cfg.MinCommonItems <= 0 {
		cfg.MinCommonItems = def.MinCommonItems
	}
	if cfg.MaxPeers <= 0 {
		cfg.MaxPeers = def.MaxPeers
	}
	if cfg.EndorseRating <= 0 {
		cfg.EndorseRating = def.EndorseRating
	}
	if cfg.MinCorpus <= 0 {
		cfg.MinCorpus = def.MinCorpus
	}
	if cfg.MaxCorpus <= 0 {
		cfg.MaxCorpus = def.MaxCorpus
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}

	return &PeerCorrelation{
		config:   cfg,
		fallback: fallback,
	}
}

// Name returns the strategy identifier.
func (p *PeerCorrelation) Name() string {
	return recommend.StrategyPeer
}

// Describe returns the strategy's name, description and scoring factors.
func (p *PeerCorrelation) Describe() recommend.Description {
	return recommend.Description{
		Name:        recommend.StrategyPeer,
		Description: "Recommends titles rated highly by users whose ratings correlate with yours.",
		Factors:     []string{"pearson similarity", "peer endorsement", "similarity-weighted rating"},
	}
}

// Score rates a single candidate. Without a peer corpus there is no
// correlation signal, so it uses the fallback strategy's score.
func (p *PeerCorrelation) Score(candidate *recommend.CatalogItem, history []recommend.RatedItem, profile *recommend.AffinityProfile) float64 {
	if candidate == nil {
		return recommend.MinScore
	}
	if p.fallback != nil {
		return recommend.ClampScore(p.fallback.Score(candidate, history, profile))
	}
	if profile == nil {
		profile = recommend.BuildProfile(history, nil)
	}
	return fallbackScore(candidate, profile)
}

// Recommend scans the peer corpus and aggregates endorsements of pool items.
func (p *PeerCorrelation) Recommend(ctx context.Context, in *recommend.Input) ([]recommend.Recommendation, error) {
	logger := logging.Ctx(ctx)

	corpus := in.Peers
	if len(corpus) < p.config.MinCorpus {
		logger.Debug().Int("corpus", len(corpus)).Msg("peer corpus too small, delegating")
		return p.delegate(ctx, in, fallbackSmallCorpus)
	}
	if len(corpus) > p.config.MaxCorpus {
		logger.Warn().
			Int("corpus", len(corpus)).
			Int("max_corpus", p.config.MaxCorpus).
			Msg("peer corpus truncated")
		corpus = corpus[:p.config.MaxCorpus]
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	target := ratingVector(in.Ratings)
	vectors, sims, err := p.scan(ctx, target, corpus)
	if err != nil {
		metrics.RecordPeerTimeout()
		return nil, &recommend.TimeoutError{Stage: stagePeerScan, Err: err}
	}

	peers := selectPeers(sims, p.config.MinSimilarity, p.config.MaxPeers)
	metrics.RecordPeerScan(len(corpus), len(peers))
	if len(peers) == 0 {
		logger.Debug().Int("corpus", len(corpus)).Msg("no similar peers, delegating")
		return p.delegate(ctx, in, fallbackNoPeers)
	}

	endorsed := p.aggregate(in, vectors, peers)
	if len(endorsed) == 0 {
		logger.Debug().Int("peers", len(peers)).Msg("no endorsed candidates, delegating")
		return p.delegate(ctx, in, fallbackNoEndorsement)
	}

	recs := make([]recommend.Recommendation, len(endorsed))
	for i := range endorsed {
		e := &endorsed[i]
		recs[i] = recommend.NewRecommendation(e.item, e.avg,
			fmt.Sprintf("peer-endorsed, aggregate similarity = %.1f", e.count))
	}
	return recs, nil
}

func (p *PeerCorrelation) delegate(ctx context.Context, in *recommend.Input, reason string) ([]recommend.Recommendation, error) {
	metrics.RecordPeerFallback(reason)
	if p.fallback == nil {
		return nil, errNoFallback
	}
	return p.fallback.Recommend(ctx, in)
}

// scan computes the similarity of every peer to the target with a bounded
// worker pool. It returns the context error if the scan is interrupted.
func (p *PeerCorrelation) scan(ctx context.Context, target map[string]float64, corpus [][]recommend.RatedItem) ([]map[string]float64, []float64, error) {
	vectors := make([]map[string]float64, len(corpus))
	sims := make([]float64, len(corpus))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)

	for i := range corpus {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vectors[i] = ratingVector(corpus[i])
			sims[i] = PearsonSimilarity(target, vectors[i], p.config.MinCommonItems)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return vectors, sims, nil
}

// peerSim is a corpus index and its similarity to the target.
type peerSim struct {
	index int
	sim   float64
}

// selectPeers keeps similarities strictly above threshold, ordered by
// similarity descending with corpus index breaking ties, at most limit.
func selectPeers(sims []float64, threshold float64, limit int) []peerSim {
	var peers []peerSim
	for i, s := range sims {
		if s > threshold {
			peers = append(peers, peerSim{index: i, sim: s})
		}
	}

	sort.Slice(peers, func(i, j int) bool {
		if peers[i].sim != peers[j].sim {
			return peers[i].sim > peers[j].sim
		}
		return peers[i].index < peers[j].index
	})

	if limit > 0 && len(peers) > limit {
		peers = peers[:limit]
	}
	return peers
}

// endorsement is the running similarity-weighted average for one item.
type endorsement struct {
	item  *recommend.CatalogItem
	avg   float64
	count float64
}

// aggregate accumulates endorsements of unrated pool items and returns
// them by weighted average descending, truncated to the input limit.
func (p *PeerCorrelation) aggregate(in *recommend.Input, vectors []map[string]float64, peers []peerSim) []endorsement {
	candidates := make(map[string]int, len(in.Pool))
	for i := range in.Pool {
		id := in.Pool[i].ItemID
		if in.IsRated(id) {
			continue
		}
		if _, dup := candidates[id]; !dup {
			candidates[id] = i
		}
	}

	byItem := make(map[string]*endorsement)
	for _, peer := range peers {
		for itemID, rating := range vectors[peer.index] {
			if rating < float64(p.config.EndorseRating) {
				continue
			}
			idx, ok := candidates[itemID]
			if !ok {
				continue
			}

			e, exists := byItem[itemID]
			if !exists {
				e = &endorsement{item: &in.Pool[idx]}
				byItem[itemID] = e
			}
			e.avg = (e.avg*e.count + rating*peer.sim) / (e.count + peer.sim)
			e.count += peer.sim
		}
	}

	out := make([]endorsement, 0, len(byItem))
	for _, e := range byItem {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].avg != out[j].avg {
			return out[i].avg > out[j].avg
		}
		return out[i].item.ItemID < out[j].item.ItemID
	})

	if in.Limit > 0 && len(out) > in.Limit {
		out = out[:in.Limit]
	}
	return out
}
