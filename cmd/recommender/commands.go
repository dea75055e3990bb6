// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rw3iss/movie-recommender/internal/logging"
	"github.com/rw3iss/movie-recommender/internal/recommend"
)

// rankFunc produces a response for one decoded request.
type rankFunc func(ctx context.Context, engine *recommend.Engine, req recommend.Request) (*recommend.Response, error)

// rank reads the input document, runs call and writes the response.
func (o *options) rank(cmd *cobra.Command, limit int, call rankFunc) error {
	doc, err := readDocument(o.input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	engine, err := initEngine(o.cfg, logging.Logger())
	if err != nil {
		return err
	}

	req := doc.request()
	req.Limit = limit

	resp, err := call(cmd.Context(), engine, req)
	if err != nil {
		return err
	}

	logger := logging.WithComponent("cli")
	logger.Info().
		Str("command", cmd.Name()).
		Str("request_id", resp.Metadata.RequestID).
		Str("strategy", resp.Metadata.Strategy).
		Str("view", resp.Metadata.View).
		Int("returned", len(resp.Items)).
		Int("candidates", resp.TotalCandidates).
		Msg("recommendations ranked")

	return writeJSON(o.output, cmd.OutOrStdout(), resp)
}

func newRecommendCmd(opts *options) *cobra.Command {
	var (
		strategy  string
		limit     int
		diversify bool
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank the candidate pool with a strategy",
		Long: "Ranks every unrated pool item with the named strategy (the configured default " +
			"when omitted) and prints the top results.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.rank(cmd, limit, func(ctx context.Context, e *recommend.Engine, req recommend.Request) (*recommend.Response, error) {
				req.Strategy = strategy
				if diversify {
					return e.DiversifiedRecommendations(ctx, req)
				}
				return e.GenerateRecommendations(ctx, req)
			})
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "Strategy name (see the strategies command)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (0 uses the configured default)")
	cmd.Flags().BoolVar(&diversify, "diversify", false, "Apply genre and contributor caps")

	return cmd
}

func newByGenreCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "by-genre <genre>",
		Short: "Rank only pool items tagged with a genre",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.rank(cmd, limit, func(ctx context.Context, e *recommend.Engine, req recommend.Request) (*recommend.Response, error) {
				return e.ByGenre(ctx, req, args[0])
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (0 uses the configured default)")

	return cmd
}

func newByContributorCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "by-contributor <name>",
		Short: "Rank only pool items credited to a contributor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.rank(cmd, limit, func(ctx context.Context, e *recommend.Engine, req recommend.Request) (*recommend.Response, error) {
				return e.ByContributor(ctx, req, args[0])
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (0 uses the configured default)")

	return cmd
}

func newByDecadeCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "by-decade <decade>",
		Short: "Rank only pool items released in a decade",
		Long:  "Any year inside the decade is accepted, so 1994 selects the 1990s.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decade, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid decade %q: %w", args[0], err)
			}
			return opts.rank(cmd, limit, func(ctx context.Context, e *recommend.Engine, req recommend.Request) (*recommend.Response, error) {
				return e.ByDecade(ctx, req, decade)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (0 uses the configured default)")

	return cmd
}

func newPeersCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "peers",
		Short: "Rank the pool by what similar raters endorsed",
		Long: "Runs peer correlation over the document's peers. Small corpora and corpora " +
			"without similar raters fall back to attribute scoring.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.rank(cmd, limit, func(ctx context.Context, e *recommend.Engine, req recommend.Request) (*recommend.Response, error) {
				return e.ByPeers(ctx, req)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (0 uses the configured default)")

	return cmd
}

func newDiversifyCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "diversify",
		Short: "Rank an over-fetched list and apply diversity caps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.rank(cmd, limit, func(ctx context.Context, e *recommend.Engine, req recommend.Request) (*recommend.Response, error) {
				return e.DiversifiedRecommendations(ctx, req)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (0 uses the configured default)")

	return cmd
}

func newStrategiesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "Describe the registered strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := initEngine(opts.cfg, logging.Logger())
			if err != nil {
				return err
			}

			strategies := engine.Strategies()
			descriptions := make([]recommend.Description, 0, len(strategies))
			for _, s := range strategies {
				descriptions = append(descriptions, s.Describe())
			}
			return writeJSON(opts.output, cmd.OutOrStdout(), descriptions)
		},
	}
}
