// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

// Package main provides the recommender CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rw3iss/movie-recommender/internal/config"
	"github.com/rw3iss/movie-recommender/internal/logging"
)

// options holds the persistent flags and the state built from them.
type options struct {
	input       string
	output      string
	metricsFile string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "recommender",
		Short: "Rank unseen movies for a user from their rating history",
		Long: "recommender reads a JSON document holding a user's ratings, a candidate pool and " +
			"optionally a peer corpus, then prints a ranked recommendation list as JSON.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithKoanf()
			if err != nil {
				return err
			}
			logging.Init(cfg.Logging.LoggingSettings())
			opts.cfg = cfg
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if opts.metricsFile == "" {
				return nil
			}
			if err := prometheus.WriteToTextfile(opts.metricsFile, prometheus.DefaultGatherer); err != nil {
				return fmt.Errorf("failed to write metrics to %s: %w", opts.metricsFile, err)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.input, "input", "i", "-", "Path to input JSON document (- for stdin)")
	flags.StringVarP(&opts.output, "out", "o", "", "Path to output JSON file (default stdout)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")

	rootCmd.AddCommand(
		newRecommendCmd(opts),
		newByGenreCmd(opts),
		newByContributorCmd(opts),
		newByDecadeCmd(opts),
		newPeersCmd(opts),
		newDiversifyCmd(opts),
		newStrategiesCmd(opts),
	)

	return rootCmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
