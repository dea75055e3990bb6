// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

// Package logging provides centralized zerolog-based structured logging.
//
// JSON output is the default. Console output is available for local runs of
// the recommender CLI.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logger := logging.WithComponent("cli")
//	logger.Info().Int("ratings", len(ratings)).Msg("loaded history")
//
// # Request Context
//
// The engine stores its per-request logger and request ID in the context
// it hands to strategies. Strategies log through Ctx so every line carries
// the request fields:
//
//	ctx = logging.ContextWithLogger(ctx, requestLogger)
//	ctx = logging.ContextWithRequestID(ctx, requestID)
//
//	logging.Ctx(ctx).Warn().Int("corpus", n).Msg("peer corpus truncated")
//
// # Log Levels
//
//   - trace: very detailed debugging
//   - debug: per-request pipeline steps
//   - info: startup and command results
//   - warn: degraded but successful requests
//   - error: failed requests
//   - disabled/off: no output
//
// # Testing
//
// Init accepts any io.Writer as Output so tests can assert on the lines
// written:
//
//	var buf bytes.Buffer
//	logging.Init(logging.Config{Level: "debug", Output: &buf})
//	defer logging.Init(logging.DefaultConfig())
//
// # Thread Safety
//
// The global logger is guarded by a RWMutex. Init may be called at any
// time; loggers obtained earlier keep their old configuration.
package logging
