// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps a thread-safe singleton validator and translates field
// errors into short human-readable messages. The recommendation engine uses
// it to check ratings and pool items before any scoring happens.
//
// # Quick Start
//
//	type RatedItem struct {
//	    ItemID string `validate:"required"`
//	    Rating int    `validate:"min=0,max=10"`
//	}
//
//	if verr := validation.ValidateStruct(&item); verr != nil {
//	    return fmt.Errorf("invalid rating: %w", verr)
//	}
//
// # Error Types
//
// ValidationError describes one failing field. StructError collects every
// failing field of one struct; its Fields method lists the field names in
// order and its Error method joins the messages with "; ".
//
// # Error Message Translation
//
//	required   -> "ItemID is required"
//	min=0      -> "Rating must be at least 0"
//	max=10     -> "Rating must be at most 10"
//	gte=1      -> "Limit must be greater than or equal to 1"
//	oneof=a b  -> "Format must be one of: a b"
//
// Tags without a dedicated message fall back to "<field> failed <tag> validation".
//
// # Thread Safety
//
// The validator is built once and caches struct reflection data, so
// GetValidator and ValidateStruct are safe for concurrent use.
package validation
