// Movie Recommender - Recommendation Scoring and Ranking Core
// Copyright 2026 rw3iss
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rw3iss/movie-recommender

package recommend

import (
	"errors"
	"fmt"
)

// ValidationError reports caller misuse: empty ratings or pool, an invalid
// item, or no strategy to run. No partial result accompanies it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// StrategyFailure wraps an unexpected error or panic raised while a
// strategy was running. It is never retried by the engine.
type StrategyFailure struct {
	Strategy string
	Stage    string
	Err      error
}

func (e *StrategyFailure) Error() string {
	return fmt.Sprintf("strategy %s failed during %s: %v", e.Strategy, e.Stage, e.Err)
}

func (e *StrategyFailure) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when a deadline or cancellation interrupts a
// scan. Callers may retry the whole request.
type TimeoutError struct {
	Stage string
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s interrupted: %v", e.Stage, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Retryable reports that the request can be retried as-is.
func (e *TimeoutError) Retryable() bool {
	return true
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStrategyFailure reports whether err is or wraps a *StrategyFailure.
func IsStrategyFailure(err error) bool {
	var sf *StrategyFailure
	return errors.As(err, &sf)
}

// IsRetryable reports whether err carries a retryable cause.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}

func validationErr(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
