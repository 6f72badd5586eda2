// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy shared by the engine and the stores it depends on.
var (
	// ErrInvalidInput marks malformed ids or limits. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a missing source product or user. No fallback applies.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable marks an unreachable event store, product store or cache.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidCandidate marks a candidate that violates a catalog invariant,
	// such as a missing category reference. The candidate is skipped.
	ErrInvalidCandidate = errors.New("invalid candidate")
)

// errColdStart signals that a user has no qualifying events.
var errColdStart = errors.New("no qualifying events")

// upstream wraps a store error onto ErrUpstreamUnavailable unless it already
// carries a taxonomy sentinel or a context error.
func upstream(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUpstreamUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
	}
}
