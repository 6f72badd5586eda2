// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/partwise/internal/logging"
)

// IngestRunner blocks consuming events until ctx is canceled.
// Satisfied by *eventprocessor.Ingestor.
type IngestRunner interface {
	Run(ctx context.Context) error
}

// IngestService supervises the event ingestion router. Each restart calls
// Run again, which builds a fresh router over the same transport.
type IngestService struct {
	runner       IngestRunner
	startTimeout time.Duration
}

// NewIngestService wraps runner. startTimeout bounds how long Serve waits
// for Running() to close before logging a slow start; zero disables the
// check.
func NewIngestService(runner IngestRunner, startTimeout time.Duration) *IngestService {
	return &IngestService{runner: runner, startTimeout: startTimeout}
}

// runningReporter is implemented by runners that expose readiness.
type runningReporter interface {
	Running() <-chan struct{}
}

// Serve implements suture.Service.
func (s *IngestService) Serve(ctx context.Context) error {
	logger := logging.With().Str("service", s.String()).Logger()

	done := make(chan error, 1)
	go func() { done <- s.runner.Run(ctx) }()

	s.awaitRunning(ctx, done)

	err := <-done
	if ctx.Err() != nil {
		logger.Info().Msg("Event ingestion stopped")
		return ctx.Err()
	}
	if err == nil || errors.Is(err, context.Canceled) {
		return errors.New("event ingestion stopped unexpectedly")
	}
	logger.Error().Err(err).Msg("Event ingestion failed")
	return fmt.Errorf("event ingestion: %w", err)
}

// awaitRunning logs once the router reports it is consuming. It returns
// early if Run exits first; the result is pushed back for Serve.
func (s *IngestService) awaitRunning(ctx context.Context, done chan error) {
	rr, ok := s.runner.(runningReporter)
	if !ok || s.startTimeout <= 0 {
		return
	}

	deadline := time.NewTimer(s.startTimeout)
	defer deadline.Stop()
	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()

	for {
		// Running() is nil until Run has built its router.
		if ch := rr.Running(); ch != nil {
			select {
			case <-ch:
				logging.Info().Str("service", s.String()).Msg("Event ingestion running")
				return
			default:
			}
		}
		select {
		case err := <-done:
			done <- err
			return
		case <-ctx.Done():
			return
		case <-deadline.C:
			logging.Warn().
				Str("service", s.String()).
				Dur("timeout", s.startTimeout).
				Msg("Event ingestion has not started yet")
			return
		case <-poll.C:
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *IngestService) String() string {
	return "event-ingest"
}
