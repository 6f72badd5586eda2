// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/partwise/internal/logging"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*IngestService)(nil)
	_ suture.Service = (*PeriodicService)(nil)
)

// mockHTTPServer blocks in ListenAndServe until Shutdown, unless listenErr is set.
type mockHTTPServer struct {
	listenErr   error
	shutdownErr error
	started     chan struct{}
	stop        chan struct{}
	stopOnce    sync.Once
	shutdowns   atomic.Int32
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stop
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	m.stopOnce.Do(func() { close(m.stop) })
	return m.shutdownErr
}

func TestHTTPServerService(t *testing.T) {
	t.Run("graceful shutdown on cancel", func(t *testing.T) {
		srv := newMockHTTPServer()
		svc := NewHTTPServerService(srv, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		<-srv.started
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
		if got := srv.shutdowns.Load(); got != 1 {
			t.Errorf("expected 1 Shutdown call, got %d", got)
		}
	})

	t.Run("listen error is returned", func(t *testing.T) {
		srv := newMockHTTPServer()
		srv.listenErr = errors.New("address already in use")
		svc := NewHTTPServerService(srv, time.Second)

		err := svc.Serve(context.Background())
		if err == nil || !errors.Is(err, srv.listenErr) {
			t.Errorf("expected wrapped listen error, got %v", err)
		}
	})

	t.Run("external close asks for restart", func(t *testing.T) {
		srv := newMockHTTPServer()
		svc := NewHTTPServerService(srv, time.Second)

		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(context.Background()) }()
		<-srv.started
		_ = srv.Shutdown(context.Background())

		if err := <-errCh; err == nil {
			t.Error("expected an error so the supervisor restarts the server")
		}
	})

	t.Run("shutdown error is returned", func(t *testing.T) {
		srv := newMockHTTPServer()
		srv.shutdownErr = errors.New("drain timeout")
		svc := NewHTTPServerService(srv, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()
		<-srv.started
		cancel()

		if err := <-errCh; !errors.Is(err, srv.shutdownErr) {
			t.Errorf("expected shutdown error, got %v", err)
		}
	})

	t.Run("defaults and name", func(t *testing.T) {
		svc := NewHTTPServerService(newMockHTTPServer(), 0)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("expected 10s default, got %v", svc.shutdownTimeout)
		}
		if svc.String() != "http-server" {
			t.Errorf("unexpected name %q", svc.String())
		}
	})
}

// mockRunner blocks until ctx is canceled or returns err immediately.
type mockRunner struct {
	err     error
	calls   atomic.Int32
	running chan struct{}
}

func (m *mockRunner) Run(ctx context.Context) error {
	m.calls.Add(1)
	if m.err != nil {
		return m.err
	}
	if m.running != nil {
		close(m.running)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockRunner) Running() <-chan struct{} {
	return m.running
}

func TestIngestService(t *testing.T) {
	logging.Init(logging.Config{Level: "info", Format: "json", Output: io.Discard})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	t.Run("stops cleanly on cancel", func(t *testing.T) {
		runner := &mockRunner{running: make(chan struct{})}
		svc := NewIngestService(runner, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		<-runner.running
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
	})

	t.Run("run failure is wrapped", func(t *testing.T) {
		runner := &mockRunner{err: errors.New("nats: no servers available")}
		svc := NewIngestService(runner, time.Second)

		err := svc.Serve(context.Background())
		if !errors.Is(err, runner.err) {
			t.Errorf("expected wrapped runner error, got %v", err)
		}
	})

	t.Run("early clean return asks for restart", func(t *testing.T) {
		runner := &mockRunner{err: context.Canceled}
		svc := NewIngestService(runner, 0)

		if err := svc.Serve(context.Background()); err == nil {
			t.Error("expected an error for an unexpected stop")
		}
	})

	t.Run("restarts under suture", func(t *testing.T) {
		runner := &mockRunner{err: errors.New("boom")}
		sup := suture.New("test", suture.Spec{
			FailureThreshold: 100,
			FailureBackoff:   10 * time.Millisecond,
			Timeout:          time.Second,
		})
		sup.Add(NewIngestService(runner, 0))

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()
		_ = sup.Serve(ctx)

		if runner.calls.Load() < 2 {
			t.Errorf("expected restarts, got %d calls", runner.calls.Load())
		}
	})
}

func TestPeriodicService(t *testing.T) {
	t.Run("runs on start and on tick", func(t *testing.T) {
		var runs atomic.Int32
		task := func(context.Context) error {
			runs.Add(1)
			return nil
		}
		svc := NewPeriodicService(task, PeriodicConfig{
			Name:       "checkpoint",
			Interval:   20 * time.Millisecond,
			RunOnStart: true,
		}, logging.NewTestLogger(io.Discard))

		ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
		defer cancel()

		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded, got %v", err)
		}
		if runs.Load() < 3 {
			t.Errorf("expected at least 3 runs, got %d", runs.Load())
		}
	})

	t.Run("task errors do not stop the loop", func(t *testing.T) {
		var runs atomic.Int32
		task := func(context.Context) error {
			runs.Add(1)
			return errors.New("checkpoint failed")
		}
		svc := NewPeriodicService(task, PeriodicConfig{Interval: 10 * time.Millisecond}, logging.NewTestLogger(io.Discard))

		ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
		defer cancel()
		_ = svc.Serve(ctx)

		if runs.Load() < 2 {
			t.Errorf("expected repeated runs after failures, got %d", runs.Load())
		}
	})

	t.Run("each run gets a deadline", func(t *testing.T) {
		got := make(chan bool, 1)
		task := func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			select {
			case got <- ok:
			default:
			}
			return nil
		}
		svc := NewPeriodicService(task, PeriodicConfig{
			Interval:   time.Hour,
			Timeout:    time.Second,
			RunOnStart: true,
		}, logging.NewTestLogger(io.Discard))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_ = svc.Serve(ctx)

		if !<-got {
			t.Error("expected the task context to carry a deadline")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		svc := NewPeriodicService(func(context.Context) error { return nil }, PeriodicConfig{}, logging.NewTestLogger(io.Discard))
		if svc.config.Interval != 5*time.Minute || svc.config.Timeout != 5*time.Minute {
			t.Errorf("unexpected defaults %+v", svc.config)
		}
		if svc.String() != "periodic-task" {
			t.Errorf("unexpected name %q", svc.String())
		}
	})
}
