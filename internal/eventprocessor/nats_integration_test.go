// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

//go:build integration

package eventprocessor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/partwise/internal/config"
	"github.com/tomtom215/partwise/internal/testinfra"
)

func TestIngestor_JetStream(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := testinfra.NewNATSContainer(ctx)
	if err != nil {
		t.Fatalf("start nats: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, container.Container)

	cfg := config.IngestConfig{
		Enabled:              true,
		NATSURL:              container.URL,
		Topic:                "partwise.events",
		DurableName:          "partwise-ingest-test",
		QueueGroup:           "partwise-ingest-test",
		SubscribersCount:     2,
		AckWait:              5 * time.Second,
		RetryCount:           2,
		RetryInitialInterval: 10 * time.Millisecond,
		CloseTimeout:         5 * time.Second,
	}
	store := newMockStore()
	ing, err := NewIngestor(&cfg, store, nil)
	if err != nil {
		t.Fatalf("NewIngestor() error = %v", err)
	}
	defer ing.Close()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- ing.Run(runCtx) }()
	waitFor(t, "router start", func() bool { return ing.Running() != nil })
	<-ing.Running()

	e := InteractionEvent{EventID: "evt-js-1", UserID: "user-1", ProductID: "prd-1", Type: "purchase", Timestamp: testTime}
	for i := 0; i < 2; i++ {
		if _, err := ing.Publisher().Publish(runCtx, e); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	if _, err := ing.Publisher().Publish(runCtx, InteractionEvent{UserID: "user-2", ProductID: "prd-2", Type: "view", Timestamp: testTime}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	waitFor(t, "two distinct events stored", func() bool { return store.count() == 2 })
	if _, ok := store.get("evt-js-1"); !ok {
		t.Error("event evt-js-1 was not stored under its own id")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
