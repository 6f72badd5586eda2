// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package eventprocessor

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/partwise/internal/config"
)

const ingestHandlerName = "event_ingest"

// Ingestor owns the transport and runs the consumer router.
//
// A watermill router runs once, so Run builds a fresh router per call. The
// supervisor may restart Run after a failure without reconnecting.
type Ingestor struct {
	cfg       config.IngestConfig
	transport *Transport
	handler   *EventHandler
	publisher *EventPublisher
	logger    watermill.LoggerAdapter

	mu     sync.Mutex
	router *Router
}

// NewIngestor wires the transport, handler and publisher together.
func NewIngestor(cfg *config.IngestConfig, store EventAppender, logger watermill.LoggerAdapter) (*Ingestor, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	transport, err := NewTransport(cfg, logger)
	if err != nil {
		return nil, err
	}
	return newIngestor(cfg, transport, store, logger)
}

func newIngestor(cfg *config.IngestConfig, transport *Transport, store EventAppender, logger watermill.LoggerAdapter) (*Ingestor, error) {
	handler, err := NewEventHandler(store, logger)
	if err != nil {
		return nil, err
	}
	publisher, err := NewEventPublisher(transport.Publisher, cfg.Topic)
	if err != nil {
		return nil, err
	}
	return &Ingestor{
		cfg:       *cfg,
		transport: transport,
		handler:   handler,
		publisher: publisher,
		logger:    logger.With(watermill.LogFields{"transport": transport.Kind, "topic": cfg.Topic}),
	}, nil
}

// Publisher returns the publisher feeding this ingestor's topic.
func (i *Ingestor) Publisher() *EventPublisher {
	return i.publisher
}

// Stats returns the handler counters.
func (i *Ingestor) Stats() HandlerStats {
	return i.handler.Stats()
}

func (i *Ingestor) routerConfig() RouterConfig {
	rc := DefaultRouterConfig()
	if i.cfg.CloseTimeout > 0 {
		rc.CloseTimeout = i.cfg.CloseTimeout
	}
	rc.RetryMaxRetries = i.cfg.RetryCount
	if i.cfg.RetryInitialInterval > 0 {
		rc.RetryInitialInterval = i.cfg.RetryInitialInterval
	}
	if i.cfg.PoisonQueueEnabled {
		rc.PoisonQueueTopic = i.cfg.PoisonQueueTopic
	}
	return rc
}

// Run consumes events until ctx is canceled.
func (i *Ingestor) Run(ctx context.Context) error {
	rc := i.routerConfig()
	router, err := NewRouter(&rc, i.transport.Publisher, i.logger)
	if err != nil {
		return err
	}
	router.AddConsumerHandler(ingestHandlerName, i.cfg.Topic, i.transport.Subscriber, i.handler.Handle)

	i.mu.Lock()
	i.router = router
	i.mu.Unlock()

	i.logger.Info("Ingest router starting", nil)
	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("ingest router: %w", err)
	}
	return ctx.Err()
}

// Running returns a channel closed once the current router is consuming, or
// nil before Run has been called.
func (i *Ingestor) Running() <-chan struct{} {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.router == nil {
		return nil
	}
	return i.router.Running()
}

// Close stops publishing and closes the transport.
func (i *Ingestor) Close() error {
	i.publisher.Close()
	return i.transport.Close()
}
