// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("event publisher is closed")

// EventPublisher validates interaction events and publishes them to the
// ingest topic. The API uses it for POST /api/v1/events.
type EventPublisher struct {
	publisher message.Publisher
	topic     string
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
}

// NewEventPublisher creates a publisher for topic.
func NewEventPublisher(pub message.Publisher, topic string) (*EventPublisher, error) {
	if pub == nil {
		return nil, fmt.Errorf("publisher required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic required")
	}
	return &EventPublisher{publisher: pub, topic: topic, now: time.Now}, nil
}

// Publish fills a missing id and timestamp, validates, and publishes the
// event. Validation failures wrap ErrMalformedEvent. It returns the event id.
func (p *EventPublisher) Publish(ctx context.Context, e InteractionEvent) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return "", ErrPublisherClosed
	}

	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = p.now().UTC()
	}
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	payload, err := MarshalEvent(&e)
	if err != nil {
		return "", err
	}

	msg := message.NewMessage(e.EventID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(natsgo.MsgIdHdr, e.EventID)
	msg.Metadata.Set("event_type", e.Type)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return "", fmt.Errorf("publish event %s: %w", e.EventID, err)
	}
	return e.EventID, nil
}

// Close marks the publisher closed. The underlying transport is owned by the
// Ingestor.
func (p *EventPublisher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
