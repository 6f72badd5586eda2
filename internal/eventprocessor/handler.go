// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/partwise/internal/metrics"
	"github.com/tomtom215/partwise/internal/models"
)

// EventAppender persists interaction events. AppendEvent reports false when
// an event with the same id was already stored.
type EventAppender interface {
	AppendEvent(ctx context.Context, id string, e models.Event) (bool, error)
}

// Outcome labels for partwise_ingest_events_total.
const (
	outcomeStored    = "stored"
	outcomeDuplicate = "duplicate"
	outcomeMalformed = "malformed"
	outcomeFailed    = "failed"
)

// EventHandler appends consumed interaction events to the event store.
//
// Error handling:
//   - Malformed payloads return ErrMalformedEvent (acked, never retried)
//   - Store errors are returned as-is (retried with backoff)
//   - Duplicates are acked without a write
type EventHandler struct {
	store  EventAppender
	logger watermill.LoggerAdapter

	received   atomic.Int64
	stored     atomic.Int64
	duplicates atomic.Int64
	malformed  atomic.Int64
}

// HandlerStats is a snapshot of handler counters.
type HandlerStats struct {
	Received   int64
	Stored     int64
	Duplicates int64
	Malformed  int64
}

// NewEventHandler creates a handler writing to store.
func NewEventHandler(store EventAppender, logger watermill.LoggerAdapter) (*EventHandler, error) {
	if store == nil {
		return nil, fmt.Errorf("event store required")
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &EventHandler{store: store, logger: logger}, nil
}

// Handle processes one message. It is passed to Router.AddConsumerHandler.
func (h *EventHandler) Handle(msg *message.Message) error {
	h.received.Add(1)

	event, err := UnmarshalEvent(msg.Payload)
	if err != nil {
		h.malformed.Add(1)
		metrics.RecordIngestEvent("unknown", outcomeMalformed)
		return err
	}

	id := event.EventID
	if id == "" {
		id = msg.UUID
	}

	inserted, err := h.store.AppendEvent(msg.Context(), id, event.Event())
	if err != nil {
		metrics.RecordIngestEvent(event.Type, outcomeFailed)
		return fmt.Errorf("append event %s: %w", id, err)
	}

	if !inserted {
		h.duplicates.Add(1)
		metrics.RecordIngestEvent(event.Type, outcomeDuplicate)
		h.logger.Debug("Duplicate event skipped", watermill.LogFields{"event_id": id})
		return nil
	}

	h.stored.Add(1)
	metrics.RecordIngestEvent(event.Type, outcomeStored)
	h.logger.Trace("Event stored", watermill.LogFields{
		"event_id":   id,
		"user_id":    event.UserID,
		"product_id": event.ProductID,
		"event_type": event.Type,
	})
	return nil
}

// Stats returns the current counters.
func (h *EventHandler) Stats() HandlerStats {
	return HandlerStats{
		Received:   h.received.Load(),
		Stored:     h.stored.Load(),
		Duplicates: h.duplicates.Load(),
		Malformed:  h.malformed.Load(),
	}
}
