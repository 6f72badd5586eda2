// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/partwise/internal/models"
	"github.com/tomtom215/partwise/internal/validation"
)

// ErrMalformedEvent marks a payload that can never be stored, no matter how
// often it is redelivered.
var ErrMalformedEvent = errors.New("malformed interaction event")

// InteractionEvent is the wire form of one user interaction.
type InteractionEvent struct {
	// EventID makes redelivery idempotent. The publisher fills it when empty.
	EventID   string    `json:"event_id,omitempty" validate:"omitempty,max=128"`
	UserID    string    `json:"user_id" validate:"required,entityid"`
	ProductID string    `json:"product_id" validate:"required,entityid"`
	Type      string    `json:"event_type" validate:"required,eventtype"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// Event converts the payload into the stored event record.
func (e *InteractionEvent) Event() models.Event {
	return models.Event{
		UserID:    e.UserID,
		ProductID: e.ProductID,
		Type:      models.EventType(e.Type),
		Timestamp: e.Timestamp.UTC(),
	}
}

// Validate checks field formats.
func (e *InteractionEvent) Validate() error {
	if verr := validation.ValidateStruct(e); verr != nil {
		return verr
	}
	return nil
}

// MarshalEvent encodes an event for publishing.
func MarshalEvent(e *InteractionEvent) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal interaction event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent decodes and validates a payload. Every failure wraps
// ErrMalformedEvent.
func UnmarshalEvent(data []byte) (*InteractionEvent, error) {
	var e InteractionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	return &e, nil
}
