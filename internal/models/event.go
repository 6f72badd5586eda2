// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package models

import "time"

// EventType is the kind of user interaction.
type EventType string

const (
	EventView      EventType = "view"
	EventAddToCart EventType = "add-to-cart"
	EventPurchase  EventType = "purchase"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventView, EventAddToCart, EventPurchase:
		return true
	default:
		return false
	}
}

// Event is an append-only interaction record.
type Event struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Type      EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}
