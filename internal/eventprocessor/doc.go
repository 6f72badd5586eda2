// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

// Package eventprocessor consumes user interaction events into the event
// store that the recommendation engine reads profiles from.
//
// # Architecture
//
//	POST /api/v1/events
//	        |
//	  EventPublisher ──► topic (JetStream or gochannel)
//	                          |
//	                    Router (Recoverer → PoisonQueue → Retry)
//	                          |
//	                    EventHandler ──► DuckDB events table
//
// With ingest.nats_url set the transport is a durable watermill-nats
// JetStream subscriber, so several instances share the queue group.
// Without it the publisher and subscriber share one in-process gochannel.
//
// # Delivery
//
// Events carry an id. The publisher assigns a UUID when the client sends
// none, and the store ignores ids it has already seen, so redelivery after a
// crash does not double count a view.
//
// Payloads that fail to decode or validate are acked rather than retried,
// and copied to the poison topic when the poison queue is enabled. Store
// errors are retried with exponential backoff and then poisoned.
package eventprocessor
