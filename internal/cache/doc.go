// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

// Package cache provides the byte-level key-value stores behind the
// recommendation cache.
//
// Three backends implement the same Get/Set contract with per-entry TTL:
//
//   - Memory: bounded in-process LRU with lazy expiry and a sweep service
//   - Badger: embedded persistent store using BadgerDB entry TTLs
//   - Redis: shared store for multi-instance deployments
//
// Expired entries are never returned by any backend. The recommend package
// layers encoding, expiry re-checks and a circuit breaker on top.
//
// Memory and Badger expose Serve(ctx) so the supervisor tree can run their
// maintenance loops.
package cache
