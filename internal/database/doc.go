// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

// Package database provides the DuckDB-backed catalog and event stores for
// Partwise.
//
// # Overview
//
// DB implements the recommendation engine's ProductStore, EventStore and
// UserDirectory interfaces, and the event appender used by ingestion.
//
// # Architecture
//
//   - database.go: connection lifecycle, pool configuration, checkpoints
//   - schema.go: table and index creation
//   - products.go: product, category and brand reads and writes
//   - events.go: interaction events, popularity aggregation, users
//   - seed.go: the demo catalog
//   - query_helpers.go: query builder and generic row scanning
//   - errors.go: mapping driver errors onto the recommend error taxonomy
//
// # Error Handling
//
// Missing rows surface as recommend.ErrNotFound. Every other driver failure
// surfaces as recommend.ErrUpstreamUnavailable. Context cancellation passes
// through unchanged.
//
// # Usage
//
//	db, err := database.New(&config.DatabaseConfig{Path: "/data/partwise.duckdb", MaxMemory: "1GB"})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	engine, err := recommend.NewEngine(cfg, db, db, logger, recommend.WithUserDirectory(db))
//
// # Thread Safety
//
// DB is safe for concurrent use. Event appends are idempotent per event id,
// so redelivered ingestion messages do not duplicate events.
package database
