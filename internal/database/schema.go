// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

/*
schema.go - Database Schema Management

Tables:
  - categories: flat category records, the tree is derived from parent_id
  - brands, vehicle_models: flat reference data
  - products: catalog items; tags, fitment and images live in child tables
  - users: known user ids, populated by seeding and event ingestion
  - events: append-only interaction log, keyed by the ingestion message id

Index Strategy:
  - events (user_id, occurred_at) for profile lookback reads
  - events (occurred_at) for popularity aggregation
  - products by category and brand, product_vehicles by vehicle for the
    candidate OR filter
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/partwise/internal/logging"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// initialize creates tables and indexes.
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}
	if err := db.createIndexes(); err != nil {
		return err
	}

	if !isMemoryPath(db.cfg.Path) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.Checkpoint(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
		}
	}
	return nil
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// createIndexes creates the lookup indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL,
		parent_id TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS brands (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		country TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS vehicle_models (
		id TEXT PRIMARY KEY,
		manufacturer_id TEXT NOT NULL,
		body_type TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price DOUBLE NOT NULL,
		category_id TEXT,
		brand_id TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product_tags (
		product_id TEXT NOT NULL,
		tag TEXT NOT NULL,
		PRIMARY KEY (product_id, tag)
	)`,
	`CREATE TABLE IF NOT EXISTS product_vehicles (
		product_id TEXT NOT NULL,
		vehicle_model_id TEXT NOT NULL,
		manufacturer_id TEXT NOT NULL,
		PRIMARY KEY (product_id, vehicle_model_id)
	)`,
	`CREATE TABLE IF NOT EXISTS product_images (
		product_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		PRIMARY KEY (product_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		occurred_at TIMESTAMP NOT NULL
	)`,
}

var indexCreationQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_events_user_time ON events(user_id, occurred_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_time ON events(occurred_at)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_brand ON products(brand_id)`,
	`CREATE INDEX IF NOT EXISTS idx_product_vehicles_vehicle ON product_vehicles(vehicle_model_id)`,
}
