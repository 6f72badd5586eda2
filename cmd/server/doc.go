// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

/*
Package main is the entry point for the Partwise recommendation server.

Partwise serves content-based auto parts recommendations over HTTP: a
personalized feed per user, products similar to a given product, and top
products for a set of categories. Interaction events (view, add-to-cart,
purchase) are accepted on POST /api/v1/events and ingested asynchronously.

# Startup

 1. Configuration: koanf layers defaults, an optional YAML file and the environment
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB catalog and event store, seeded with a demo catalog when empty
 4. Cache: memory, badger or redis store behind a circuit breaker
 5. Engine: recommend.Engine over the database and cache
 6. Ingestion: watermill router over NATS JetStream, or in-process channels
 7. HTTP: chi router with request ids, metrics, CORS and rate limiting
 8. Supervision: suture tree with data, ingest and api layers

# Configuration

	HTTP_PORT=8080               listen port
	LOG_LEVEL=info               trace, debug, info, warn, error
	LOG_FORMAT=json              json or console
	DUCKDB_PATH=                 empty keeps the database in memory
	SEED_CATALOG=true            load the demo catalog into an empty database
	CACHE_BACKEND=memory         memory, badger or redis
	CACHE_TTL=24h
	REDIS_ADDR=redis:6379        required for CACHE_BACKEND=redis
	BADGER_PATH=/data/cache      required for CACHE_BACKEND=badger
	INGEST_ENABLED=true
	NATS_URL=nats://nats:4222    empty uses an in-process transport
	RECOMMEND_WEIGHT_<NAME>=0.3  override one similarity weight

A YAML file may be given with CONFIG_PATH.

# Signals

SIGINT and SIGTERM cancel the root context. Every supervised service stops;
the HTTP server drains in-flight requests for HTTP_SHUTDOWN_TIMEOUT. The
transport, cache store and database close after the tree has returned.
*/
package main
