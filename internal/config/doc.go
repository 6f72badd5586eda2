// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

/*
Package config provides centralized configuration management for Partwise.

# Configuration Sources

Configuration is layered with koanf, later layers overriding earlier ones:
  - Struct defaults (defaultConfig)
  - An optional YAML file, from CONFIG_PATH or the DefaultConfigPaths
  - Environment variables, through an explicit mapping table

Unmapped environment variables are ignored.

# Configuration Structure

  - ServerConfig: HTTP listen address, timeouts, rate limit, CORS
  - DatabaseConfig: DuckDB path and tuning, demo catalog seeding
  - CacheConfig: cache backend (memory, badger, redis), TTL, circuit breaker
  - RecommendConfig: engine tuning and the signal weight table
  - IngestConfig: interaction event ingestion over NATS JetStream or in-process
  - LoggingConfig: zerolog level, format and caller

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	engineCfg, err := cfg.EngineConfig()

# Example YAML

	server:
	  port: 8080
	cache:
	  backend: redis
	  redis_addr: localhost:6379
	recommend:
	  request_timeout: 300ms
	  weights:
	    vehicle_exact: 15
*/
package config
