// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/partwise/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/partwise/config.yaml",
	"/etc/partwise/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// weightEnvPrefix maps RECOMMEND_WEIGHT_<SIGNAL> onto recommend.weights.<signal>.
const weightEnvPrefix = "recommend_weight_"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Database: DatabaseConfig{
			Path:      "", // in-memory
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
			Seed:      true,
		},
		Cache: CacheConfig{
			Backend:          CacheBackendMemory,
			TTL:              engine.CacheTTL,
			Capacity:         10000,
			CleanupInterval:  5 * time.Minute,
			BadgerPath:       "/data/partwise-cache",
			BadgerGCInterval: 10 * time.Minute,
			RedisAddr:        "",
			RedisDB:          0,
			BreakerThreshold: 5,
			BreakerTimeout:   30 * time.Second,
		},
		Recommend: RecommendConfig{
			LookbackDays:      engine.LookbackDays,
			RequestTimeout:    engine.RequestTimeout,
			FallbackTimeout:   engine.FallbackTimeout,
			CandidateLimit:    engine.CandidateLimit,
			ParallelThreshold: engine.ParallelThreshold,
			HierarchyDepth:    engine.HierarchyDepth,
			DefaultLimit:      engine.DefaultLimit,
			MaxLimit:          engine.MaxLimit,
			MaxReasonSignals:  engine.MaxReasonSignals,
			PriceTolerance:    engine.PriceTolerance,
			RecencyDays:       int(engine.RecencyWindow / (24 * time.Hour)),
			TopCategories:     engine.TopCategories,
			TopBrands:         engine.TopBrands,
			TopVehicles:       engine.TopVehicles,
			PopularCategories: engine.PopularCategories,
			Weights:           engine.Weights.ToMap(),
		},
		Ingest: IngestConfig{
			Enabled:              true,
			NATSURL:              "", // in-process transport
			Topic:                "partwise.events",
			DurableName:          "partwise-ingest",
			QueueGroup:           "partwise-ingest",
			SubscribersCount:     2,
			AckWait:              30 * time.Second,
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			PoisonQueueEnabled:   true,
			PoisonQueueTopic:     "partwise.events.poison",
			CloseTimeout:         30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",
	"cors_origins":          "server.cors_origins",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_catalog":      "database.seed",

	// Cache
	"cache_backend":           "cache.backend",
	"cache_ttl":               "cache.ttl",
	"cache_capacity":          "cache.capacity",
	"cache_cleanup_interval":  "cache.cleanup_interval",
	"badger_path":             "cache.badger_path",
	"badger_gc_interval":      "cache.badger_gc_interval",
	"redis_addr":              "cache.redis_addr",
	"redis_password":          "cache.redis_password",
	"redis_db":                "cache.redis_db",
	"cache_breaker_threshold": "cache.breaker_threshold",
	"cache_breaker_timeout":   "cache.breaker_timeout",

	// Recommendation engine
	"recommend_lookback_days":      "recommend.lookback_days",
	"recommend_request_timeout":    "recommend.request_timeout",
	"recommend_fallback_timeout":   "recommend.fallback_timeout",
	"recommend_candidate_limit":    "recommend.candidate_limit",
	"recommend_parallel_threshold": "recommend.parallel_threshold",
	"recommend_hierarchy_depth":    "recommend.hierarchy_depth",
	"recommend_default_limit":      "recommend.default_limit",
	"recommend_max_limit":          "recommend.max_limit",
	"recommend_max_reason_signals": "recommend.max_reason_signals",
	"recommend_price_tolerance":    "recommend.price_tolerance",
	"recommend_recency_days":       "recommend.recency_days",
	"recommend_top_categories":     "recommend.top_categories",
	"recommend_top_brands":         "recommend.top_brands",
	"recommend_top_vehicles":       "recommend.top_vehicles",
	"recommend_popular_categories": "recommend.popular_categories",

	// Ingestion
	"ingest_enabled":                "ingest.enabled",
	"nats_url":                      "ingest.nats_url",
	"ingest_topic":                  "ingest.topic",
	"nats_durable_name":             "ingest.durable_name",
	"nats_queue_group":              "ingest.queue_group",
	"nats_subscribers":              "ingest.subscribers_count",
	"nats_ack_wait":                 "ingest.ack_wait",
	"ingest_retry_count":            "ingest.retry_count",
	"ingest_retry_initial_interval": "ingest.retry_initial_interval",
	"ingest_poison_queue_enabled":   "ingest.poison_queue_enabled",
	"ingest_poison_queue_topic":     "ingest.poison_queue_topic",
	"ingest_close_timeout":          "ingest.close_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - REDIS_ADDR -> cache.redis_addr
//   - RECOMMEND_WEIGHT_VEHICLE_EXACT -> recommend.weights.vehicle_exact
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	if name, ok := strings.CutPrefix(key, weightEnvPrefix); ok && name != "" {
		return "recommend.weights." + name
	}

	// Unmapped keys are skipped so unrelated environment variables never
	// pollute the config.
	return ""
}
