// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/partwise/internal/recommend"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendBadger = "badger"
	CacheBackendRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT
//   - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
//   - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
//   - CORS_ORIGINS: comma-separated list
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"` // empty = in-memory
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use NumCPU
	Seed      bool   `koanf:"seed"`    // load the demo catalog on an empty database
}

// CacheConfig selects and tunes the recommendation cache backend.
//
// Environment Variables:
//   - CACHE_BACKEND: memory, badger or redis (default: memory)
//   - CACHE_TTL: result lifetime (default: 24h)
//   - CACHE_CAPACITY, CACHE_CLEANUP_INTERVAL: memory backend
//   - BADGER_PATH, BADGER_GC_INTERVAL: badger backend
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB: redis backend
//   - CACHE_BREAKER_THRESHOLD, CACHE_BREAKER_TIMEOUT
type CacheConfig struct {
	Backend          string        `koanf:"backend"`
	TTL              time.Duration `koanf:"ttl"`
	Capacity         int           `koanf:"capacity"`
	CleanupInterval  time.Duration `koanf:"cleanup_interval"`
	BadgerPath       string        `koanf:"badger_path"`
	BadgerGCInterval time.Duration `koanf:"badger_gc_interval"`
	RedisAddr        string        `koanf:"redis_addr"`
	RedisPassword    string        `koanf:"redis_password"`
	RedisDB          int           `koanf:"redis_db"`
	BreakerThreshold uint32        `koanf:"breaker_threshold"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
}

// RecommendConfig holds engine tuning.
//
// Weights are keyed by signal name (category_exact, vehicle_exact, ...).
// Unlisted signals keep their default weight. Individual weights can be set
// through RECOMMEND_WEIGHT_<SIGNAL>, e.g. RECOMMEND_WEIGHT_VEHICLE_EXACT=15.
type RecommendConfig struct {
	LookbackDays      int                `koanf:"lookback_days"`
	RequestTimeout    time.Duration      `koanf:"request_timeout"`
	FallbackTimeout   time.Duration      `koanf:"fallback_timeout"`
	CandidateLimit    int                `koanf:"candidate_limit"`
	ParallelThreshold int                `koanf:"parallel_threshold"`
	HierarchyDepth    int                `koanf:"hierarchy_depth"`
	DefaultLimit      int                `koanf:"default_limit"`
	MaxLimit          int                `koanf:"max_limit"`
	MaxReasonSignals  int                `koanf:"max_reason_signals"`
	PriceTolerance    float64            `koanf:"price_tolerance"`
	RecencyDays       int                `koanf:"recency_days"`
	TopCategories     int                `koanf:"top_categories"`
	TopBrands         int                `koanf:"top_brands"`
	TopVehicles       int                `koanf:"top_vehicles"`
	PopularCategories int                `koanf:"popular_categories"`
	Weights           map[string]float64 `koanf:"weights"`
}

// IngestConfig holds interaction event ingestion settings.
//
// An empty NATSURL selects the in-process channel transport.
type IngestConfig struct {
	Enabled              bool          `koanf:"enabled"`
	NATSURL              string        `koanf:"nats_url"`
	Topic                string        `koanf:"topic"`
	DurableName          string        `koanf:"durable_name"`
	QueueGroup           string        `koanf:"queue_group"`
	SubscribersCount     int           `koanf:"subscribers_count"`
	AckWait              time.Duration `koanf:"ack_wait"`
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	PoisonQueueEnabled   bool          `koanf:"poison_queue_enabled"`
	PoisonQueueTopic     string        `koanf:"poison_queue_topic"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EngineConfig converts the recommend section into the engine's config.
// The cache TTL comes from the cache section.
func (c *Config) EngineConfig() (*recommend.Config, error) {
	weights, err := recommend.WeightsFromMap(c.Recommend.Weights)
	if err != nil {
		return nil, fmt.Errorf("recommend.weights: %w", err)
	}

	r := c.Recommend
	out := &recommend.Config{
		Weights:           weights,
		LookbackDays:      r.LookbackDays,
		RequestTimeout:    r.RequestTimeout,
		FallbackTimeout:   r.FallbackTimeout,
		CacheTTL:          c.Cache.TTL,
		CandidateLimit:    r.CandidateLimit,
		ParallelThreshold: r.ParallelThreshold,
		HierarchyDepth:    r.HierarchyDepth,
		DefaultLimit:      r.DefaultLimit,
		MaxLimit:          r.MaxLimit,
		MaxReasonSignals:  r.MaxReasonSignals,
		PriceTolerance:    r.PriceTolerance,
		RecencyWindow:     time.Duration(r.RecencyDays) * 24 * time.Hour,
		TopCategories:     r.TopCategories,
		TopBrands:         r.TopBrands,
		TopVehicles:       r.TopVehicles,
		PopularCategories: r.PopularCategories,
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return out, nil
}

// BreakerConfig returns the cache circuit breaker settings.
func (c *Config) BreakerConfig() recommend.BreakerConfig {
	b := recommend.DefaultBreakerConfig()
	b.Name = "recommend-cache-" + c.Cache.Backend
	if c.Cache.BreakerThreshold > 0 {
		b.FailureThreshold = c.Cache.BreakerThreshold
	}
	if c.Cache.BreakerTimeout > 0 {
		b.Timeout = c.Cache.BreakerTimeout
	}
	return b
}

// Load reads configuration from defaults, an optional YAML file and the
// environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
