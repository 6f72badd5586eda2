// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/partwise/internal/metrics"
)

// CacheEntry is one stored result set. It is always replaced as a whole.
type CacheEntry struct {
	Key       CacheKey         `json:"key"`
	Items     []Recommendation `json:"items"`
	Capacity  int              `json:"capacity"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Expired reports whether the entry is logically dead at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Cache stores result sets per key with a time-to-live.
type Cache interface {
	// Get returns a miss when the key is absent or the entry has expired.
	Get(ctx context.Context, key CacheKey) (*CacheEntry, bool, error)

	// Put replaces any entry for key. capacity is the number of results the
	// entry can serve.
	Put(ctx context.Context, key CacheKey, items []Recommendation, capacity int, ttl time.Duration) error
}

// KVStore is a byte-level key-value store with per-entry expiry.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// BreakerConfig configures the circuit breaker in front of the cache store.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "recommend-cache",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// StoreCache adapts a KVStore to Cache.
//
// Behavior:
//   - Entries are JSON encoded with their creation time, expiry and the
//     limit they were computed for.
//   - Expiry is re-checked on read against the injected clock, so a store
//     that keeps entries past their TTL never serves them.
//   - An entry that fails to decode is returned as an error.
//   - Every store call goes through a gobreaker circuit breaker. After
//     BreakerConfig.FailureThreshold consecutive failures the breaker opens
//     and calls fail fast until BreakerConfig.Timeout elapses.
//   - Store failures and an open breaker surface as ErrUpstreamUnavailable.
//     The engine treats any cache error as a miss and skips the write.
//
// Thread Safety: safe for concurrent use when the KVStore is.
type StoreCache struct {
	store   KVStore
	breaker *gobreaker.CircuitBreaker[[]byte]
	now     func() time.Time
}

// NewStoreCache wraps store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStoreCache(store KVStore, cfg BreakerConfig, now func() time.Time, logger zerolog.Logger) *StoreCache {
	if now == nil {
		now = time.Now
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// A canceled caller says nothing about the store's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCacheBreakerState(to.String())
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cache circuit breaker state changed")
		},
	}

	return &StoreCache{
		store:   store,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		now:     now,
	}
}

// Get implements Cache.
func (c *StoreCache) Get(ctx context.Context, key CacheKey) (*CacheEntry, bool, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		v, ok, err := c.store.Get(ctx, key.String())
		if err != nil || !ok {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: cache get: %w", ErrUpstreamUnavailable, err)
	}
	if data == nil {
		return nil, false, nil
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if entry.Expired(c.now()) {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put implements Cache.
func (c *StoreCache) Put(ctx context.Context, key CacheKey, items []Recommendation, capacity int, ttl time.Duration) error {
	now := c.now()
	entry := CacheEntry{
		Key:       key,
		Items:     items,
		Capacity:  capacity,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.store.Set(ctx, key.String(), data, ttl)
	})
	if err != nil {
		return fmt.Errorf("%w: cache put: %w", ErrUpstreamUnavailable, err)
	}
	return nil
}

// State returns the breaker state for health reporting.
func (c *StoreCache) State() string {
	return c.breaker.State().String()
}
