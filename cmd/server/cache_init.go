// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/partwise/internal/api"
	"github.com/tomtom215/partwise/internal/cache"
	"github.com/tomtom215/partwise/internal/config"
	"github.com/tomtom215/partwise/internal/recommend"
)

// cacheBackend is the selected result cache store plus whatever the rest of
// main needs from it.
type cacheBackend struct {
	store recommend.KVStore

	// maintenance runs in the data layer; nil for redis.
	maintenance suture.Service

	// health is reported by /healthz; nil for the in-process stores.
	health api.Pinger

	closer io.Closer
}

// initCache opens the store named by CACHE_BACKEND.
func initCache(ctx context.Context, cfg *config.CacheConfig) (*cacheBackend, error) {
	switch cfg.Backend {
	case config.CacheBackendMemory:
		m := cache.NewMemory(cache.MemoryConfig{
			Capacity:        cfg.Capacity,
			CleanupInterval: cfg.CleanupInterval,
		})
		return &cacheBackend{store: m, maintenance: m}, nil

	case config.CacheBackendBadger:
		b, err := cache.OpenBadger(cache.BadgerConfig{
			Path:       cfg.BadgerPath,
			GCInterval: cfg.BadgerGCInterval,
		})
		if err != nil {
			return nil, err
		}
		return &cacheBackend{store: b, maintenance: b, closer: b}, nil

	case config.CacheBackendRedis:
		r, err := cache.DialRedis(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return &cacheBackend{store: r, health: r, closer: r}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func (c *cacheBackend) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
