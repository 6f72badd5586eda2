// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/partwise/internal/logging"
)

// BadgerConfig configures a Badger store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM.
	InMemory bool

	// GCInterval is how often Serve runs value log GC. Default: 10m.
	GCInterval time.Duration

	// GCRatio is the discard ratio passed to RunValueLogGC. Default: 0.5.
	GCRatio float64
}

// Badger is a persistent byte store backed by BadgerDB. Expiry uses
// Badger's native entry TTL.
type Badger struct {
	db  *badger.DB
	cfg BadgerConfig
}

// OpenBadger opens (or creates) the database.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	if cfg.GCRatio <= 0 || cfg.GCRatio >= 1 {
		cfg.GCRatio = 0.5
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger cache path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Badger cache opened")

	return &Badger{db: db, cfg: cfg}, nil
}

// Get returns the value stored under key.
func (b *Badger) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value with a TTL.
func (b *Badger) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

// RunGC reclaims value log space until nothing is left to rewrite.
func (b *Badger) RunGC() error {
	if b.cfg.InMemory {
		return nil
	}
	for {
		err := b.db.RunValueLogGC(b.cfg.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Serve runs periodic GC until ctx is canceled. It implements
// suture.Service.
func (b *Badger) Serve(ctx context.Context) error {
	ticker := time.NewTicker(b.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := b.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Badger cache GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (b *Badger) String() string {
	return "badger-cache-gc"
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}
