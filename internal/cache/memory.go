// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/partwise/internal/logging"
)

// Stats tracks store performance.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Keys        int64
	LastCleanup time.Time
}

// memoryEntry is one node of the recency list.
type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *memoryEntry
	next      *memoryEntry
}

// MemoryConfig configures a Memory store.
type MemoryConfig struct {
	// Capacity bounds the number of entries; the least recently used entry
	// is evicted beyond it. Default: 10000.
	Capacity int

	// CleanupInterval is how often Serve sweeps expired entries.
	// Default: 5m.
	CleanupInterval time.Duration

	// Now overrides the clock.
	Now func() time.Time
}

// Memory is a bounded in-process byte store with per-entry TTL.
//
// Expired entries are never returned: Get checks expiry lazily and Serve
// sweeps them periodically. At capacity the least recently used entry is
// evicted. All operations are O(1) except the sweep.
//
// Thread Safety: safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*memoryEntry

	// head.next is the most recently used, tail.prev the least.
	head *memoryEntry
	tail *memoryEntry

	now             func() time.Time
	cleanupInterval time.Duration
	stats           Stats
}

// NewMemory creates an empty store.
func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 10000
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := &Memory{
		capacity:        cfg.Capacity,
		items:           make(map[string]*memoryEntry, cfg.Capacity),
		head:            &memoryEntry{},
		tail:            &memoryEntry{},
		now:             cfg.Now,
		cleanupInterval: cfg.CleanupInterval,
	}
	m.head.next = m.tail
	m.tail.prev = m.head
	m.stats.LastCleanup = cfg.Now()
	return m
}

// Get returns a copy of the value stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.items[key]
	if !ok {
		m.stats.Misses++
		return nil, false, nil
	}
	if m.now().After(entry.expiresAt) {
		m.removeEntry(entry)
		m.stats.Misses++
		m.stats.Evictions++
		return nil, false, nil
	}

	m.moveToFront(entry)
	m.stats.Hits++
	return append([]byte(nil), entry.value...), true, nil
}

// Set stores a copy of value, replacing any existing entry.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt := m.now().Add(ttl)
	value = append([]byte(nil), value...)

	if entry, ok := m.items[key]; ok {
		entry.value = value
		entry.expiresAt = expiresAt
		m.moveToFront(entry)
		return nil
	}

	entry := &memoryEntry{key: key, value: value, expiresAt: expiresAt}
	m.addToFront(entry)
	m.items[key] = entry

	for len(m.items) > m.capacity {
		m.evictOldest()
	}
	return nil
}

// Delete removes a key. Deleting a missing key is a no-op.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.items[key]; ok {
		m.removeEntry(entry)
		m.stats.Evictions++
	}
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// CleanupExpired removes every expired entry and returns how many it removed.
func (m *Memory) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for entry := m.tail.prev; entry != m.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			m.removeEntry(entry)
			removed++
		}
		entry = prev
	}

	m.stats.Evictions += int64(removed)
	m.stats.LastCleanup = now
	return removed
}

// Stats returns a snapshot of the store statistics.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats
	s.Keys = int64(len(m.items))
	return s
}

// HitRate returns the hit rate as a percentage.
func (m *Memory) HitRate() float64 {
	s := m.Stats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Serve runs the expiry sweep until ctx is canceled. It implements
// suture.Service.
func (m *Memory) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := m.CleanupExpired(); removed > 0 {
				logging.Debug().Int("removed", removed).Msg("Swept expired cache entries")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (m *Memory) String() string {
	return "memory-cache-janitor"
}

// Internal list operations; the lock must be held.

func (m *Memory) addToFront(entry *memoryEntry) {
	entry.prev = m.head
	entry.next = m.head.next
	m.head.next.prev = entry
	m.head.next = entry
}

func (m *Memory) moveToFront(entry *memoryEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	m.addToFront(entry)
}

func (m *Memory) removeEntry(entry *memoryEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(m.items, entry.key)
}

func (m *Memory) evictOldest() {
	oldest := m.tail.prev
	if oldest == m.head {
		return
	}
	m.removeEntry(oldest)
	m.stats.Evictions++
}
