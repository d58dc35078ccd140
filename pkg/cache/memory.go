// Package cache provides a small in-memory TTL cache with counters.
package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNotFound is returned for missing or expired entries.
var ErrNotFound = errors.New("cache entry not found")

type Config struct {
	TTL     time.Duration
	MaxSize int
}

// Stats are simple counters for cache behavior.
// These are intended for diagnostics and monitoring.
type Stats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// Memory is an in-memory TTL cache for values of type V.
type Memory[V any] struct {
	entries map[string]*record[V]
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type record[V any] struct {
	value    V
	cachedAt time.Time
}

func New[V any](c Config) *Memory[V] {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}

	return &Memory[V]{
		entries: make(map[string]*record[V]),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
	}
}

func (c *Memory[V]) Get(key string) (V, error) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, exists := c.entries[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return zero, ErrNotFound
	}

	if time.Since(rec.cachedAt) > c.ttl {
		// expired
		delete(c.entries, key)
		atomic.AddInt64(&c.misses, 1)
		return zero, ErrNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	return rec.value, nil
}

func (c *Memory[V]) Set(key string, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple eviction if full
	if len(c.entries) >= c.maxSize {
		for k := range c.entries {
			delete(c.entries, k)
			atomic.AddInt64(&c.evictions, 1)
			break
		}
	}

	c.entries[key] = &record[V]{
		value:    value,
		cachedAt: time.Now(),
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

func (c *Memory[V]) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.entries[key]; existed {
		delete(c.entries, key)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

func (c *Memory[V]) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*record[V])
	return nil
}

func (c *Memory[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Memory[V]) Stats() Stats {
	return Stats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
