// Package cache provides in-memory read-through caches for GitHub data
// with recent-history eviction.
package cache

import (
	"sync"
	"time"

	"github.com/spiffcs/codewatch/internal/log"
)

// Entry is a cached value with the time it was fetched.
type Entry[V any] struct {
	Key       string
	Value     V
	FetchedAt time.Time
}

// Stats contains cache statistics
type Stats struct {
	Size      int
	Capacity  int
	Hits      int
	Misses    int
	Stale     int // misses caused by an expired entry
	Evictions int
}

// Option configures an Entity cache.
type Option func(*options)

type options struct {
	maxAge time.Duration
	now    func() time.Time
	name   string
}

// WithMaxAge sets how long an entry stays fresh. Zero means entries never expire.
func WithMaxAge(d time.Duration) Option {
	return func(o *options) {
		o.maxAge = d
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithName labels the cache in log output.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Entity is a keyed cache bounded by a RecentHistory. Every method takes
// the same mutex, so callbacks from network goroutines and readers on
// other goroutines never observe a partially written entry.
type Entity[V any] struct {
	mu      sync.Mutex
	entries map[string]Entry[V]
	history *RecentHistory
	opts    options
	stats   Stats
}

// NewEntity creates a cache holding at most capacity entries.
func NewEntity[V any](capacity int, opts ...Option) *Entity[V] {
	o := options{now: time.Now, name: "cache"}
	for _, opt := range opts {
		opt(&o)
	}
	h := NewRecentHistory(capacity)
	return &Entity[V]{
		entries: make(map[string]Entry[V], h.Capacity()),
		history: h,
		opts:    o,
	}
}

// Get returns the fresh value for key. A hit touches the recent history;
// a miss or an expired entry has no side effects besides statistics.
func (c *Entity[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		log.Trace("cache miss", "cache", c.opts.name, "key", key)
		var zero V
		return zero, false
	}

	if c.expired(entry) {
		c.stats.Misses++
		c.stats.Stale++
		log.Debug("cache entry stale", "cache", c.opts.name, "key", key, "age", c.opts.now().Sub(entry.FetchedAt))
		var zero V
		return zero, false
	}

	c.stats.Hits++
	c.history.Touch(key)
	log.Debug("cache hit", "cache", c.opts.name, "key", key)
	return entry.Value, true
}

// Lookup returns the entry for key regardless of its age, without
// touching the history.
func (c *Entity[V]) Lookup(key string) (Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	return entry, ok
}

// Put stores value under key, replacing any previous value and timestamp.
// Inserting a new key past capacity evicts the least recently used key.
func (c *Entity[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[V]{Key: key, Value: value, FetchedAt: c.opts.now()}
	if evicted, ok := c.history.Touch(key); ok {
		delete(c.entries, evicted)
		c.stats.Evictions++
		log.Debug("cache eviction", "cache", c.opts.name, "evicted", evicted, "inserted", key)
	}
}

// Invalidate removes key and its history slot. Absent keys are a no-op.
func (c *Entity[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	c.history.Remove(key)
}

// Clear removes all entries.
func (c *Entity[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry[V], c.history.Capacity())
	c.history.Reset()
}

// Len returns the number of stored entries, fresh or not.
func (c *Entity[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns stored keys from least to most recently used.
func (c *Entity[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Keys()
}

// Stats returns a snapshot of cache statistics.
func (c *Entity[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = len(c.entries)
	s.Capacity = c.history.Capacity()
	return s
}

func (c *Entity[V]) expired(e Entry[V]) bool {
	if c.opts.maxAge <= 0 {
		return false
	}
	return c.opts.now().Sub(e.FetchedAt) > c.opts.maxAge
}
