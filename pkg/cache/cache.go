// Package cache provides a content-addressed, bounded LRU cache for
// pipeline outputs. Keys are derived from content hashes so identical
// inputs hit the same entry across process restarts.
package cache

import (
	"sync"
	"time"

	"veridian-hq/saturn/pkg/telemetry/metrics"
)

// Config contains cache bounds.
type Config struct {
	// MaxEntries bounds the entry count (default 1024).
	MaxEntries int

	// MaxBytes bounds the total entry payload size (default 64 MB).
	MaxBytes int64

	// TTL is the entry lifetime. Expired entries are misses, purged
	// lazily on access (default 1h).
	TTL time.Duration

	// Metrics receives hit, miss, eviction, and entry-count updates
	// when set.
	Metrics *metrics.Metrics
}

// Default bounds.
const (
	DefaultMaxEntries = 1024
	DefaultMaxBytes   = 64 * 1024 * 1024
	DefaultTTL        = time.Hour
)

// Entry wraps a cached value with its bookkeeping.
type Entry[T any] struct {
	// Data is the cached value.
	Data T `json:"data"`

	// CreatedAt and ExpiresAt bound the entry's lifetime.
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`

	// HitCount counts reads since insertion.
	HitCount int `json:"hitCount"`

	// LastAccessedAt drives LRU eviction.
	LastAccessedAt time.Time `json:"lastAccessedAt"`

	// SizeBytes is the caller-declared payload size.
	SizeBytes int64 `json:"sizeBytes"`
}

// Stats are the incrementally maintained cache counters.
type Stats struct {
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	Evictions  int64   `json:"evictions"`
	Expiries   int64   `json:"expiries"`
	Entries    int     `json:"entries"`
	TotalBytes int64   `json:"totalBytes"`
	HitRate    float64 `json:"hitRate"`
}

// Cache is a bounded LRU-by-last-access store. One mutex covers both
// the entries and the statistics so eviction and counter updates are
// atomic with respect to Get and Set.
type Cache[T any] struct {
	mu         sync.Mutex
	entries    map[string]*Entry[T]
	maxEntries int
	maxBytes   int64
	ttl        time.Duration
	totalBytes int64
	stats      Stats
	metrics    *metrics.Metrics
}

// New creates a cache with the given bounds.
func New[T any](config *Config) *Cache[T] {
	maxEntries := DefaultMaxEntries
	maxBytes := int64(DefaultMaxBytes)
	ttl := DefaultTTL
	var m *metrics.Metrics
	if config != nil {
		if config.MaxEntries > 0 {
			maxEntries = config.MaxEntries
		}
		if config.MaxBytes > 0 {
			maxBytes = config.MaxBytes
		}
		if config.TTL > 0 {
			ttl = config.TTL
		}
		m = config.Metrics
	}
	return &Cache[T]{
		entries:    make(map[string]*Entry[T]),
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
		ttl:        ttl,
		metrics:    m,
	}
}

// Get returns the cached value for a key. An expired entry is a miss
// and is purged in the same critical section.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T

	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		c.metrics.ObserveCacheOperation("miss")
		c.updateHitRate()
		return zero, false
	}

	now := time.Now()
	if now.After(entry.ExpiresAt) {
		c.removeLocked(key)
		c.stats.Expiries++
		c.stats.Misses++
		c.metrics.ObserveCacheOperation("expiry")
		c.metrics.ObserveCacheOperation("miss")
		c.updateHitRate()
		return zero, false
	}

	entry.HitCount++
	entry.LastAccessedAt = now
	c.stats.Hits++
	c.metrics.ObserveCacheOperation("hit")
	c.updateHitRate()
	return entry.Data, true
}

// GetEntry returns the full entry for a key, for callers that need the
// bookkeeping (hit count, timestamps) alongside the value.
func (c *Cache[T]) GetEntry(key string) (*Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		c.metrics.ObserveCacheOperation("miss")
		c.updateHitRate()
		return nil, false
	}

	now := time.Now()
	if now.After(entry.ExpiresAt) {
		c.removeLocked(key)
		c.stats.Expiries++
		c.stats.Misses++
		c.metrics.ObserveCacheOperation("expiry")
		c.metrics.ObserveCacheOperation("miss")
		c.updateHitRate()
		return nil, false
	}

	entry.HitCount++
	entry.LastAccessedAt = now
	c.stats.Hits++
	c.metrics.ObserveCacheOperation("hit")
	c.updateHitRate()

	entryCopy := *entry
	return &entryCopy, true
}

// Set stores a value, evicting least-recently-accessed entries until
// both the entry-count and byte-size bounds hold.
func (c *Cache[T]) Set(key string, value T, sizeBytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// An entry larger than the byte ceiling can never fit; storing it
	// would flush the whole cache and still leave the bound violated.
	if sizeBytes > c.maxBytes {
		return
	}

	// Replacing an existing entry releases its size first.
	if existing, ok := c.entries[key]; ok {
		c.totalBytes -= existing.SizeBytes
		delete(c.entries, key)
	}

	for len(c.entries) >= c.maxEntries || c.totalBytes+sizeBytes > c.maxBytes {
		if !c.evictOldestLocked() {
			break
		}
	}

	now := time.Now()
	c.entries[key] = &Entry[T]{
		Data:           value,
		CreatedAt:      now,
		ExpiresAt:      now.Add(c.ttl),
		LastAccessedAt: now,
		SizeBytes:      sizeBytes,
	}
	c.totalBytes += sizeBytes
	c.stats.Entries = len(c.entries)
	c.stats.TotalBytes = c.totalBytes
	c.metrics.SetCacheEntries(len(c.entries))
}

// Delete removes an entry.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

// Clear removes every entry. Counters are preserved: clearing the data
// does not rewrite history.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry[T])
	c.totalBytes = 0
	c.stats.Entries = 0
	c.stats.TotalBytes = 0
	c.metrics.SetCacheEntries(0)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Len returns the current entry count.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldestLocked removes the least-recently-accessed entry. Must be
// called with the mutex held.
func (c *Cache[T]) evictOldestLocked() bool {
	if len(c.entries) == 0 {
		return false
	}

	var oldestKey string
	var oldestTime time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.LastAccessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastAccessedAt
			first = false
		}
	}

	c.removeLocked(oldestKey)
	c.stats.Evictions++
	c.metrics.ObserveCacheOperation("eviction")
	return true
}

// removeLocked deletes an entry and updates size accounting. Must be
// called with the mutex held.
func (c *Cache[T]) removeLocked(key string) {
	if entry, ok := c.entries[key]; ok {
		c.totalBytes -= entry.SizeBytes
		delete(c.entries, key)
		c.stats.Entries = len(c.entries)
		c.stats.TotalBytes = c.totalBytes
		c.metrics.SetCacheEntries(len(c.entries))
	}
}

// updateHitRate recomputes the running hit rate from the counters.
// Must be called with the mutex held.
func (c *Cache[T]) updateHitRate() {
	total := c.stats.Hits + c.stats.Misses
	if total > 0 {
		c.stats.HitRate = float64(c.stats.Hits) / float64(total)
	}
}
