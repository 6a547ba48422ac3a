// Package cache holds time-stamped scan results. Entries expire lazily on
// read, survive as stale values until a periodic sweep removes them, and
// catalog-wide rebuilds are rate limited by a scan cooldown.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Cache configuration defaults
const (
	DefaultTTL        = 30 * time.Second
	DefaultCooldown   = 5 * time.Second
	DefaultStaleAfter = 5 * time.Minute
)

// Clock returns the current time.
type Clock func() time.Time

// Entry is a stored value. Entries are replaced, never modified.
type Entry struct {
	Key      string
	Value    any
	StoredAt time.Time
}

// Config sets the cache timings. Zero values take the defaults.
type Config struct {
	TTL        time.Duration
	Cooldown   time.Duration
	StaleAfter time.Duration
}

// Stats is a point-in-time view of the cache counters
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// Cache is safe for concurrent use. Concurrent writers to one key race and
// the last write wins.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]Entry
	lastScan map[string]time.Time

	ttl        time.Duration
	cooldown   time.Duration
	staleAfter time.Duration
	now        Clock

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(clock Clock) Option {
	return func(c *Cache) { c.now = clock }
}

// New creates a cache.
func New(cfg Config, opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]Entry),
		lastScan:   make(map[string]time.Time),
		ttl:        orDefault(cfg.TTL, DefaultTTL),
		cooldown:   orDefault(cfg.Cooldown, DefaultCooldown),
		staleAfter: orDefault(cfg.StaleAfter, DefaultStaleAfter),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Get returns the value stored under key while it is fresh: stored less
// than the TTL ago.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()

	if !ok || c.now().Sub(e.StoredAt) >= c.ttl {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.Value, true
}

// Stale returns the value stored under key regardless of age.
func (c *Cache) Stale(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.Value, ok
}

// Set stores value under key, replacing any previous entry.
func (c *Cache) Set(key string, value any) {
	now := c.now()
	c.mu.Lock()
	c.entries[key] = Entry{Key: key, Value: value, StoredAt: now}
	c.mu.Unlock()
}

// InvalidateAll removes every entry. A Fetch inside the cooldown then
// finds no stale value and recomputes.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes entries stored longer ago than the staleness bound and
// returns how many were removed.
func (c *Cache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.StoredAt) >= c.staleAfter {
			delete(c.entries, k)
			removed++
		}
	}
	for k, t := range c.lastScan {
		if now.Sub(t) >= c.staleAfter {
			delete(c.lastScan, k)
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (c *Cache) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.staleAfter
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// InCooldown reports whether key was scanned less than the cooldown ago.
func (c *Cache) InCooldown(key string) bool {
	c.mu.Lock()
	t, ok := c.lastScan[key]
	c.mu.Unlock()
	return ok && c.now().Sub(t) < c.cooldown
}

// MarkScanned records that key is being recomputed now.
func (c *Cache) MarkScanned(key string) {
	now := c.now()
	c.mu.Lock()
	c.lastScan[key] = now
	c.mu.Unlock()
}

// Stats returns the hit and miss counters of Get.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: c.Len()}
}

// Fetch returns the fresh value under key. Otherwise, when key was
// rebuilt within the cooldown and a value that expired by TTL is still
// stored, that value is returned. Otherwise compute runs and its result is stored. Results
// of a cancelled computation are not stored.
func Fetch[T any](ctx context.Context, c *Cache, key string, compute func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	if c.InCooldown(key) {
		if v, ok := c.Stale(key); ok {
			if t, ok := v.(T); ok {
				return t, nil
			}
		}
	}

	c.MarkScanned(key)
	v, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if ctx.Err() != nil {
		return v, nil
	}
	c.Set(key, v)
	return v, nil
}
