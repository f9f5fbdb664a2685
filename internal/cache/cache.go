// Package cache provides a content-addressable store for OCR text with
// TTL expiry, hit/miss/eviction statistics, and a background sweep that
// relieves process memory pressure.
package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// entry is a single cached OCR text value.
type entry struct {
	Key       string
	Value     string
	ExpiresAt time.Time
}

// Statistics is a point-in-time snapshot of cache counters. Counters are
// monotonically non-decreasing between resets.
type Statistics struct {
	Hits           uint64 `json:"hits"`
	Misses         uint64 `json:"misses"`
	Errors         uint64 `json:"errors"`
	Evictions      uint64 `json:"evictions"`
	MemoryWarnings uint64 `json:"memory_warnings"`
	KeyCount       int    `json:"key_count"`
	ValueBytes     int64  `json:"value_bytes"`
}

// Config holds cache limits. CheckInterval <= 0 disables the background
// memory sweep (test mode).
type Config struct {
	MaxEntries    int
	DefaultTTL    time.Duration
	CheckInterval time.Duration
	Memory        Limits
}

// Cache is safe for concurrent use. Each instance owns its own store and
// sweep goroutine; multiple independent instances can coexist.
type Cache struct {
	cfg    Config
	logger *slog.Logger

	mu         sync.Mutex
	entries    map[string]*entry
	order      []string // insertion order, oldest first
	valueBytes int64

	hits        atomic.Uint64
	misses      atomic.Uint64
	errs        atomic.Uint64
	evictions   atomic.Uint64
	memWarnings atomic.Uint64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates a cache and, unless CheckInterval is disabled, starts the
// background memory sweep. Call Close to stop it.
func New(cfg Config, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = time.Hour
	}
	if cfg.Memory == (Limits{}) {
		cfg.Memory = Limits{Warn: 256 << 20, Cleanup: 384 << 20, Max: 512 << 20}
	}

	c := &Cache{
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if cfg.CheckInterval > 0 {
		go c.sweepLoop()
	} else {
		close(c.done)
	}
	return c
}

// Get returns the cached value for key. Expired entries are treated as
// absent and lazily removed.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && time.Now().After(e.ExpiresAt) {
		c.removeLocked(key)
		ok = false
	}
	var value string
	if ok {
		value = e.Value
	}
	c.mu.Unlock()

	if ok {
		c.hits.Add(1)
		return value, true
	}
	c.misses.Add(1)
	return "", false
}

// Set inserts or overwrites a value (last-write-wins). A zero ttl uses the
// configured default. It returns false, without failing, when the store is
// at capacity and the key is new.
func (c *Cache) Set(key, value string, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}
	expires := time.Now().Add(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.valueBytes += int64(len(value)) - int64(len(e.Value))
		e.Value = value
		e.ExpiresAt = expires
		return true
	}
	if len(c.entries) >= c.cfg.MaxEntries {
		c.errs.Add(1)
		c.logger.Warn("cache.set.rejected", "key", key, "max_entries", c.cfg.MaxEntries)
		return false
	}
	c.entries[key] = &entry{Key: key, Value: value, ExpiresAt: expires}
	c.order = append(c.order, key)
	c.valueBytes += int64(len(value))
	return true
}

// Delete removes a single entry if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	c.removeLocked(key)
	c.mu.Unlock()
}

// Stats returns a snapshot of the cache counters and live sizes.
func (c *Cache) Stats() Statistics {
	c.mu.Lock()
	keyCount := len(c.entries)
	valueBytes := c.valueBytes
	c.mu.Unlock()

	return Statistics{
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
		Errors:         c.errs.Load(),
		Evictions:      c.evictions.Load(),
		MemoryWarnings: c.memWarnings.Load(),
		KeyCount:       keyCount,
		ValueBytes:     valueBytes,
	}
}

// Clear empties all entries and resets every counter to zero.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.order = nil
	c.valueBytes = 0
	c.mu.Unlock()

	c.hits.Store(0)
	c.misses.Store(0)
	c.errs.Store(0)
	c.evictions.Store(0)
	c.memWarnings.Store(0)
}

// ForceCleanup removes floor(keyCount * percent / 100) entries, oldest
// inserted first, and returns the number removed. A percent outside 0-100
// is clamped. An empty cache removes nothing.
func (c *Cache) ForceCleanup(percent int) int {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	c.mu.Lock()
	n := len(c.entries) * percent / 100
	for i := 0; i < n; i++ {
		c.removeLocked(c.order[0])
	}
	c.mu.Unlock()

	if n > 0 {
		c.evictions.Add(uint64(n))
	}
	return n
}

// Close stops the background sweep. Safe to call multiple times.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

// removeLocked deletes key from the map, the insertion-order list, and the
// byte accounting. Caller holds c.mu.
func (c *Cache) removeLocked(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	c.valueBytes -= int64(len(e.Value))
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// sweepLoop periodically checks heap pressure. Above the cleanup threshold
// it evicts roughly half of the current entries; above only the warning
// threshold it records a warning without evicting.
func (c *Cache) sweepLoop() {
	defer close(c.done)
	ticker := time.NewTicker(c.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweepOnce()
		}
	}
}

func (c *Cache) sweepOnce() {
	st := c.Memory()
	switch {
	case st.HeapUsed > c.cfg.Memory.Cleanup:
		removed := c.ForceCleanup(50)
		c.logger.Warn("cache.sweep.evicted",
			"heap_used", st.HeapUsed,
			"cleanup_threshold", c.cfg.Memory.Cleanup,
			"removed", removed,
		)
	case st.HeapUsed > c.cfg.Memory.Warn:
		c.memWarnings.Add(1)
		c.logger.Warn("cache.sweep.memory_warning",
			"heap_used", st.HeapUsed,
			"warn_threshold", c.cfg.Memory.Warn,
		)
	}
}
