// Package cache provides a lock-free, xxhash-keyed cache of completed
// parses, so watch mode (spec.md's supplemented file-watching feature) can
// skip reparsing a flat file whose content hash hasn't changed since the
// last pass. Adapted from the teacher's sync.Map-based metrics cache,
// narrowed from its three-tier content/symbol/parser scheme down to the
// single content-keyed tier this domain needs.
package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/standardbeagle/flatintern/internal/matrix"
)

// Defaults mirror the teacher's cache constants, scaled to a single tier.
const (
	DefaultMaxEntries      = 256
	DefaultTTL             = 2 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// entry is one cached parse result.
type entry struct {
	Result   *matrix.Matrix
	CachedAt int64 // UnixNano, read/written atomically
}

// Config configures a Cache.
type Config struct {
	MaxEntries      int
	TTL             time.Duration
	AutoCleanup     bool
	CleanupInterval time.Duration
}

// DefaultConfig returns the teacher-style default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEntries:      DefaultMaxEntries,
		TTL:             DefaultTTL,
		AutoCleanup:     true,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Cache maps a source's path and content hash to its last parse result, so
// a watcher reparsing on every fsnotify event can skip unchanged files.
type Cache struct {
	entries sync.Map // map[key]*entry

	maxEntries int
	ttlNanos   int64

	count int64

	hits      int64
	misses    int64
	evictions int64

	sf singleflight.Group

	stopCleanup chan struct{}
}

// New creates a Cache per cfg. When cfg.AutoCleanup is set, a background
// goroutine periodically evicts expired entries; call Close to stop it.
func New(cfg Config) *Cache {
	c := &Cache{
		maxEntries: cfg.MaxEntries,
		ttlNanos:   cfg.TTL.Nanoseconds(),
	}
	if cfg.AutoCleanup {
		c.stopCleanup = make(chan struct{})
		go c.runCleanup(cfg.CleanupInterval)
	}
	return c
}

// key identifies a cached parse by path and content hash.
type key struct {
	path string
	hash uint64
}

// HashContent is the keying function watch mode uses: xxhash of the raw
// file bytes, cheap enough to run on every fsnotify event before deciding
// whether a reparse is needed at all.
func HashContent(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// Get returns the cached result for (path, contentHash) and true on a live
// hit, or nil and false on a miss or expired entry.
func (c *Cache) Get(path string, contentHash uint64) (*matrix.Matrix, bool) {
	k := key{path: path, hash: contentHash}
	v, ok := c.entries.Load(k)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	e := v.(*entry)
	if c.ttlNanos > 0 && time.Now().UnixNano()-atomic.LoadInt64(&e.CachedAt) > c.ttlNanos {
		c.entries.Delete(k)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	return e.Result, true
}

// Put stores a parse result for (path, contentHash), evicting the oldest
// entry first if the cache is at capacity.
func (c *Cache) Put(path string, contentHash uint64, result *matrix.Matrix) {
	k := key{path: path, hash: contentHash}
	e := &entry{Result: result, CachedAt: time.Now().UnixNano()}
	if _, loaded := c.entries.LoadOrStore(k, e); !loaded {
		if atomic.AddInt64(&c.count, 1) > int64(c.maxEntries) {
			c.evictOldest()
		}
		return
	}
	c.entries.Store(k, e)
}

// GetOrParse returns the cached result for (path, contentHash), or calls
// parse and caches the result on a miss. Concurrent callers racing on the
// same (path, contentHash) — a burst of MCP requests, or several fsnotify
// events settling at once — collapse onto a single parse via singleflight
// rather than each reparsing the file.
func (c *Cache) GetOrParse(path string, contentHash uint64, parse func() (*matrix.Matrix, error)) (*matrix.Matrix, bool, error) {
	if m, ok := c.Get(path, contentHash); ok {
		return m, true, nil
	}

	key := fmt.Sprintf("%s#%016x", path, contentHash)
	v, err, shared := c.sf.Do(key, func() (interface{}, error) {
		if m, ok := c.Get(path, contentHash); ok {
			return m, nil
		}
		m, err := parse()
		if err != nil {
			return nil, err
		}
		c.Put(path, contentHash, m)
		return m, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*matrix.Matrix), shared, nil
}

// Invalidate drops every cached entry for path, regardless of content
// hash — used when a watcher sees a file removed or renamed.
func (c *Cache) Invalidate(path string) {
	c.entries.Range(func(k, _ interface{}) bool {
		if kk, ok := k.(key); ok && kk.path == path {
			c.entries.Delete(k)
			atomic.AddInt64(&c.count, -1)
		}
		return true
	})
}

func (c *Cache) evictOldest() {
	var oldestKey interface{}
	oldestTime := time.Now().UnixNano()
	c.entries.Range(func(k, v interface{}) bool {
		e := v.(*entry)
		t := atomic.LoadInt64(&e.CachedAt)
		if t < oldestTime {
			oldestTime = t
			oldestKey = k
		}
		return true
	})
	if oldestKey != nil {
		c.entries.Delete(oldestKey)
		atomic.AddInt64(&c.count, -1)
		atomic.AddInt64(&c.evictions, 1)
	}
}

func (c *Cache) runCleanup(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) cleanupExpired() {
	if c.ttlNanos <= 0 {
		return
	}
	now := time.Now().UnixNano()
	c.entries.Range(func(k, v interface{}) bool {
		e := v.(*entry)
		if now-atomic.LoadInt64(&e.CachedAt) > c.ttlNanos {
			c.entries.Delete(k)
			atomic.AddInt64(&c.count, -1)
		}
		return true
	})
}

// Close stops the background cleanup goroutine, if one was started.
func (c *Cache) Close() {
	if c.stopCleanup != nil {
		close(c.stopCleanup)
	}
}

// Stats reports cumulative hit/miss/eviction counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int64
}

// Stats snapshots the cache's counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Evictions: atomic.LoadInt64(&c.evictions),
		Entries:   atomic.LoadInt64(&c.count),
	}
}
