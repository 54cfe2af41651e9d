// Package atlascache provides a keyed cache of atlas placements for
// downstream consumers such as glyph caches. The cache implements
// atlas.PlotEvictionCallback: register it with the atlas and every entry
// minted against an evicted plot generation is dropped automatically,
// without scanning on the lookup path.
package atlascache

import (
	"hash/fnv"
	"sync"

	"github.com/gogpu/atlas"
)

// Default configuration constants.
const (
	// DefaultShardCount is the number of shards for reduced lock
	// contention. Must be a power of 2 for fast modulo via bitwise AND.
	DefaultShardCount = 16
)

// Hasher computes a hash for a key, used for shard selection.
type Hasher[K comparable] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Uint64Hasher returns the key itself as the hash.
func Uint64Hasher(u uint64) uint64 { return u }

// Cache maps keys to atlas locators. Unlike the single-threaded atlas
// core, the cache is safe for concurrent use: placements are typically
// consumed by code far from the thread that owns the atlas.
type Cache[K comparable] struct {
	shards [DefaultShardCount]shard[K]
	hasher Hasher[K]
}

type shard[K comparable] struct {
	mu      sync.RWMutex
	entries map[K]atlas.AtlasLocator
}

// New creates a cache using hasher for shard selection.
func New[K comparable](hasher Hasher[K]) *Cache[K] {
	if hasher == nil {
		panic("atlascache: nil hasher")
	}
	c := &Cache[K]{hasher: hasher}
	for i := range c.shards {
		c.shards[i].entries = make(map[K]atlas.AtlasLocator)
	}
	return c
}

func (c *Cache[K]) shardFor(key K) *shard[K] {
	return &c.shards[c.hasher(key)&(DefaultShardCount-1)]
}

// Get returns the locator stored under key. Callers should still verify
// liveness with Atlas.HasLocator before sampling from it: the entry may
// have gone stale between eviction and notification on another cache.
func (c *Cache[K]) Get(key K) (atlas.AtlasLocator, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.entries[key]
	return loc, ok
}

// Set stores a locator under key, replacing any previous entry.
func (c *Cache[K]) Set(key K, loc atlas.AtlasLocator) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = loc
}

// Remove deletes the entry under key, reporting whether it existed.
func (c *Cache[K]) Remove(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok
}

// Len returns the number of cached entries.
func (c *Cache[K]) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Clear removes all entries.
func (c *Cache[K]) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		clear(s.entries)
		s.mu.Unlock()
	}
}

// Evict drops every entry minted against the evicted plot generation.
// It implements atlas.PlotEvictionCallback; the locator is the plot's
// pre-reset locator, so equality is the exact staleness condition.
func (c *Cache[K]) Evict(loc atlas.PlotLocator) {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for key, entry := range s.entries {
			if entry.PlotLocator() == loc {
				delete(s.entries, key)
			}
		}
		s.mu.Unlock()
	}
}
