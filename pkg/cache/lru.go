package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Dima09182/depviz/pkg/observability"
)

// DefaultLRUSize is the number of entries an [LRUCache] keeps when no size is given.
const DefaultLRUSize = 4096

// LRUCache is a bounded in-memory cache with per-entry expiration.
// The least recently used entry is evicted once the cache is full.
type LRUCache struct {
	mu      sync.Mutex // orders expiry checks against writes
	entries *lru.Cache[string, lruEntry]
	now     func() time.Time
}

type lruEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewLRUCache creates an in-memory cache holding at most size entries.
// A size <= 0 selects [DefaultLRUSize].
func NewLRUCache(size int) (Cache, error) {
	if size <= 0 {
		size = DefaultLRUSize
	}
	entries, err := lru.New[string, lruEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{entries: entries, now: time.Now}, nil
}

// Get retrieves a value from the cache. Expired entries are removed and
// reported as a miss.
func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	e, ok := c.entries.Get(key)
	if ok && !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.entries.Remove(key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType(key))
	return e.data, true, nil
}

// Set stores a value in the cache.
func (c *LRUCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := lruEntry{data: data}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries.Add(key, e)
	c.mu.Unlock()
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// Delete removes a value from the cache.
func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	c.entries.Remove(key)
	c.mu.Unlock()
	return nil
}

// Close drops all entries.
func (c *LRUCache) Close() error {
	c.entries.Purge()
	return nil
}

// Len returns the number of entries currently held, including expired
// entries that have not been looked up since they expired.
func (c *LRUCache) Len() int {
	return c.entries.Len()
}

// Ensure LRUCache implements Cache.
var _ Cache = (*LRUCache)(nil)
