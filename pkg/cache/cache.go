// Package cache provides in-process caching of byte payloads.
//
// Caches live only as long as the process that created them. A one-shot CLI
// run starts empty; a long-lived `depviz serve` process reuses dependency
// records across requests. Nothing is written to disk.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache stores opaque byte payloads under string keys.
//
// Implementations must be safe for concurrent use: the graph builder fetches
// the nodes of one BFS level in parallel.
type Cache interface {
	// Get returns the payload stored under key. The bool is false on a miss
	// or when the entry has expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means the entry does not expire
	// (it can still be evicted).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// keyType returns the namespace of key ("deps" for "deps:busybox-1.36.1-r29.apk")
// for observability hooks.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "default"
}
