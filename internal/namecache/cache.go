// Package namecache stores resolved conversation display names for a bounded time.
package namecache

import (
	"context"
	"time"
)

// DefaultTTL is how long a resolved display name stays valid.
const DefaultTTL = 24 * time.Hour

// Cache maps a conversation id to its last resolved display name.
// Implementations treat entries older than their TTL as absent and must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, name string) error
}

// Sweeper is implemented by caches that need periodic eviction of expired entries.
type Sweeper interface {
	Sweep() int
}
