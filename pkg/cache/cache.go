// Package cache provides response cache backends for catalog lookups.
//
// Backends store opaque byte slices under string keys with an optional
// time-to-live. Four implementations are available:
//
//   - [MemoryCache]: process-local, the default; nothing outlives the run
//   - [FileCache]: one JSON file per entry under a directory
//   - [RedisCache]: shared cache for several machines or CI runners
//   - [NullCache]: caching disabled
//
// [Scoped] prefixes keys so several clients can share one backend.
//
// The package also carries the retry primitives used by the HTTP layer
// ([Retryable], [Backoff.Retry]) since retries and caching are applied
// together around every catalog request.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true on a hit. A miss, including an
	// expired entry, returns (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
