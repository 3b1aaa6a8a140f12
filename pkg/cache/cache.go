// Package cache stores computed layouts and rendered artifacts.
//
// A layout is a pure function of its inputs (the normalized paths, the
// expansion set and the spacing constants), so every cache key is derived
// from a hash of those inputs and entries never need invalidation beyond
// their TTL.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under the XDG cache directory (CLI)
//   - [RedisCache]: shared entries for the HTTP service
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are built by a [Keyer]. [DefaultKeyer] hashes the key inputs with
// SHA-256; [ScopedKeyer] prefixes every key for namespace isolation when a
// Redis instance is shared.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A zero ttl in Set stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
