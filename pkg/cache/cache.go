// Package cache stores encoded analysis results keyed by document content.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI)
//   - [RedisCache]: a shared Redis instance (server)
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// # Keys
//
// Keys are built by a [Keyer] from the sha256 [Hash] of the raw document plus
// the options that change the result, so the same bytes analysed with a
// different start scene never collide:
//
//	key := cache.NewDefaultKeyer().ReportKey(cache.Hash(doc), cache.ReportKeyOpts{Start: "lobby"})
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
