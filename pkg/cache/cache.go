// Package cache stores derived bytes under content-addressed keys.
//
// The render pipeline is pure, so the only thing worth caching is expensive
// raster work: the blurred backdrop of a glass effect. Keys are derived from
// every input that affects the bytes (see [Keyer]), which means a cache hit
// can never change output.
//
// Three backends are provided:
//
//   - [FileCache] for CLI use, one JSON entry per key under a directory
//   - [RedisCache] for a cache shared between machines
//   - [NullCache] when caching is disabled
package cache

import (
	"context"
	"time"
)

// Common TTLs.
const (
	// EffectTTL is how long a blurred raster stays cached.
	EffectTTL = 24 * time.Hour

	// ArtifactTTL is how long a rendered sink artifact stays cached.
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte store with optional expiry. Implementations must be safe
// for concurrent use. A miss is (nil, false, nil), never an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
