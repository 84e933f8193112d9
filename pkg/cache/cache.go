// Package cache stores encoded frames so repeated runs can skip rasterisation.
//
// Runs are deterministic: the same polygon, seed and styling always produce
// the same pixels for a given frame index. Frames are therefore addressed by
// a hash of every option that affects pixels plus the frame index and format
// (see [Keyer]). Three backends are provided:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry under the user cache directory
//   - [RedisCache]: a shared Redis instance, selected with a redis:// URL
//
// Cache errors never fail a run; callers treat them as misses.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the data for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Expiry for cached entries.
const (
	// TTLFrame applies to encoded frames. Frames are cheap to recompute
	// but large, so they do not live forever.
	TTLFrame = 7 * 24 * time.Hour

	// TTLPreview applies to frames rendered by the preview server.
	TTLPreview = 24 * time.Hour
)
