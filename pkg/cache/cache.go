// Package cache stores merged networks and score reports between runs.
//
// Entries are opaque byte slices under string keys built by a [Keyer]. The
// CLI uses [FileCache] by default; [BadgerCache] embeds a key-value store for
// larger workloads, [RedisCache] shares entries between API instances, and
// [NullCache] disables caching.
//
//	c, err := cache.Open(ctx, cache.Config{Backend: cache.BackendFile, Dir: dir})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	key := cache.NewDefaultKeyer().MergeKey(inputHash)
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // use data
//	}
//
// Cache failures are never fatal to a pipeline run: callers treat errors as
// misses.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Entry lifetimes.
const (
	// TTLMerge applies to merged networks, which depend only on file contents.
	TTLMerge = 7 * 24 * time.Hour
	// TTLScore applies to score reports.
	TTLScore = 7 * 24 * time.Hour
)
