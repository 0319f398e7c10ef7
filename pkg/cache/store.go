package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is the storage contract of the cache. Implementations must be safe
// for concurrent use, and each operation must be atomic per key.
type Store interface {
	// Get returns the entry for key, or ErrCacheMiss if it is absent or expired.
	Get(ctx context.Context, key CacheKey) (*CacheEntry, error)

	// Set stores entry under key, replacing any previous entry.
	Set(ctx context.Context, key CacheKey, entry *CacheEntry) error

	// Delete removes the entry for key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key CacheKey) error

	// Clear removes every entry.
	Clear(ctx context.Context) error
}
