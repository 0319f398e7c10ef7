package cache

import (
	"time"
)

// CacheEntry represents a cached payload.
type CacheEntry struct {
	// Data is the encoded payload
	Data []byte `json:"data"`

	// CachedAt is when the payload was stored
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes stale. The zero value never expires.
	Expires time.Time `json:"expires,omitzero"`
}

// NewEntry creates an entry for data. A ttl <= 0 never expires.
func NewEntry(data []byte, ttl time.Duration) *CacheEntry {
	now := time.Now()
	entry := &CacheEntry{
		Data:     data,
		CachedAt: now,
	}
	if ttl > 0 {
		entry.Expires = now.Add(ttl)
	}
	return entry
}

// IsExpired returns true if the cache entry has expired.
func (e *CacheEntry) IsExpired() bool {
	if e.Expires.IsZero() {
		return false
	}
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired, and -1 if the entry never expires.
func (e *CacheEntry) TTL() time.Duration {
	if e.Expires.IsZero() {
		return -1
	}
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
