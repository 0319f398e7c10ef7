package cache

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*CacheEntry),
	}
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or entry is expired.
func (s *MemoryStore) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	cacheKey := key.String()

	s.mu.RLock()
	entry, ok := s.entries[cacheKey]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}

	if entry.IsExpired() {
		s.mu.Lock()
		// Only drop the entry we saw; a concurrent Set may have replaced it.
		if current, ok := s.entries[cacheKey]; ok && current == entry {
			delete(s.entries, cacheKey)
			CacheEntries.WithLabelValues(LayerMemory).Set(float64(len(s.entries)))
		}
		s.mu.Unlock()
		return nil, ErrCacheMiss
	}

	return copyEntry(entry), nil
}

// Set stores a copy of entry under key.
func (s *MemoryStore) Set(ctx context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key.String()] = copyEntry(entry)
	CacheEntries.WithLabelValues(LayerMemory).Set(float64(len(s.entries)))
	return nil
}

// Delete removes a cache entry.
func (s *MemoryStore) Delete(ctx context.Context, key CacheKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key.String())
	CacheEntries.WithLabelValues(LayerMemory).Set(float64(len(s.entries)))
	return nil
}

// Clear removes every entry.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.entries)
	CacheEntries.WithLabelValues(LayerMemory).Set(0)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func copyEntry(e *CacheEntry) *CacheEntry {
	c := *e
	c.Data = append([]byte(nil), e.Data...)
	return &c
}
