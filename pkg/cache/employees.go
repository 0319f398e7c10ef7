package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Sternrassler/employee-api/pkg/employee"
)

// Upstream is the source of truth behind the cache. *client.Client
// satisfies it.
type Upstream interface {
	FetchAll(ctx context.Context) ([]employee.Employee, error)
	FetchByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error)
	Create(ctx context.Context, input employee.CreateInput) (*employee.Employee, error)
	Remove(ctx context.Context, id uuid.UUID) (string, error)
}

// Option configures an EmployeeCache.
type Option func(*EmployeeCache)

// WithTTL makes stored entries expire after ttl. The default is no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *EmployeeCache) {
		c.ttl = ttl
	}
}

// EmployeeCache is the read-through cache for employee records.
type EmployeeCache struct {
	upstream Upstream
	store    Store
	ttl      time.Duration
	logger   zerolog.Logger

	flights singleflight.Group

	mu          sync.Mutex
	epoch       uint64
	generations map[CacheKey]uint64
}

// NewEmployeeCache creates an employee cache over store, loading misses
// from upstream.
func NewEmployeeCache(upstream Upstream, store Store, logger zerolog.Logger, opts ...Option) *EmployeeCache {
	if upstream == nil {
		panic("upstream cannot be nil")
	}
	if store == nil {
		panic("cache store cannot be nil")
	}

	c := &EmployeeCache{
		upstream:    upstream,
		store:       store,
		logger:      logger.With().Str("component", "employee-cache").Logger(),
		generations: make(map[CacheKey]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAll returns every employee, from cache when possible.
func (c *EmployeeCache) GetAll(ctx context.Context) ([]employee.Employee, error) {
	data, err := c.load(ctx, AllEmployeesKey(), func(ctx context.Context) (any, error) {
		return c.upstream.FetchAll(ctx)
	})
	if err != nil {
		return nil, err
	}

	var employees []employee.Employee
	if err := json.Unmarshal(data, &employees); err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return employees, nil
}

// GetByID returns one employee, from cache when possible. Not-found results
// are returned as the upstream error and never cached.
func (c *EmployeeCache) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	data, err := c.load(ctx, EmployeeKey(id), func(ctx context.Context) (any, error) {
		return c.upstream.FetchByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	var e employee.Employee
	if err := json.Unmarshal(data, &e); err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return &e, nil
}

// CreateAndInvalidate creates an employee upstream and, on success, evicts
// the full list so the next GetAll reflects the new record.
func (c *EmployeeCache) CreateAndInvalidate(ctx context.Context, input employee.CreateInput) (*employee.Employee, error) {
	created, err := c.upstream.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	c.evict(ctx, AllEmployeesKey())
	return created, nil
}

// RemoveAndInvalidate deletes an employee upstream and, on success, evicts
// the full list and the record's own entry. The existence check inside
// Remove always goes upstream.
func (c *EmployeeCache) RemoveAndInvalidate(ctx context.Context, id uuid.UUID) (string, error) {
	name, err := c.upstream.Remove(ctx, id)
	if err != nil {
		return "", err
	}

	c.evict(ctx, AllEmployeesKey())
	c.evict(ctx, EmployeeKey(id))
	return name, nil
}

// Invalidate drops every cached entry.
func (c *EmployeeCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		c.logger.Warn().Err(err).Msg("Failed to clear cache store")
		return fmt.Errorf("clear cache: %w", err)
	}

	CacheEvictions.WithLabelValues("everything").Inc()
	c.logger.Info().Msg("Cache invalidated")
	return nil
}

// load returns the encoded payload for key, calling fetch on a miss.
// Concurrent misses within one generation share a single fetch.
func (c *EmployeeCache) load(ctx context.Context, key CacheKey, fetch func(context.Context) (any, error)) ([]byte, error) {
	entry, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		CacheHits.WithLabelValues(key.Label()).Inc()
		c.logger.Debug().Str("key", key.String()).Msg("Cache hit")
		return entry.Data, nil
	case errors.Is(err, ErrCacheMiss):
		CacheMisses.WithLabelValues(key.Label()).Inc()
		c.logger.Debug().Str("key", key.String()).Msg("Cache miss")
	default:
		CacheMisses.WithLabelValues(key.Label()).Inc()
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache read failed, loading from upstream")
	}

	gen := c.generation(key)
	flight := key.String() + "@" + strconv.FormatUint(gen, 10)

	// The shared fetch must outlive any single caller giving up.
	fetchCtx := context.WithoutCancel(ctx)

	ch := c.flights.DoChan(flight, func() (any, error) {
		value, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}

		c.storeIfCurrent(fetchCtx, key, gen, data)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// storeIfCurrent stores data unless key was evicted since gen was read. The
// store call runs outside the lock; an eviction that lands during it is
// caught by the recheck and the entry is dropped again.
func (c *EmployeeCache) storeIfCurrent(ctx context.Context, key CacheKey, gen uint64, data []byte) {
	if c.generation(key) != gen {
		c.logger.Debug().Str("key", key.String()).Msg("Key evicted during fetch, result not cached")
		return
	}

	if err := c.store.Set(ctx, key, NewEntry(data, c.ttl)); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to store cache entry")
		return
	}

	if c.generation(key) == gen {
		return
	}
	c.logger.Debug().Str("key", key.String()).Msg("Key evicted while storing, dropping entry")
	if err := c.store.Delete(ctx, key); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to drop stale cache entry")
	}
}

// generation changes whenever key is evicted, individually or by Invalidate.
func (c *EmployeeCache) generation(key CacheKey) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch + c.generations[key]
}

// evict bumps the key's generation and removes its entry. A failing store
// is logged; the write it follows has already succeeded.
func (c *EmployeeCache) evict(ctx context.Context, key CacheKey) {
	c.mu.Lock()
	c.generations[key]++
	c.mu.Unlock()

	CacheEvictions.WithLabelValues(key.Label()).Inc()

	if err := c.store.Delete(ctx, key); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to evict cache entry")
		return
	}
	c.logger.Debug().Str("key", key.String()).Msg("Cache entry evicted")
}
