// Package cache provides the read-through cache in front of the upstream
// employee server.
//
// Storage is pluggable through the Store interface. MemoryStore keeps
// entries in process memory and is the default; RedisStore keeps them in
// Redis. Entries hold encoded bytes, so every read decodes a fresh value and
// callers can never mutate what is cached.
//
// EmployeeCache wraps an Upstream (satisfied by *client.Client) and a Store:
//
//   - reads are served from the store and fall back to upstream on a miss
//   - successful reads are stored, failures are never stored
//   - a create evicts the "all employees" entry
//   - a delete evicts the "all employees" entry and the deleted record's entry
//
// # Basic Usage
//
//	upstream, _ := client.New(client.DefaultConfig("http://localhost:8112/api/v1/employee"))
//	employees := cache.NewEmployeeCache(upstream, cache.NewMemoryStore(), logger)
//
//	all, err := employees.GetAll(ctx)
//	one, err := employees.GetByID(ctx, id)
//
// # Redis
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	employees := cache.NewEmployeeCache(upstream, cache.NewRedisStore(rdb, ""), logger)
//
// # Concurrency
//
// Concurrent misses for one key share a single upstream call. Every key
// carries a generation that eviction bumps; a fetch that began before an
// eviction does not store its result.
//
// # Metrics
//
//   - employee_cache_hits_total{key}
//   - employee_cache_misses_total{key}
//   - employee_cache_evictions_total{key}
//   - employee_cache_errors_total{operation}
//   - employee_cache_entries{layer}
package cache
