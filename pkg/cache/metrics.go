package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Layer labels for the entries gauge.
const (
	LayerMemory = "memory"
	LayerRedis  = "redis"
)

var (
	// CacheHits tracks cache hits by key kind ("all", "id")
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "employee_cache_hits_total",
			Help: "Total number of employee cache hits",
		},
		[]string{"key"},
	)

	// CacheMisses tracks cache misses by key kind
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "employee_cache_misses_total",
			Help: "Total number of employee cache misses",
		},
		[]string{"key"},
	)

	// CacheEvictions tracks evictions triggered by writes or operators
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "employee_cache_evictions_total",
			Help: "Total number of employee cache evictions",
		},
		[]string{"key"}, // "all", "id", "everything"
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "employee_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "clear", "decode"
	)

	// CacheEntries tracks the number of stored entries by layer
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "employee_cache_entries",
			Help: "Current number of employee cache entries",
		},
		[]string{"layer"},
	)
)
