// Package metrics provides the Prometheus registry reference and the metric
// catalogue of the employee service. Metrics are defined in their respective
// packages (client, cache, ratelimit, api) to keep them modular and avoid
// circular dependencies.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the source served at /metrics.
var Gatherer = prometheus.DefaultGatherer

// Catalogue lists every metric family the service exports.
var Catalogue = []string{
	// pkg/client
	"employee_upstream_requests_total",
	"employee_upstream_request_duration_seconds",
	"employee_upstream_errors_total",
	"employee_upstream_retries_total",
	"employee_upstream_retry_backoff_seconds",
	"employee_upstream_retry_exhausted_total",

	// pkg/ratelimit
	"employee_upstream_throttled_total",
	"employee_upstream_throttle_blocks_total",
	"employee_upstream_cooldown_seconds",

	// pkg/cache
	"employee_cache_hits_total",
	"employee_cache_misses_total",
	"employee_cache_evictions_total",
	"employee_cache_errors_total",
	"employee_cache_entries",

	// pkg/api
	"employee_http_requests_total",
	"employee_http_request_duration_seconds",
}

// Handler serves the registered metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - employee_upstream_requests_total{op, status} (Counter): Upstream calls by operation and HTTP status
//   - employee_upstream_request_duration_seconds{op} (Histogram): Upstream call duration by operation
//   - employee_upstream_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//
// Retry Metrics (pkg/client):
//   - employee_upstream_retries_total{error_class} (Counter): Retry attempts by error class
//   - employee_upstream_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - employee_upstream_retry_exhausted_total{error_class} (Counter): Calls that exhausted max retries
//
// Throttle Metrics (pkg/ratelimit):
//   - employee_upstream_throttled_total (Counter): 429 responses received
//   - employee_upstream_throttle_blocks_total (Counter): Calls blocked locally during a cooldown
//   - employee_upstream_cooldown_seconds (Gauge): Length of the most recent cooldown
//
// Cache Metrics (pkg/cache):
//   - employee_cache_hits_total{key} (Counter): Hits by key kind (all, id)
//   - employee_cache_misses_total{key} (Counter): Misses by key kind
//   - employee_cache_evictions_total{key} (Counter): Evictions by key kind (all, id, everything)
//   - employee_cache_errors_total{operation} (Counter): Store errors by operation
//   - employee_cache_entries{layer} (Gauge): Entries held by the memory store
//
// API Metrics (pkg/api):
//   - employee_http_requests_total{method, route, status} (Counter): Inbound requests
//   - employee_http_request_duration_seconds{method, route} (Histogram): Inbound request duration
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(employee_cache_hits_total[5m])) /
//   (sum(rate(employee_cache_hits_total[5m])) + sum(rate(employee_cache_misses_total[5m])))
//
//   # Upstream Error Rate
//   rate(employee_upstream_errors_total[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(employee_upstream_request_duration_seconds_bucket[5m]))
//
//   # Throttling
//   increase(employee_upstream_throttled_total[15m]) > 0
