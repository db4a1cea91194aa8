// Package metrics provides the centralized Prometheus registry for the
// reporting toolset. All metrics are defined in their respective
// packages (client, cache, ratelimit) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the toolset.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - capi_rate_limit_requests_remaining (Gauge): Requests remaining in the current Cloud Controller rate limit window
//   - capi_rate_limit_blocks_total (Counter): Requests blocked because the remaining budget hit the critical threshold
//   - capi_rate_limit_throttles_total (Counter): Requests throttled because the remaining budget hit the warning threshold
//
// Cache Metrics (pkg/cache):
//   - capi_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - capi_cache_misses_total (Counter): Cache misses
//   - capi_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - capi_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - capi_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - capi_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - capi_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - capi_retries_total{error_class} (Counter): Retry attempts by error class
//   - capi_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - capi_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(capi_cache_hits_total[5m])) /
//   (sum(rate(capi_cache_hits_total[5m])) + sum(rate(capi_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(capi_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(capi_request_duration_seconds_bucket[5m]))
//
//   # Rate Limit Pressure
//   capi_rate_limit_requests_remaining < 100
