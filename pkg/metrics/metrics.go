// Package metrics defines the Prometheus collectors exported by the CRM
// service. Collectors are registered with the default registry on import and
// exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// HTTPRequestsTotal counts handled HTTP requests.
// Labels: method, route (gin full path, "unmatched" for 404s), status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// EntityWritesTotal counts successful writes per entity.
// Labels: entity ("client", "company", "user"), op ("create", "update", "delete").
var EntityWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entity_writes_total",
		Help:      "Total number of persisted entity writes.",
	},
	[]string{"entity", "op"},
)

// CacheLookupsTotal counts client cache lookups by result ("hit" or "miss").
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of client cache lookups.",
	},
	[]string{"result"},
)

// RecordWrite increments EntityWritesTotal.
func RecordWrite(entity, op string) {
	EntityWritesTotal.WithLabelValues(entity, op).Inc()
}
