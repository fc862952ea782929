package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Datastore Metrics
	DatastoreQueriesTotal  *prometheus.CounterVec
	DatastoreQueryDuration *prometheus.HistogramVec
	DatastoreCacheHits     *prometheus.CounterVec

	// Resolver Metrics
	ResolverCallsTotal   *prometheus.CounterVec
	ResolverCallDuration prometheus.Histogram

	// Application Metrics
	LookupsTotal     *prometheus.CounterVec
	LookupErrors     *prometheus.CounterVec
	RateLimitedTotal prometheus.Counter
}

// New creates all metrics and registers them with reg
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		// Datastore Metrics
		DatastoreQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datastore_queries_total",
				Help: "Total number of datastore queries",
			},
			[]string{"operation", "status"},
		),

		DatastoreQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datastore_query_duration_seconds",
				Help:    "Datastore query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		DatastoreCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datastore_cache_hits_total",
				Help: "Total number of cache hits vs misses",
			},
			[]string{"result"},
		),

		// Resolver Metrics
		ResolverCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resolver_calls_total",
				Help: "Total number of outbound geolocation calls",
			},
			[]string{"resolver", "result"},
		),

		ResolverCallDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "resolver_call_duration_seconds",
				Help:    "Outbound geolocation call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Application Metrics
		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ip_lookups_total",
				Help: "Total number of IP lookups by source",
			},
			[]string{"source"},
		),

		LookupErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ip_lookups_errors_total",
				Help: "Total number of IP lookup errors",
			},
			[]string{"error_type"},
		),

		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),
	}
}
