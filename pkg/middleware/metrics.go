// Package middleware provides optional HTTP middleware for routed
// applications: Prometheus metrics and OpenTelemetry tracing.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arbor-web/arbor/pkg/router"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "arbor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "arbor",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Prometheus creates middleware that records request metrics per route
// pattern:
//
//   - <ns>_requests_total: counter by route and status code
//   - <ns>_request_duration_seconds: histogram by route
//
// Route labels use the matched pattern ("/users/{id}"), not the concrete
// URL, so dynamic segments do not explode label cardinality.
//
// Example:
//
//	app, err := arbor.New("./app",
//	    arbor.WithMiddleware(middleware.Prometheus(
//	        middleware.WithNamespace("myapp"),
//	    )),
//	)
//
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)
	requestsTotal := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "requests_total",
		Help:        "Total number of routed requests",
		ConstLabels: config.ConstLabels,
	}, []string{"route", "method", "status"})
	requestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "request_duration_seconds",
		Help:        "Request handling duration in seconds",
		ConstLabels: config.ConstLabels,
		Buckets:     config.Buckets,
	}, []string{"route", "method"})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			// The matched pattern is only known after routing.
			route := router.RoutePattern(r)
			if route == "" {
				route = "unmatched"
			}
			requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
			requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		})
	}
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.written {
		r.status = status
		r.written = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	r.written = true
	return r.ResponseWriter.Write(p)
}
