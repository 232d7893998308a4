package middleware

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arbor-web/arbor/pkg/router"
)

const defaultTracerName = "arbor"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "arbor").
	TracerName string

	// Filter determines which requests to trace. Return true to trace the
	// request. If nil, all requests are traced.
	Filter func(r *http.Request) bool

	// AttributeExtractor extracts custom attributes from the request,
	// called for each traced request.
	AttributeExtractor func(r *http.Request) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) { c.TracerName = name }
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(r *http.Request) bool) OTelOption {
	return func(c *OTelConfig) { c.Filter = filter }
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(r *http.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) { c.AttributeExtractor = extractor }
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{TracerName: defaultTracerName}
}

// OpenTelemetry creates middleware that opens a span per routed request,
// records the matched route pattern and response status, and marks 5xx
// responses as errored spans.
//
// The tracer comes from the global OpenTelemetry tracer provider; set it
// up in main() before serving:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) func(http.Handler) http.Handler {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Filter != nil && !config.Filter(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := config.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(r)...)
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			if route := router.RoutePattern(r); route != "" {
				span.SetName(r.Method + " " + route)
				attrs = append(attrs, attribute.String("http.route", route))
			}
			attrs = append(attrs, attribute.Int("http.status_code", rec.status))
			span.SetAttributes(attrs...)

			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", rec.status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}
