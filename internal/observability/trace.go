package observability

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/rparrett/synthlang-web/internal/requestctx"
)

var tracer = otel.Tracer("github.com/rparrett/synthlang-web/internal/observability")

var propagator = propagation.TraceContext{}

// Tracer returns the package tracer so handlers can open child spans.
func Tracer() trace.Tracer { return tracer }

// Trace extracts W3C trace context, starts a server span, and stores trace
// metadata on the request context.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, spanNameFromRequest(r), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		span.SetAttributes(standardSpanAttributes(r)...)

		sc := span.SpanContext()
		info := requestctx.TraceInfo{Sampled: sc.IsSampled()}
		if sc.HasTraceID() {
			info.TraceID = sc.TraceID().String()
		} else if remote := trace.SpanContextFromContext(ctx); remote.HasTraceID() {
			info.TraceID = remote.TraceID().String()
		}
		if sc.HasSpanID() {
			info.SpanID = sc.SpanID().String()
		}
		ctx = requestctx.WithTrace(ctx, info)
		propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func spanNameFromRequest(r *http.Request) string {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s %s", r.Method, path)
}

func standardSpanAttributes(r *http.Request) []attribute.KeyValue {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", r.Method),
		attribute.String("url.scheme", scheme),
		attribute.String("url.path", r.URL.Path),
	}
	if host := r.Host; host != "" {
		attrs = append(attrs, attribute.String("server.address", host))
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", ua))
	}
	return attrs
}
