package httputil

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cwrk-planet/chat-service/pkg/httputil"

// MiddlewareTracing открывает span на запрос; trace_id/span_id попадают в логи через logger.FromCtx.
// Без зарегистрированного провайдера otel span — no-op.
func MiddlewareTracing(next http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			))
		defer span.End()

		if reqID, ok := FromContext(ctx); ok {
			span.SetAttributes(attribute.String("request.id", reqID))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
