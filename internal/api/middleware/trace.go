package middleware

import (
	"log/slog"
	"net/http"

	"github.com/trekora/trek-api/internal/api/shared"
	"github.com/trekora/trek-api/internal/platform/logger"
)

// Trace attaches a trace ID and a request-scoped logger to the
// context. Apply early so all later handlers share the same trace ID.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := logger.FromContext(ctx).With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
