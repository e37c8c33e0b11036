package middlewarex

import (
	"log/slog"
	"net/http"

	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/contextx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
)

// Logger attaches a request-scoped logger to the context. Every log line
// below this middleware carries the trace id, URL, method and client IP.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		traceID, err := contextx.TraceIDFromContext(ctx)
		if err != nil {
			logger(ctx).Error("contextx.TraceIDFromContext", logx.Error(err))
		}

		ctx = contextx.WithLogger(
			ctx,
			logger(ctx).With(
				logx.Stringer(logx.FieldTraceID, traceID),
				logx.Stringer(logx.FieldURL, r.URL),
				slog.String(logx.FieldHTTPMethod, r.Method),
				slog.String(logx.FieldIP, clientIP(r)),
			),
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP prefers the X-Real-IP header set by the nginx front. Behind the
// proxy RemoteAddr is always the loopback.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	return r.RemoteAddr
}
