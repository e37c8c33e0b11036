package middlewarex

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx/reply"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
)

// Recovery turns a handler panic into the JSON error envelope the page
// scripts already know how to render. The panic value stays in the log.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			if rec := recover(); rec != nil {
				logger(ctx).Error(
					"panic in handler",
					slog.Any(logx.FieldError, rec),
					slog.String(logx.FieldStack, string(debug.Stack())),
				)

				reply.Panic(ctx, w)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
