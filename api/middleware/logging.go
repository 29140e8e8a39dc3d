package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	"github.com/hostelgrievance/grievance-backend/pkg/logger"
)

const ctxTrace contextKey = "request_trace"

// requestTrace is shared by pointer down the chain so Auth, which runs after
// Logging, can attach the actor to the completion line.
type requestTrace struct {
	userID string
	role   enums.Role
}

func traceActor(ctx context.Context, userID string, role enums.Role) {
	if t, ok := ctx.Value(ctxTrace).(*requestTrace); ok && t != nil {
		t.userID = userID
		t.role = role
	}
}

// quietPrefixes are polled by health checks and scrapers and only logged on failure.
var quietPrefixes = []string{"/health/", "/metrics"}

// Logging writes one line per request once it completes. 5xx responses log
// at error level and 4xx at warn.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			trace := &requestTrace{}
			ctx := context.WithValue(r.Context(), ctxTrace, trace)
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r.WithContext(ctx))

			status := defaultStatus(rec.status)
			if status < http.StatusBadRequest && isQuiet(r.URL.Path) {
				return
			}
			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				fields["route"] = rctx.RoutePattern()
			}
			if trace.userID != "" {
				fields["user_id"] = trace.userID
				fields["actor_role"] = string(trace.role)
			}
			ctx = logg.WithFields(ctx, fields)

			switch {
			case status >= http.StatusInternalServerError:
				logg.Error(ctx, "request.complete", nil)
			case status >= http.StatusBadRequest:
				logg.Warn(ctx, "request.complete")
			default:
				logg.Info(ctx, "request.complete")
			}
		})
	}
}

func isQuiet(path string) bool {
	for _, prefix := range quietPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
