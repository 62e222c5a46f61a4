package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/userauth/internal/logging"
)

// accessLog logs every request with method, path, status and duration at a
// level chosen by the status code. /health is skipped.
func accessLog(l logging.Logger) func(http.Handler) http.Handler {
	l = l.With("module", "http_access")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == healthPath {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if id := middleware.GetReqID(r.Context()); id != "" {
				args = append(args, "request_id", id)
			}

			switch {
			case status >= 500:
				l.Error(r.Context(), "request completed", args...)
			case status >= 400:
				l.Warn(r.Context(), "request completed", args...)
			default:
				l.Debug(r.Context(), "request completed", args...)
			}
		})
	}
}
