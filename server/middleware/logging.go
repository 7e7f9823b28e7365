package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/whisperbot/logger"
)

// quietPaths are probed constantly and not logged.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/livez":   true,
}

// RequestLogger logs every request with method, path, status and duration.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields["request_id"] = id
			}
			switch {
			case sw.status >= 500:
				log.Error("request completed", fields)
			case sw.status >= 400:
				log.Warn("request completed", fields)
			default:
				log.Debug("request completed", fields)
			}
		})
	}
}
