package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/whisperbot/logger"
)

// Recovery recovers from handler panics, logs the stack and answers 500.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					"path", r.URL.Path,
					"method", r.Method,
				))
				writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
