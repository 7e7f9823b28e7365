package middleware

import (
	"net/http"

	"github.com/kbukum/whisperbot/util"
)

const defaultMaxBodySize = 25 * 1024 * 1024

// BodySizeLimit restricts the request body to maxSize (e.g. "25MB").
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
