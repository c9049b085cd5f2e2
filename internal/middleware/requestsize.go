package middleware

import (
	"net/http"
)

const (
	// MaxRequestBodySize caps request bodies; draft edits carry full SOP
	// documents so the limit is generous
	MaxRequestBodySize = 1 << 20 // 1 MiB
)

// RequestSize limits the size of request bodies
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = MaxRequestBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
