package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// statusWriter captures the status code written by a handler
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware records request counts and latencies. The path label is
// the registered route pattern, not the raw URL, to keep metric cardinality
// bounded; mux is consulted for the pattern lookup.
func HTTPMiddleware(mux *http.ServeMux) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(sw, r)

			_, pattern := mux.Handler(r)
			if pattern == "" {
				pattern = "unmatched"
			}
			ObserveHTTPRequest(r.Method, pattern, strconv.Itoa(sw.status), time.Since(start))
		})
	}
}
