package middleware

import (
	"net/http"
	"time"

	"github.com/sakif/event-planner/internal/metrics"
)

// Metrics returns a middleware that records each request's method, final
// status, and latency with the collector.
func Metrics(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			collector.RecordRequest(r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
