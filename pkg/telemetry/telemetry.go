// Package telemetry provides low-overhead request timing. Every request
// feeds the latency histogram; only slow requests are logged.
package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"paperguard/pkg/logger"
	"paperguard/pkg/metrics"
)

const slowThreshold = 200 * time.Millisecond

// statusWriter captures the response status for after-the-fact recording.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware wraps a handler with latency measurement.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		elapsed := time.Since(start)

		metrics.HTTPDuration.WithLabelValues(r.Method, statusClass(sw.status)).Observe(elapsed.Seconds())
		if elapsed >= slowThreshold {
			logger.Warn("slow_request",
				"method", r.Method, "path", r.URL.Path,
				"status", sw.status, "duration_ms", elapsed.Milliseconds())
		}
	})
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
