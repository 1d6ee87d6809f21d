package httpmetrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/inklet-app/inklet/backend/internal/observability/metrics"
)

type Collector struct {
	prefix string
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func New(prefix string) *Collector {
	return &Collector{
		prefix: prefix,
	}
}

func (c *Collector) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		method := r.Method
		path := NormalizePath(r.URL.Path)

		metrics.HTTPRequestsTotal.WithLabelValues(c.prefix, method, path).Inc()
		metrics.HTTPRequestsInFlight.WithLabelValues(c.prefix).Inc()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		statusClass := fmt.Sprintf("%dxx", rec.status/100)

		metrics.HTTPRequestsInFlight.WithLabelValues(c.prefix).Dec()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(c.prefix, method, path, statusClass).Observe(elapsed.Seconds())
	})
}
