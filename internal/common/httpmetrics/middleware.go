package httpmetrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/myhoard/backend/internal/observability/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		method := r.Method
		path := NormalizePath(r.URL.Path)

		metrics.APIRequestsTotal.WithLabelValues(method, path).Inc()
		metrics.APIRequestsInFlight.Inc()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		statusClass := fmt.Sprintf("%dxx", rec.status/100)

		metrics.APIRequestsInFlight.Dec()
		metrics.APIRequestDurationSeconds.WithLabelValues(method, path, statusClass).Observe(elapsed.Seconds())
	})
}
