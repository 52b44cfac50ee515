package gateway

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "crmd",
	Subsystem: "gateway",
	Name:      "graphql_requests_total",
	Help:      "GraphQL HTTP requests by status code.",
}, []string{"code"})

// Metrics tracks gateway-level counters using atomic operations for lock-free
// concurrency. The Prometheus counters feed /metrics; the atomic snapshot
// feeds /status.
type Metrics struct {
	requests     atomic.Int64
	errors       atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// instrument wraps the GraphQL handler to record request counts, error
// counts, and latency.
func (m *Metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.requests.Add(1)
		m.totalLatency.Add(int64(time.Since(start)))
		if rec.code >= 400 {
			m.errors.Add(1)
		}
		requestsTotal.WithLabelValues(strconv.Itoa(rec.code)).Inc()
	})
}

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	requests := m.requests.Load()
	snap := MetricsSnapshot{
		Requests: requests,
		Errors:   m.errors.Load(),
	}
	if requests > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / requests)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Requests   int64         `json:"requests"`
	Errors     int64         `json:"errors"`
	AvgLatency time.Duration `json:"avg_latency_ns"`
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
