package internal

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"vendor-registry-api/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the request and store collectors on a private registry.
type Metrics struct {
	reqTotal   *prometheus.CounterVec
	reqLatency *prometheus.HistogramVec
	storeOps   *prometheus.CounterVec
	registry   *prometheus.Registry
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	reqLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	storeOps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendor_store_operations_total",
			Help: "Vendor store operations by outcome",
		},
		[]string{"op", "result"},
	)

	registry.MustRegister(reqTotal, reqLatency, storeOps)

	return &Metrics{
		reqTotal:   reqTotal,
		reqLatency: reqLatency,
		storeOps:   storeOps,
		registry:   registry,
	}
}

// Middleware records count and latency per chi route pattern.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

			next.ServeHTTP(rw, r)

			path := routePattern(r)
			status := strconv.Itoa(rw.code)
			m.reqTotal.WithLabelValues(r.Method, path, status).Inc()
			m.reqLatency.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// ObserveStore counts one store call under a coarse result label.
func (m *Metrics) ObserveStore(op string, err error) {
	m.storeOps.WithLabelValues(op, storeResult(err)).Inc()
}

func storeResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrDuplicateKey):
		return "duplicate"
	case errors.Is(err, store.ErrConstraintViolation):
		return "constraint"
	default:
		return "error"
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the HTTP status code for metrics and logs
type statusRecorder struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wroteHeader {
		sr.code = code
		sr.wroteHeader = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.wroteHeader = true
	return sr.ResponseWriter.Write(b)
}
