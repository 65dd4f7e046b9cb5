package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus series exported by the API.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ifscLookups     *prometheus.CounterVec
}

// NewMetrics initialises the registry and the base series.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "openxmart_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "openxmart_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "openxmart_ifsc_lookups_total",
		Help: "IFSC lookups by answering source (cache, upstream, error).",
	}, []string{"source"})
	registry.MustRegister(requests, duration, lookups)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		ifscLookups:     lookups,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveIFSCLookup counts one IFSC resolution.
func (m *Metrics) ObserveIFSCLookup(source string) {
	if m == nil {
		return
	}
	m.ifscLookups.WithLabelValues(source).Inc()
}

// Registerer exposes the registry for package specific collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// RegisterPool exports connection pool gauges for the named pool. stats is
// called on every scrape.
func (m *Metrics) RegisterPool(name string, stats func() (acquired, idle, total int32)) error {
	labels := prometheus.Labels{"pool": name}
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "openxmart_pool_acquired_connections",
			Help:        "Connections currently checked out of the pool.",
			ConstLabels: labels,
		}, func() float64 { acquired, _, _ := stats(); return float64(acquired) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "openxmart_pool_idle_connections",
			Help:        "Idle connections held by the pool.",
			ConstLabels: labels,
		}, func() float64 { _, idle, _ := stats(); return float64(idle) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "openxmart_pool_total_connections",
			Help:        "Connections owned by the pool.",
			ConstLabels: labels,
		}, func() float64 { _, _, total := stats(); return float64(total) }),
	}
	for _, g := range gauges {
		if err := m.Registerer().Register(g); err != nil {
			return err
		}
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
