package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dashboard's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	wsClients       prometheus.GaugeFunc
	kpiTotal        prometheus.Gauge
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics(hub *Hub) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskninja_http_requests_total",
			Help: "HTTP requests served, by path and status.",
		}, []string{"path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskninja_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		wsClients: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "taskninja_websocket_clients",
			Help: "Currently connected websocket clients.",
		}, func() float64 { return float64(hub.ClientCount()) }),
		kpiTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskninja_kpi_total",
			Help: "Most recently computed dataset total.",
		}),
	}
	registry.MustRegister(m.requestsTotal, m.requestDuration, m.wsClients, m.kpiTotal)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordKPIs updates the gauge mirror of the latest KPI computation.
func (m *Metrics) RecordKPIs(kpis KPISet) {
	m.kpiTotal.Set(kpis.Total)
}

// Middleware instruments every request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		m.requestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(ww.Status())).Inc()
		m.requestDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
