// Package metrics exposes Prometheus instruments for the HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registrar_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_http_requests_total",
			Help: "Total HTTP requests served by method and path.",
		}, []string{"method", "path"}),
	}
}

func (m *Metrics) ObserveRequest(method, path string, d time.Duration) {
	m.requestDuration.WithLabelValues(method, path).Observe(d.Seconds())
	m.requestsTotal.WithLabelValues(method, path).Inc()
}
