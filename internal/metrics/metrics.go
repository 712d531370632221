// Package metrics exposes dispatch counters and latencies in the Prometheus
// format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hopsgo"

// Metrics owns an isolated Prometheus registry so tests and multiple App
// instances never collide on the global default registerer.
type Metrics struct {
	registry   *prometheus.Registry
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	components prometheus.Gauge
}

// New creates the collectors and registers them together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Component dispatches by route and outcome.",
		}, []string{"route", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching a component call.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"route"}),
		components: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "components_registered",
			Help:      "Number of components in the registry.",
		}),
	}
	m.registry.MustRegister(
		m.dispatches,
		m.duration,
		m.components,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveDispatch implements component.Observer.
func (m *Metrics) ObserveDispatch(route, outcome string, elapsed time.Duration) {
	m.dispatches.WithLabelValues(route, outcome).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SetComponents records the registry size.
func (m *Metrics) SetComponents(n int) { m.components.Set(float64(n)) }

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
