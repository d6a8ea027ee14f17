// Package metrics implements ports.MetricsCollector against
// prometheus/client_golang, exposing the counters, gauges, and histograms
// documented on the port's doc comment.
package metrics

import (
	"context"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oronts/datahub/internal/ports"
)

// PrometheusCollector is a ports.MetricsCollector backed by a prometheus
// registry. Vectors are created lazily per metric name/label-set shape on
// first use, since the orchestrator does not declare its full label
// vocabulary up front.
type PrometheusCollector struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusCollector constructs a PrometheusCollector registered against
// registry. Passing nil uses prometheus.NewRegistry().
func NewPrometheusCollector(registry *prometheus.Registry) *PrometheusCollector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &PrometheusCollector{
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Registry exposes the underlying registry for an HTTP /metrics handler to
// serve.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *PrometheusCollector) IncCounter(_ context.Context, name string, labels map[string]string) {
	c.mu.Lock()
	vec, ok := c.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, labelNames(labels))
		c.registry.MustRegister(vec)
		c.counters[name] = vec
	}
	c.mu.Unlock()
	vec.With(labels).Inc()
}

func (c *PrometheusCollector) SetGauge(_ context.Context, name string, value float64, labels map[string]string) {
	c.mu.Lock()
	vec, ok := c.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name}, labelNames(labels))
		c.registry.MustRegister(vec)
		c.gauges[name] = vec
	}
	c.mu.Unlock()
	vec.With(labels).Set(value)
}

func (c *PrometheusCollector) ObserveHistogram(_ context.Context, name string, value float64, labels map[string]string) {
	c.mu.Lock()
	vec, ok := c.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name}, labelNames(labels))
		c.registry.MustRegister(vec)
		c.histograms[name] = vec
	}
	c.mu.Unlock()
	vec.With(labels).Observe(value)
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var _ ports.MetricsCollector = (*PrometheusCollector)(nil)
