// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the engine's Prometheus metrics.
type Collector struct {
	scenariosGenerated   *prometheus.CounterVec
	variationsSkipped    prometheus.Counter
	narrativeFallbacks   prometheus.Counter
	simulationsTotal     prometheus.Counter
	simulationDuration   prometheus.Histogram
	simulationIterations prometheus.Histogram
	optimizationsTotal   prometheus.Counter
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
}

// NewCollector registers and returns the engine metrics.
func NewCollector() *Collector {
	return &Collector{
		scenariosGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "disruption_scenarios_generated_total",
			Help: "Scenarios generated, by disruption type and narrative method",
		}, []string{"type", "method"}),
		variationsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "disruption_scenario_variations_skipped_total",
			Help: "Scenario variations skipped due to generation failure",
		}),
		narrativeFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "disruption_narrative_fallbacks_total",
			Help: "Scenario generations that fell back to the rule-based template",
		}),
		simulationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "disruption_simulations_total",
			Help: "Impact simulations run",
		}),
		simulationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "disruption_simulation_duration_seconds",
			Help:    "Wall time of impact simulations",
			Buckets: prometheus.DefBuckets,
		}),
		simulationIterations: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "disruption_simulation_iterations",
			Help:    "Monte Carlo iterations per simulation",
			Buckets: prometheus.ExponentialBuckets(100, 4, 6),
		}),
		optimizationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "disruption_optimizations_total",
			Help: "Strategy optimizations run",
		}),
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "disruption_http_requests_total",
			Help: "HTTP requests, by method, path, and status",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "disruption_http_request_duration_seconds",
			Help:    "HTTP request latency, by method and path",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// RecordScenario counts a generated scenario. Nil-safe so components can be
// constructed without metrics in tests.
func (c *Collector) RecordScenario(disruptionType, method string) {
	if c == nil {
		return
	}
	c.scenariosGenerated.WithLabelValues(disruptionType, method).Inc()
	if method == "rule_based_template" {
		c.narrativeFallbacks.Inc()
	}
}

// RecordVariationSkipped counts a skipped variation.
func (c *Collector) RecordVariationSkipped() {
	if c == nil {
		return
	}
	c.variationsSkipped.Inc()
}

// RecordSimulation counts a completed simulation.
func (c *Collector) RecordSimulation(iterations int, duration time.Duration) {
	if c == nil {
		return
	}
	c.simulationsTotal.Inc()
	c.simulationDuration.Observe(duration.Seconds())
	c.simulationIterations.Observe(float64(iterations))
}

// RecordOptimization counts a completed optimization.
func (c *Collector) RecordOptimization() {
	if c == nil {
		return
	}
	c.optimizationsTotal.Inc()
}

// RecordHTTPRequest counts one HTTP request observation.
func (c *Collector) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
