// Package metrics provides Prometheus-based metrics collection for rangescan.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all rangescan metrics
	namespace = "rangescan"

	// Subsystems
	subsystemProbe   = "probe"
	subsystemResolve = "resolve"
	subsystemRange   = "range"
)

// PrometheusMetrics holds all Prometheus metric collectors
type PrometheusMetrics struct {
	// Probe metrics
	probesTotal    *prometheus.CounterVec
	probesInFlight prometheus.Gauge

	// Resolve metrics
	namesTotal *prometheus.CounterVec

	// Range metrics
	rangeDuration   prometheus.Histogram
	rangeResponsive *prometheus.GaugeVec
	rangeOccupancy  *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{
		registry: registry,
	}

	pm.initProbeMetrics()
	pm.initResolveMetrics()
	pm.initRangeMetrics()

	pm.registerMetrics()

	// Register standard Go and process collectors for runtime visibility
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

func (pm *PrometheusMetrics) initProbeMetrics() {
	pm.probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemProbe,
			Name:      "total",
			Help:      "Total number of reachability probes by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	pm.probesInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemProbe,
			Name:      "in_flight",
			Help:      "Number of probes currently running",
		},
	)
}

func (pm *PrometheusMetrics) initResolveMetrics() {
	pm.namesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemResolve,
			Name:      "total",
			Help:      "Total number of reverse lookups by outcome",
		},
		[]string{"outcome"},
	)
}

func (pm *PrometheusMetrics) initRangeMetrics() {
	pm.rangeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemRange,
			Name:      "duration_seconds",
			Help:      "Duration of a full range scan in seconds",
			Buckets:   []float64{1.0, 2.0, 5.0, 10.0, 20.0, 30.0, 60.0, 120.0},
		},
	)

	pm.rangeResponsive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemRange,
			Name:      "responsive_hosts",
			Help:      "Number of responsive hosts found in the last scan of a range",
		},
		[]string{"range"},
	)

	pm.rangeOccupancy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemRange,
			Name:      "occupancy_percent",
			Help:      "Share of a range's addresses that responded in the last scan",
		},
		[]string{"range"},
	)
}

// registerMetrics registers all metrics with the Prometheus registry
func (pm *PrometheusMetrics) registerMetrics() {
	pm.registry.MustRegister(pm.probesTotal)
	pm.registry.MustRegister(pm.probesInFlight)
	pm.registry.MustRegister(pm.namesTotal)
	pm.registry.MustRegister(pm.rangeDuration)
	pm.registry.MustRegister(pm.rangeResponsive)
	pm.registry.MustRegister(pm.rangeOccupancy)
}

// GetRegistry returns the Prometheus registry for HTTP handler
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// ProbeCompleted increments the probe counter.
func (pm *PrometheusMetrics) ProbeCompleted(method string, reachable bool) {
	outcome := "unreachable"
	if reachable {
		outcome = "reachable"
	}
	pm.probesTotal.WithLabelValues(method, outcome).Inc()
}

// NameResolved increments the lookup counter.
func (pm *PrometheusMetrics) NameResolved(resolved bool) {
	outcome := "empty"
	if resolved {
		outcome = "resolved"
	}
	pm.namesTotal.WithLabelValues(outcome).Inc()
}

// ProbeStarted increments the in-flight gauge.
func (pm *PrometheusMetrics) ProbeStarted() {
	pm.probesInFlight.Inc()
}

// ProbeFinished decrements the in-flight gauge.
func (pm *PrometheusMetrics) ProbeFinished() {
	pm.probesInFlight.Dec()
}

// RangeCompleted records per-range results.
func (pm *PrometheusMetrics) RangeCompleted(prefix string, responsive int, occupancy float64, duration time.Duration) {
	pm.rangeDuration.Observe(duration.Seconds())
	pm.rangeResponsive.WithLabelValues(prefix).Set(float64(responsive))
	pm.rangeOccupancy.WithLabelValues(prefix).Set(occupancy)
}
