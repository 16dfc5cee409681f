package runner

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mrz1836/stepwire/internal/constants"
	"github.com/mrz1836/stepwire/internal/flock"
)

// PrometheusMetrics records run metrics in its own Prometheus registry.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	ActiveRuns       prometheus.Gauge
	ScenariosTotal   *prometheus.CounterVec
	ScenarioDuration *prometheus.HistogramVec
	StepsTotal       *prometheus.CounterVec
	StepDuration     *prometheus.HistogramVec
}

// Ensure PrometheusMetrics implements Metrics interface.
var _ Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates the metric vectors under namespace.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	m := &PrometheusMetrics{
		registry: reg,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of runs",
		}, []string{"passed"}),
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_runs",
			Help:      "Number of runs in progress",
		}),
		ScenariosTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_total",
			Help:      "Total number of scenarios by status",
		}, []string{"status"}),
		ScenarioDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scenario_duration_seconds",
			Help:      "Duration of scenarios in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		StepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of steps by definition location and status",
		}, []string{"location", "status"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of step invocations in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}

	reg.MustRegister(m.RunsTotal, m.ActiveRuns, m.ScenariosTotal, m.ScenarioDuration, m.StepsTotal, m.StepDuration)
	return m
}

// Registry returns the registry holding the metrics.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format,
// for the node exporter textfile collector. It holds path+".lock" while
// writing and fails with errors.ErrFileLocked when another run holds it.
func (m *PrometheusMetrics) WriteTextfile(path string) error {
	lock, err := flock.TryLock(path + ".lock")
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	return prometheus.WriteToTextfile(path, m.registry)
}

// RunStarted implements Metrics.
func (m *PrometheusMetrics) RunStarted(string, int) {
	m.ActiveRuns.Inc()
}

// RunCompleted implements Metrics.
func (m *PrometheusMetrics) RunCompleted(_ string, _ time.Duration, passed bool) {
	m.ActiveRuns.Dec()
	m.RunsTotal.WithLabelValues(strconv.FormatBool(passed)).Inc()
}

// ScenarioCompleted implements Metrics.
func (m *PrometheusMetrics) ScenarioCompleted(_, _ string, status constants.ScenarioStatus, duration time.Duration) {
	m.ScenariosTotal.WithLabelValues(status.String()).Inc()
	m.ScenarioDuration.WithLabelValues(status.String()).Observe(duration.Seconds())
}

// StepExecuted implements Metrics.
func (m *PrometheusMetrics) StepExecuted(_, location string, status constants.StepStatus, duration time.Duration) {
	m.StepsTotal.WithLabelValues(location, status.String()).Inc()
	m.StepDuration.WithLabelValues(status.String()).Observe(duration.Seconds())
}
