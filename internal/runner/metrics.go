package runner

import (
	"time"

	"github.com/mrz1836/stepwire/internal/constants"
)

// Metrics collects metrics about runs, scenarios and steps.
// Implementations can send these to monitoring systems like Prometheus.
type Metrics interface {
	// RunStarted is called before the first scenario of a run.
	RunStarted(runID string, scenarios int)

	// RunCompleted is called after the last scenario of a run.
	RunCompleted(runID string, duration time.Duration, passed bool)

	// ScenarioCompleted is called after each scenario, including its world disposal.
	ScenarioCompleted(runID, name string, status constants.ScenarioStatus, duration time.Duration)

	// StepExecuted is called after each step that was looked up; skipped
	// steps are not reported.
	StepExecuted(runID, location string, status constants.StepStatus, duration time.Duration)
}

// NoopMetrics is a no-op implementation of Metrics for default behavior.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Metrics interface.
var _ Metrics = (*NoopMetrics)(nil)

// RunStarted implements Metrics.
func (NoopMetrics) RunStarted(string, int) {}

// RunCompleted implements Metrics.
func (NoopMetrics) RunCompleted(string, time.Duration, bool) {}

// ScenarioCompleted implements Metrics.
func (NoopMetrics) ScenarioCompleted(string, string, constants.ScenarioStatus, time.Duration) {}

// StepExecuted implements Metrics.
func (NoopMetrics) StepExecuted(string, string, constants.StepStatus, time.Duration) {}
