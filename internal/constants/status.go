package constants

// StepStatus is the outcome recorded for a single step.
// Values use snake_case for JSON serialization compatibility.
type StepStatus string

// Step status values.
const (
	// StepStatusPassed indicates the procedure completed without error.
	StepStatusPassed StepStatus = "passed"

	// StepStatusFailed indicates a conversion error or procedure failure.
	StepStatusFailed StepStatus = "failed"

	// StepStatusSkipped indicates the step was not run because an earlier
	// step in the scenario did not pass, or the run was a dry run.
	StepStatusSkipped StepStatus = "skipped"

	// StepStatusUndefined indicates no step definition matched.
	StepStatusUndefined StepStatus = "undefined"

	// StepStatusAmbiguous indicates more than one step definition matched.
	StepStatusAmbiguous StepStatus = "ambiguous"

	// StepStatusTimedOut indicates the procedure exceeded its time budget.
	StepStatusTimedOut StepStatus = "timed_out"

	// StepStatusPending indicates the procedure reported it is not written yet.
	StepStatusPending StepStatus = "pending"
)

// String returns the status value.
func (s StepStatus) String() string {
	return string(s)
}

// IsFailure reports whether the status fails its scenario.
// Undefined and pending steps only fail a scenario in strict mode, which
// callers decide.
func (s StepStatus) IsFailure() bool {
	switch s {
	case StepStatusFailed, StepStatusAmbiguous, StepStatusTimedOut:
		return true
	case StepStatusPassed, StepStatusSkipped, StepStatusUndefined, StepStatusPending:
		return false
	}
	return false
}

// ScenarioStatus summarizes a scenario from its step statuses.
type ScenarioStatus string

// Scenario status values.
const (
	ScenarioStatusPassed    ScenarioStatus = "passed"
	ScenarioStatusFailed    ScenarioStatus = "failed"
	ScenarioStatusUndefined ScenarioStatus = "undefined"
	ScenarioStatusPending   ScenarioStatus = "pending"
)

// String returns the status value.
func (s ScenarioStatus) String() string {
	return string(s)
}
