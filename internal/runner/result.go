package runner

import (
	"time"

	"github.com/mrz1836/stepwire/internal/constants"
)

// StepResult is the recorded outcome of one step.
type StepResult struct {
	Keyword  string               `json:"keyword,omitempty"`
	Text     string               `json:"text"`
	Line     int                  `json:"line,omitempty"`
	Status   constants.StepStatus `json:"status"`
	Location string               `json:"location,omitempty"`
	Duration time.Duration        `json:"duration_ns"`
	Error    string               `json:"error,omitempty"`
	Snippet  string               `json:"snippet,omitempty"`

	// Err is the failure behind Error.
	Err error `json:"-"`
}

// ScenarioResult is the recorded outcome of one scenario.
type ScenarioResult struct {
	Name     string                   `json:"name"`
	File     string                   `json:"file,omitempty"`
	Line     int                      `json:"line,omitempty"`
	Status   constants.ScenarioStatus `json:"status"`
	Steps    []StepResult             `json:"steps"`
	Duration time.Duration            `json:"duration_ns"`
	Error    string                   `json:"error,omitempty"`

	// Err is a failure outside any step: starting or disposing worlds, or
	// cancellation.
	Err error `json:"-"`
}

// Report is the outcome of a run.
type Report struct {
	RunID     string           `json:"run_id"`
	Started   time.Time        `json:"started"`
	Duration  time.Duration    `json:"duration_ns"`
	Strict    bool             `json:"strict,omitempty"`
	DryRun    bool             `json:"dry_run,omitempty"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

// Passed reports whether no scenario failed.
func (r *Report) Passed() bool {
	for _, sc := range r.Scenarios {
		if sc.Status == constants.ScenarioStatusFailed {
			return false
		}
	}
	return true
}

// StepCounts counts steps by status.
func (r *Report) StepCounts() map[constants.StepStatus]int {
	counts := make(map[constants.StepStatus]int)
	for _, sc := range r.Scenarios {
		for _, st := range sc.Steps {
			counts[st.Status]++
		}
	}
	return counts
}

// ScenarioCounts counts scenarios by status.
func (r *Report) ScenarioCounts() map[constants.ScenarioStatus]int {
	counts := make(map[constants.ScenarioStatus]int)
	for _, sc := range r.Scenarios {
		counts[sc.Status]++
	}
	return counts
}

// Snippets returns the distinct snippets suggested for undefined steps, in
// the order the steps appeared.
func (r *Report) Snippets() []string {
	seen := make(map[string]bool)
	var out []string
	for _, sc := range r.Scenarios {
		for _, st := range sc.Steps {
			if st.Snippet == "" || seen[st.Snippet] {
				continue
			}
			seen[st.Snippet] = true
			out = append(out, st.Snippet)
		}
	}
	return out
}
