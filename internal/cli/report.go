package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrz1836/stepwire/internal/constants"
	"github.com/mrz1836/stepwire/internal/runner"
	"github.com/mrz1836/stepwire/internal/tui"
)

// stepStatusOrder is the order statuses appear in summaries.
//
//nolint:gochecknoglobals // Fixed display order
var stepStatusOrder = []constants.StepStatus{
	constants.StepStatusPassed,
	constants.StepStatusFailed,
	constants.StepStatusAmbiguous,
	constants.StepStatusTimedOut,
	constants.StepStatusUndefined,
	constants.StepStatusPending,
	constants.StepStatusSkipped,
}

//nolint:gochecknoglobals // Fixed display order
var scenarioStatusOrder = []constants.ScenarioStatus{
	constants.ScenarioStatusPassed,
	constants.ScenarioStatusFailed,
	constants.ScenarioStatusUndefined,
	constants.ScenarioStatusPending,
}

// renderReport writes the human-readable report of a run.
func renderReport(w io.Writer, report *runner.Report) {
	styles := tui.NewOutputStyles()

	for _, sc := range report.Scenarios {
		heading := lipgloss.NewStyle().Foreground(tui.ScenarioStatusColor(sc.Status)).Bold(true)
		_, _ = fmt.Fprintf(w, "%s %s\n", heading.Render("Scenario: "+sc.Name), styles.Dim.Render(scenarioLocation(sc)))

		for _, st := range sc.Steps {
			text := st.Text
			if st.Keyword != "" {
				text = st.Keyword + " " + text
			}
			line := "  " + tui.FormatStepStatus(st.Status) + "  " + text
			if st.Location != "" {
				line += "  " + styles.Dim.Render("# "+st.Location)
			}
			_, _ = fmt.Fprintln(w, line)
			if st.Error != "" && st.Status != constants.StepStatusUndefined {
				_, _ = fmt.Fprintln(w, styles.Error.Render(indent(st.Error, "      ")))
			}
		}
		if sc.Error != "" {
			_, _ = fmt.Fprintln(w, styles.Error.Render(indent(sc.Error, "  ")))
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, summarizeScenarios(report))
	_, _ = fmt.Fprintln(w, summarizeSteps(report))
	_, _ = fmt.Fprintln(w, styles.Dim.Render(report.Duration.Round(time.Millisecond).String()))

	if snippets := report.Snippets(); len(snippets) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, styles.Warning.Render("You can implement missing steps with the snippets below:"))
		for _, s := range snippets {
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, s)
		}
	}
}

func scenarioLocation(sc runner.ScenarioResult) string {
	if sc.File == "" {
		return ""
	}
	return fmt.Sprintf("# %s:%d", sc.File, sc.Line)
}

func summarizeScenarios(report *runner.Report) string {
	counts := report.ScenarioCounts()
	parts := make([]string, 0, len(scenarioStatusOrder))
	for _, status := range scenarioStatusOrder {
		if n := counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	return summary(len(report.Scenarios), "scenario", parts)
}

func summarizeSteps(report *runner.Report) string {
	counts := report.StepCounts()
	total := 0
	parts := make([]string, 0, len(stepStatusOrder))
	for _, status := range stepStatusOrder {
		n := counts[status]
		total += n
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	return summary(total, "step", parts)
}

func summary(total int, noun string, parts []string) string {
	if total != 1 {
		noun += "s"
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d %s", total, noun)
	}
	return fmt.Sprintf("%d %s (%s)", total, noun, strings.Join(parts, ", "))
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
