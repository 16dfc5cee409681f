// Package tui provides terminal output components for stepwire.
//
// All colors use AdaptiveColor so reports read on light and dark terminals.
//
// # Semantic Colors
//
//   - ColorPrimary (Blue): headings, locations
//   - ColorSuccess (Green): passed steps and scenarios
//   - ColorWarning (Yellow): undefined and pending steps
//   - ColorError (Red): failed, ambiguous and timed-out steps
//   - ColorMuted (Gray): skipped steps, secondary text
//
// Every status is shown as icon + color + text, so output stays readable
// when colors are off.
//
// # NO_COLOR Support
//
// Call CheckNoColor() at the start of commands that print styled text.
// Colors are also disabled when TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/stepwire/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for styling API
var (
	// ColorPrimary is blue, used for headings and locations.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for passed steps.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for undefined and pending steps.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failing steps.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for skipped steps and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim/faint formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// CheckNoColor respects the NO_COLOR environment variable.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false if NO_COLOR is set (any value, including
// the empty string) or TERM=dumb. See https://no-color.org/.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// StepStatusColors returns the color each step status is rendered in.
func StepStatusColors() map[constants.StepStatus]lipgloss.AdaptiveColor {
	return map[constants.StepStatus]lipgloss.AdaptiveColor{
		constants.StepStatusPassed:    ColorSuccess,
		constants.StepStatusFailed:    ColorError,
		constants.StepStatusAmbiguous: ColorError,
		constants.StepStatusTimedOut:  ColorError,
		constants.StepStatusUndefined: ColorWarning,
		constants.StepStatusPending:   ColorWarning,
		constants.StepStatusSkipped:   ColorMuted,
	}
}

// StepStatusIcon returns the symbol shown before a step of the given status.
func StepStatusIcon(status constants.StepStatus) string {
	icons := map[constants.StepStatus]string{
		constants.StepStatusPassed:    "✓",
		constants.StepStatusFailed:    "✗",
		constants.StepStatusAmbiguous: "✗",
		constants.StepStatusTimedOut:  "⏱",
		constants.StepStatusUndefined: "◌",
		constants.StepStatusPending:   "…",
		constants.StepStatusSkipped:   "-",
	}
	if icon, ok := icons[status]; ok {
		return icon
	}
	return "?"
}

// ScenarioStatusColor returns the color a scenario of the given status is
// rendered in.
func ScenarioStatusColor(status constants.ScenarioStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.ScenarioStatusPassed:
		return ColorSuccess
	case constants.ScenarioStatusFailed:
		return ColorError
	case constants.ScenarioStatusUndefined, constants.ScenarioStatusPending:
		return ColorWarning
	}
	return ColorMuted
}

// FormatStepStatus renders a step status as icon + colored text.
func FormatStepStatus(status constants.StepStatus) string {
	color, ok := StepStatusColors()[status]
	if !ok {
		color = ColorMuted
	}
	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(StepStatusIcon(status) + " " + status.String())
}
