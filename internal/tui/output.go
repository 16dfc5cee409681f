package tui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

// Output is where commands report to the user. Commands pick one from the
// --output flag through NewOutput.
type Output interface {
	Success(msg string)
	Error(err error)
	Warning(msg string)
	Info(msg string)
	// JSON writes v as indented JSON.
	JSON(v any) error
}

// NewOutput returns a JSONOutput for "json" and a TTYOutput otherwise.
func NewOutput(w io.Writer, format string) Output {
	if format == "json" {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}

// TTYOutput writes styled lines for people.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
}

// NewTTYOutput creates a TTYOutput writing to w.
func NewTTYOutput(w io.Writer) *TTYOutput {
	return &TTYOutput{w: w, styles: NewOutputStyles()}
}

// Writer returns the writer lines go to.
func (o *TTYOutput) Writer() io.Writer { return o.w }

// Styles returns the styles lines are rendered with.
func (o *TTYOutput) Styles() *OutputStyles { return o.styles }

func (o *TTYOutput) line(style lipgloss.Style, text string) {
	_, _ = fmt.Fprintln(o.w, style.Render(text))
}

// Success writes msg after a check mark.
func (o *TTYOutput) Success(msg string) { o.line(o.styles.Success, "✓ "+msg) }

// Warning writes msg after a warning sign.
func (o *TTYOutput) Warning(msg string) { o.line(o.styles.Warning, "⚠ "+msg) }

// Info writes msg as is.
func (o *TTYOutput) Info(msg string) { o.line(o.styles.Info, msg) }

// Error writes err, then the action that usually resolves it when one is known.
func (o *TTYOutput) Error(err error) {
	o.line(o.styles.Error, "✗ "+err.Error())
	if _, action := swerrors.Actionable(err); action != "" {
		o.line(o.styles.Dim, "  → "+action)
	}
}

// JSON writes v as indented JSON.
func (o *TTYOutput) JSON(v any) error { return encodeJSON(o.w, v) }

// JSONOutput writes only machine-readable documents: the command's JSON
// result and errors. Status messages are dropped.
type JSONOutput struct {
	w io.Writer
}

// NewJSONOutput creates a JSONOutput writing to w.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w}
}

type errorDocument struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
}

func (o *JSONOutput) Success(string) {}
func (o *JSONOutput) Warning(string) {}
func (o *JSONOutput) Info(string)    {}

// Error writes {"error": ..., "action": ...}.
func (o *JSONOutput) Error(err error) {
	_, action := swerrors.Actionable(err)
	_ = encodeJSON(o.w, errorDocument{Error: err.Error(), Action: action})
}

// JSON writes v as indented JSON.
func (o *JSONOutput) JSON(v any) error { return encodeJSON(o.w, v) }

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
