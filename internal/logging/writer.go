package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// SensitiveDataHook marks events whose message still looks sensitive.
// Zerolog hooks cannot rewrite an event, so messages must be redacted where
// they are built; the mark makes a missed call site easy to find.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if kind := Sensitive(msg); kind != "" {
		e.Str("redaction_missed", kind)
	}
}

// FilteringWriter runs RedactStepText over everything written through it.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. On success it reports len(p) even when the
// redacted output is shorter.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(fw.w, RedactStepText(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
