// Package errors provides centralized error handling for stepwire.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the engine, plus typed errors that carry diagnostic detail. Every
// typed error wraps its sentinel, so callers can use either errors.Is() or
// errors.As().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrUndefinedStep indicates that no step definition matches a step's text.
	// Runners report it; it is never fatal to a run.
	ErrUndefinedStep = errors.New("undefined step")

	// ErrAmbiguousMatch indicates that more than one step definition matches
	// the same step text.
	ErrAmbiguousMatch = errors.New("ambiguous step match")

	// ErrConversion indicates that a matched argument could not be converted
	// into the declared parameter type.
	ErrConversion = errors.New("argument conversion failed")

	// ErrConfiguration indicates an invalid step definition or modifier,
	// detected while registering step definitions.
	ErrConfiguration = errors.New("invalid step configuration")

	// ErrStepTimeout indicates that a bound procedure exceeded its time budget.
	ErrStepTimeout = errors.New("step timed out")

	// ErrProcedureFailed indicates that the bound procedure itself failed.
	ErrProcedureFailed = errors.New("step procedure failed")

	// ErrProcedurePanicked indicates that the bound procedure panicked.
	ErrProcedurePanicked = errors.New("step procedure panicked")

	// ErrPending is returned by procedures that are not implemented yet.
	// Generated snippets return it.
	ErrPending = errors.New("step pending")

	// ErrMissingArgument indicates that a required capture group did not
	// participate in the match.
	ErrMissingArgument = errors.New("missing step argument")

	// ErrArgumentCountMismatch indicates that the number of captured arguments
	// differs from the number of declared parameters.
	ErrArgumentCountMismatch = errors.New("argument count mismatch")

	// ErrTransformerNotFound indicates that a transform modifier names a
	// transformer that is not registered.
	ErrTransformerNotFound = errors.New("transformer not registered")

	// ErrUnknownEnumMember indicates that text does not name any member of an enum.
	ErrUnknownEnumMember = errors.New("unknown enum member")

	// ErrInvalidPattern indicates a step pattern that is not a valid regular expression.
	ErrInvalidPattern = errors.New("invalid step pattern")

	// ErrInvalidDelimiter indicates a delimiter modifier that is not a valid regular expression.
	ErrInvalidDelimiter = errors.New("invalid delimiter")

	// ErrWorldNotStarted indicates that a world instance was requested outside
	// of a scenario.
	ErrWorldNotStarted = errors.New("world not started")

	// ErrWorldsNotIsolated indicates parallel execution was requested with a
	// backend that cannot produce independent copies.
	ErrWorldsNotIsolated = errors.New("backend does not support parallel worlds")

	// ErrInvalidScenarioFile indicates a malformed plain-text scenario file.
	ErrInvalidScenarioFile = errors.New("invalid scenario file")

	// ErrScenarioFailed indicates that at least one scenario did not pass.
	ErrScenarioFailed = errors.New("scenario failed")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidLocale indicates an unparsable locale setting.
	ErrConfigInvalidLocale = errors.New("invalid locale configuration")

	// ErrConfigInvalidExecution indicates an invalid execution setting.
	ErrConfigInvalidExecution = errors.New("invalid execution configuration")

	// ErrConfigInvalidSteps indicates an invalid step-loading setting.
	ErrConfigInvalidSteps = errors.New("invalid steps configuration")

	// ErrConfigInvalidLog indicates an invalid log setting.
	ErrConfigInvalidLog = errors.New("invalid log configuration")

	// ErrFileLocked indicates a lock file is held by another process.
	ErrFileLocked = errors.New("file is locked")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")
)

// ConversionError reports text that could not be converted into a declared type.
type ConversionError struct {
	// Text is the raw matched text.
	Text string
	// Type is the name of the target type.
	Type string
	// Reason is the underlying parse failure, if any.
	Reason error
	// Suggestion is sample code for a custom transformer (empty if not applicable).
	Suggestion string
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot convert %q into %s", e.Text, e.Type)
	if e.Reason != nil {
		fmt.Fprintf(&b, ": %v", e.Reason)
	}
	if e.Suggestion != "" {
		b.WriteString(".\nTry writing your own transformer:\n\n")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}

// Unwrap exposes the ErrConversion sentinel and the underlying reason.
func (e *ConversionError) Unwrap() []error {
	if e.Reason != nil {
		return []error{ErrConversion, e.Reason}
	}
	return []error{ErrConversion}
}

// AmbiguousMatchError reports every location whose pattern matched the same text.
type AmbiguousMatchError struct {
	Text      string
	Locations []string
}

// Error implements the error interface.
func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%s: %q matches %d step definitions: %s",
		ErrAmbiguousMatch, e.Text, len(e.Locations), strings.Join(e.Locations, ", "))
}

// Unwrap returns ErrAmbiguousMatch.
func (e *AmbiguousMatchError) Unwrap() error {
	return ErrAmbiguousMatch
}

// TimeoutError reports a call that exceeded its budget.
type TimeoutError struct {
	Budget  time.Duration
	Elapsed time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s after %s (budget %s)", ErrStepTimeout, e.Elapsed.Round(time.Millisecond), e.Budget)
}

// Unwrap returns ErrStepTimeout.
func (e *TimeoutError) Unwrap() error {
	return ErrStepTimeout
}

// PanicError carries a value recovered from a panicking procedure.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: %v", ErrProcedurePanicked, e.Value)
}

// Unwrap returns ErrProcedurePanicked.
func (e *PanicError) Unwrap() error {
	return ErrProcedurePanicked
}

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}

// Is reports whether any error in err's tree matches target.
// It re-exports the standard library function so callers importing this
// package under its short name need no second import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
