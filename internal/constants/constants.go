// Package constants provides centralized constant values used throughout stepwire.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Conversion defaults.
const (
	// DefaultDelimiter splits list arguments: a comma optionally followed by
	// one whitespace character. Existing step patterns rely on this exact
	// expression for bare-comma lists, so it must not change.
	DefaultDelimiter = `,\s?`

	// DefaultLocale is the BCP 47 tag used when no locale is configured.
	DefaultLocale = "en"
)

// Execution defaults.
const (
	// DefaultStepTimeout is the per-definition budget when none is given.
	// Zero means unbounded.
	DefaultStepTimeout time.Duration = 0

	// DefaultPoolSize is the number of bounded-time calls that may be in
	// flight at once, including abandoned calls that have outlived their budget.
	DefaultPoolSize = 16

	// DefaultParallelism is the number of scenarios run at once.
	DefaultParallelism = 1
)

// Directory and file names used by stepwire.
const (
	// StepwireHome is the hidden directory where stepwire stores its data.
	// It exists both in the user's home directory and in project roots.
	StepwireHome = ".stepwire"

	// ConfigFileName is the name of global and project configuration files.
	ConfigFileName = "config.yaml"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// CLILogFileName is the name of the rotating CLI log file.
	CLILogFileName = "stepwire.log"
)

// EnvPrefix is the prefix for environment variable overrides (STEPWIRE_LOCALE, ...).
const EnvPrefix = "STEPWIRE"
