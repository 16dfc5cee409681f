package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// Using a slice (not a map) because errors.Is() requires chain traversal,
// and order matters: more specific sentinels come first.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Matching
	// ===================
	{
		err: ErrUndefinedStep,
		info: ErrorInfo{
			Message: "No step definition matches this step.",
			Action:  "Run 'stepwire snippet \"<step text>\"' for a starting skeleton.",
		},
	},
	{
		err: ErrAmbiguousMatch,
		info: ErrorInfo{
			Message: "More than one step definition matches this step.",
			Action:  "Tighten one of the listed patterns so only one of them applies.",
		},
	},

	// ===================
	// Conversion
	// ===================
	{
		err: ErrMissingArgument,
		info: ErrorInfo{
			Message: "An optional capture group did not match but its parameter is required.",
			Action:  "Make the parameter a pointer type or mark it optional.",
		},
	},
	{
		err: ErrUnknownEnumMember,
		info: ErrorInfo{
			Message: "The step names a value that is not a member of the expected enum.",
			Action:  "Use one of the listed member names (matching is case-sensitive).",
		},
	},
	{
		err: ErrConversion,
		info: ErrorInfo{
			Message: "A step argument could not be converted to the parameter type.",
			Action:  "Register a transformer for the type and attach it with a transform modifier.",
		},
	},

	// ===================
	// Invocation
	// ===================
	{
		err: ErrStepTimeout,
		info: ErrorInfo{
			Message: "The step did not finish within its time budget.",
			Action:  "Raise the step's timeout or make the procedure honor context cancellation.",
		},
	},
	{
		err: ErrPending,
		info: ErrorInfo{
			Message: "The step definition is not implemented yet.",
			Action:  "Replace the pending return with the step's real behavior.",
		},
	},
	{
		err: ErrProcedurePanicked,
		info: ErrorInfo{
			Message: "The step procedure panicked.",
		},
	},
	{
		err: ErrProcedureFailed,
		info: ErrorInfo{
			Message: "The step procedure returned an error.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrTransformerNotFound,
		info: ErrorInfo{
			Message: "A step parameter names a transformer that is not registered.",
			Action:  "Register the transformer before loading step definitions.",
		},
	},
	{
		err: ErrWorldsNotIsolated,
		info: ErrorInfo{
			Message: "Parallel scenarios need backends that can create independent worlds.",
			Action:  "Set execution.parallel to 1 or use forkable backends only.",
		},
	},
	{
		err: ErrConfiguration,
		info: ErrorInfo{
			Message: "A step definition is misconfigured.",
			Action:  "Fix the reported step definition; the run cannot start until it is valid.",
		},
	},
	{
		err: ErrConfigInvalidLocale,
		info: ErrorInfo{
			Message: "The configured locale is not a valid BCP 47 language tag.",
			Action:  "Use a tag such as 'en', 'en-US' or 'de-DE'.",
		},
	},
	{
		err: ErrConfigInvalidExecution,
		info: ErrorInfo{
			Message: "The execution configuration is invalid.",
			Action:  "Check execution.pool_size and execution.parallel in your config.",
		},
	},
	{
		err: ErrConfigInvalidSteps,
		info: ErrorInfo{
			Message: "The steps configuration is invalid.",
			Action:  "Check steps.paths and steps.default_timeout in your config.",
		},
	},
	{
		err: ErrConfigInvalidLog,
		info: ErrorInfo{
			Message: "The log configuration is invalid.",
			Action:  "Set log.level to one of trace, debug, info, warn or error.",
		},
	},
	{
		err: ErrInvalidScenarioFile,
		info: ErrorInfo{
			Message: "The scenario file could not be read.",
			Action:  "Start each scenario with 'Scenario: <name>' followed by one step per line.",
		},
	},
	{
		err: ErrScenarioFailed,
		info: ErrorInfo{
			Message: "One or more scenarios did not pass.",
			Action:  "Rerun with --verbose to see each step's log.",
		},
	},
	{
		err: ErrFileLocked,
		info: ErrorInfo{
			Message: "Another stepwire process is writing the same file.",
			Action:  "Wait for the other run to finish or pick a different --metrics-file.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Unknown output format.",
			Action:  "Use --output text or --output json.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries a direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action. The action is empty when there is nothing generic to suggest.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
