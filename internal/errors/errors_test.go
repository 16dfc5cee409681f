package errors_test

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	allErrors := []error{
		swerrors.ErrUndefinedStep,
		swerrors.ErrAmbiguousMatch,
		swerrors.ErrConversion,
		swerrors.ErrConfiguration,
		swerrors.ErrStepTimeout,
		swerrors.ErrProcedureFailed,
		swerrors.ErrProcedurePanicked,
		swerrors.ErrMissingArgument,
		swerrors.ErrTransformerNotFound,
		swerrors.ErrPending,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i == j {
				assert.ErrorIs(t, err1, err2, "error should match itself")
			} else {
				assert.NotErrorIs(t, err1, err2, "different errors should not match")
			}
		}
	}
}

func TestWrap_PreservesErrorChain(t *testing.T) {
	wrapped := swerrors.Wrap(swerrors.ErrConversion, "context message")

	require.ErrorIs(t, wrapped, swerrors.ErrConversion)
	assert.Equal(t, "context message: argument conversion failed", wrapped.Error())
}

func TestWrap_NilError(t *testing.T) {
	assert.NoError(t, swerrors.Wrap(nil, "should not appear"))
	assert.NoError(t, swerrors.Wrapf(nil, "should not appear %d", 1))
}

func TestWrapf_FormatsMessage(t *testing.T) {
	wrapped := swerrors.Wrapf(swerrors.ErrStepTimeout, "step %s", "steps.go:12")

	require.ErrorIs(t, wrapped, swerrors.ErrStepTimeout)
	assert.Contains(t, wrapped.Error(), "step steps.go:12")
}

func TestConfigf(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := swerrors.Configf("pattern %q has %d groups", "^a$", 0)

		require.ErrorIs(t, err, swerrors.ErrConfiguration)
		assert.Contains(t, err.Error(), `pattern "^a$" has 0 groups`)
	})

	t.Run("error argument is formatted not wrapped", func(t *testing.T) {
		cause := stderrors.New("boom")
		err := swerrors.Configf("step failed: %v", cause)

		require.ErrorIs(t, err, swerrors.ErrConfiguration)
		assert.NotErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "step failed: boom")
	})
}

func TestConfigWrap(t *testing.T) {
	t.Run("keeps both sentinel and cause", func(t *testing.T) {
		_, cause := strconv.Atoi("x")
		err := swerrors.ConfigWrap(cause, "delimiter %q", "[")

		require.ErrorIs(t, err, swerrors.ErrConfiguration)
		require.ErrorIs(t, err, strconv.ErrSyntax)
		assert.Contains(t, err.Error(), `delimiter "["`)
	})

	t.Run("nil cause", func(t *testing.T) {
		assert.NoError(t, swerrors.ConfigWrap(nil, "step at %s", "steps.go:1"))
	})
}

func TestConversionError(t *testing.T) {
	t.Run("matches sentinel and reason", func(t *testing.T) {
		_, reason := strconv.Atoi("abc")
		err := &swerrors.ConversionError{Text: "abc", Type: "int", Reason: reason}

		require.ErrorIs(t, err, swerrors.ErrConversion)
		require.ErrorIs(t, err, strconv.ErrSyntax)
		assert.Contains(t, err.Error(), `cannot convert "abc" into int`)
	})

	t.Run("includes suggestion", func(t *testing.T) {
		err := &swerrors.ConversionError{Text: "x", Type: "steps.Money", Suggestion: "type moneyTransformer struct{}"}

		assert.Contains(t, err.Error(), "Try writing your own transformer")
		assert.Contains(t, err.Error(), "type moneyTransformer struct{}")
	})

	t.Run("as target", func(t *testing.T) {
		wrapped := swerrors.Wrap(&swerrors.ConversionError{Text: "x", Type: "int"}, "parameter 0")

		var convErr *swerrors.ConversionError
		require.ErrorAs(t, wrapped, &convErr)
		assert.Equal(t, "x", convErr.Text)
	})
}

func TestAmbiguousMatchError(t *testing.T) {
	err := &swerrors.AmbiguousMatchError{Text: "I do X", Locations: []string{"a.go:1", "b.go:2"}}

	require.ErrorIs(t, err, swerrors.ErrAmbiguousMatch)
	assert.Contains(t, err.Error(), "a.go:1, b.go:2")
	assert.Contains(t, err.Error(), "matches 2 step definitions")
}

func TestTimeoutError(t *testing.T) {
	err := &swerrors.TimeoutError{Budget: 100 * time.Millisecond, Elapsed: 101 * time.Millisecond}

	require.ErrorIs(t, err, swerrors.ErrStepTimeout)
	assert.Contains(t, err.Error(), "budget 100ms")
}

func TestPanicError(t *testing.T) {
	err := &swerrors.PanicError{Value: "boom"}

	require.ErrorIs(t, err, swerrors.ErrProcedurePanicked)
	assert.NotErrorIs(t, err, swerrors.ErrProcedureFailed)
	assert.Equal(t, "step procedure panicked: boom", err.Error())
}

func TestExitCode2Error(t *testing.T) {
	inner := swerrors.ErrInvalidOutputFormat
	err := swerrors.Wrap(swerrors.NewExitCode2Error(inner), "flags")

	assert.True(t, swerrors.IsExitCode2Error(err))
	assert.False(t, swerrors.IsExitCode2Error(inner))
	require.ErrorIs(t, err, inner)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"sentinel", swerrors.ErrUndefinedStep, "No step definition matches this step."},
		{"wrapped", swerrors.Wrap(swerrors.ErrStepTimeout, "x"), "The step did not finish within its time budget."},
		{"typed", &swerrors.AmbiguousMatchError{Text: "t"}, "More than one step definition matches this step."},
		{"locked", fmt.Errorf("metrics.prom.lock: %w", swerrors.ErrFileLocked), "Another stepwire process is writing the same file."},
		{"unknown", stderrors.New("plain failure"), "plain failure"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, swerrors.UserMessage(tc.err))
		})
	}
}

func TestActionable_SpecificBeforeGeneric(t *testing.T) {
	// ErrMissingArgument errors are also conversion failures in practice;
	// the more specific entry must win.
	err := stderrors.Join(swerrors.ErrMissingArgument, swerrors.ErrConversion)

	msg, action := swerrors.Actionable(err)

	assert.Contains(t, msg, "optional capture group")
	assert.Contains(t, action, "pointer")
}

func TestActionable_Nil(t *testing.T) {
	msg, action := swerrors.Actionable(nil)

	assert.Empty(t, msg)
	assert.Empty(t, action)
}
