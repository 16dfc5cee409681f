package glue

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/mrz1836/stepwire/internal/constants"
	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/logging"
)

// Outcome is the result of running one step.
type Outcome struct {
	Status  constants.StepStatus
	Err     error
	Args    []any
	Elapsed time.Duration
}

// Bind converts the match's arguments for its definition's parameters
// without invoking anything.
func (g *Glue) Bind(m Match, locale language.Tag) ([]any, error) {
	def := m.Definition
	if len(m.Arguments) != def.ParameterCount() {
		return nil, swerrors.Wrapf(swerrors.ErrArgumentCountMismatch,
			"step %s captured %d arguments for %d parameters", def.Location(), len(m.Arguments), def.ParameterCount())
	}

	cctx := g.conversionContext(locale)
	conv := g.currentConverter()

	args := make([]any, len(m.Arguments))
	for i, arg := range m.Arguments {
		v, err := conv.Convert(cctx, arg, def.Parameter(i))
		if err != nil {
			return nil, swerrors.Wrapf(err, "parameter %d of %s", i+1, def.Location())
		}
		args[i] = v
	}
	return args, nil
}

// BindAndInvoke converts the arguments and invokes the definition.
// Every failure is reported through the Outcome's status and error.
func (g *Glue) BindAndInvoke(ctx context.Context, m Match, locale language.Tag) Outcome {
	start := g.clock.Now()

	args, err := g.Bind(m, locale)
	if err != nil {
		return g.outcome(m, Outcome{Status: constants.StepStatusFailed, Err: err, Elapsed: g.clock.Since(start)})
	}

	err = m.Definition.Invoke(ctx, locale, args)
	out := Outcome{Status: statusOf(err), Err: err, Args: args, Elapsed: g.clock.Since(start)}
	return g.outcome(m, out)
}

// Execute looks text up and, when exactly one definition matches, binds
// and invokes it. Undefined and ambiguous steps are reported as statuses.
func (g *Glue) Execute(ctx context.Context, text string, locale language.Tag) Outcome {
	m, err := g.Lookup(text)
	if err != nil {
		return Outcome{Status: statusOf(err), Err: err}
	}
	return g.BindAndInvoke(ctx, m, locale)
}

// statusOf classifies an error from lookup or invocation.
func statusOf(err error) constants.StepStatus {
	var timeoutErr *swerrors.TimeoutError
	switch {
	case err == nil:
		return constants.StepStatusPassed
	case errors.Is(err, swerrors.ErrUndefinedStep):
		return constants.StepStatusUndefined
	case errors.Is(err, swerrors.ErrAmbiguousMatch):
		return constants.StepStatusAmbiguous
	case errors.As(err, &timeoutErr):
		return constants.StepStatusTimedOut
	case errors.Is(err, swerrors.ErrPending):
		return constants.StepStatusPending
	default:
		return constants.StepStatusFailed
	}
}

func (g *Glue) outcome(m Match, out Outcome) Outcome {
	level := zerolog.DebugLevel
	if out.Status.IsFailure() {
		level = zerolog.WarnLevel
	}

	event := g.logger.WithLevel(level). //nolint:zerologlint // dispatched below
						Str("location", m.Definition.Location().String()).
						Str("status", out.Status.String()).
						Int64("duration_ms", out.Elapsed.Milliseconds())
	if out.Err != nil {
		event = event.Str("error", logging.RedactStepText(out.Err.Error()))
	}
	event.Msg("step invoked")

	return out
}
