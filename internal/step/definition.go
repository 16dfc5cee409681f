// Package step defines the bound step definition: a pattern, the
// descriptors of its parameters, and the procedure invoked with converted
// arguments under an optional time budget.
package step

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/mrz1836/stepwire/internal/convert"
	"github.com/mrz1836/stepwire/internal/ctxutil"
	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/match"
	"github.com/mrz1836/stepwire/internal/timeout"
)

// Procedure is the code bound to a step. args holds one converted value
// per parameter, in declaration order. The locale the arguments were
// converted with is available through ctxutil.Locale.
type Procedure func(ctx context.Context, args []any) error

// Config holds everything needed to build a Definition.
type Config struct {
	Matcher    *match.Matcher
	Parameters []convert.Descriptor
	Location   Location
	// Timeout bounds each invocation; zero or less is unbounded.
	Timeout   time.Duration
	Procedure Procedure
	// Invoker runs the procedure. Nil uses a process-wide default.
	Invoker *timeout.Invoker
}

// Definition is an immutable, registered step definition.
// It is safe for concurrent use.
type Definition struct {
	matcher   *match.Matcher
	params    []convert.Descriptor
	location  Location
	timeout   time.Duration
	procedure Procedure
	invoker   *timeout.Invoker
}

//nolint:gochecknoglobals // lazily built shared pool
var defaultInvoker = sync.OnceValue(func() *timeout.Invoker { return timeout.New() })

// New validates cfg and builds a Definition. The number of parameters must
// equal the number of capture groups in the pattern.
func New(cfg Config) (*Definition, error) {
	if cfg.Matcher == nil {
		return nil, swerrors.Configf("step at %s has no pattern", cfg.Location)
	}
	if cfg.Procedure == nil {
		return nil, swerrors.Configf("step %q at %s has no procedure", cfg.Matcher, cfg.Location)
	}
	if got, want := len(cfg.Parameters), cfg.Matcher.NumGroups(); got != want {
		return nil, fmt.Errorf("%w: step %q at %s declares %d parameters for %d capture groups: %w",
			swerrors.ErrConfiguration, cfg.Matcher, cfg.Location, got, want, swerrors.ErrArgumentCountMismatch)
	}

	inv := cfg.Invoker
	if inv == nil {
		inv = defaultInvoker()
	}

	return &Definition{
		matcher:   cfg.Matcher,
		params:    append([]convert.Descriptor(nil), cfg.Parameters...),
		location:  cfg.Location,
		timeout:   cfg.Timeout,
		procedure: cfg.Procedure,
		invoker:   inv,
	}, nil
}

// Matches applies the pattern to text.
func (d *Definition) Matches(text string) ([]match.Argument, bool) {
	return d.matcher.Match(text)
}

// ParameterCount returns the number of declared parameters.
func (d *Definition) ParameterCount() int {
	return len(d.params)
}

// Parameter returns the descriptor of parameter i.
func (d *Definition) Parameter(i int) convert.Descriptor {
	return d.params[i]
}

// Location returns where the definition was declared.
func (d *Definition) Location() Location {
	return d.location
}

// Pattern returns the pattern source.
func (d *Definition) Pattern() string {
	return d.matcher.String()
}

// Timeout returns the per-invocation budget; zero or less is unbounded.
func (d *Definition) Timeout() time.Duration {
	return d.timeout
}

// IsDefinedAt reports whether the definition was declared in file.
func (d *Definition) IsDefinedAt(file string) bool {
	return d.location.In(file)
}

// String returns "pattern (location)".
func (d *Definition) String() string {
	return fmt.Sprintf("%s (%s)", d.matcher, d.location)
}

// Invoke calls the procedure with already converted args under the
// definition's time budget. Procedure errors and panics are wrapped with
// ErrProcedureFailed; exceeding the budget returns a *errors.TimeoutError.
// Cancellation of ctx is returned as the context's error.
func (d *Definition) Invoke(ctx context.Context, locale language.Tag, args []any) error {
	if len(args) != len(d.params) {
		return swerrors.Wrapf(swerrors.ErrArgumentCountMismatch, "step %s got %d arguments for %d parameters",
			d.location, len(args), len(d.params))
	}

	ctx = ctxutil.WithLocale(ctx, locale)
	res := d.invoker.Invoke(ctx, func(ctx context.Context) error {
		return d.procedure(ctx, args)
	}, d.timeout)

	switch res.State {
	case timeout.Completed:
		return nil
	case timeout.TimedOut:
		return res.Err
	default:
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(res.Err, ctxErr) {
			return res.Err
		}
		return fmt.Errorf("%w: %s: %w", swerrors.ErrProcedureFailed, d.location, res.Err)
	}
}
