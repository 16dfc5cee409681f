// Package glue is the registry of step definitions.
//
// Backends register definitions through the Registrar interface while they
// load. Runners then resolve step text to exactly one definition with
// Lookup, and BindAndInvoke converts the matched arguments and calls the
// procedure. Matching and conversion have no side effects and are safe
// from any goroutine.
package glue

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/mrz1836/stepwire/internal/clock"
	"github.com/mrz1836/stepwire/internal/convert"
	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/match"
	"github.com/mrz1836/stepwire/internal/step"
	"github.com/mrz1836/stepwire/internal/timeout"
)

// Registrar is the registration surface handed to backends.
type Registrar interface {
	// Register builds and stores a definition. A timeout of zero uses the
	// registry's default; a negative timeout is unbounded.
	Register(pattern string, params []convert.Descriptor, loc step.Location,
		timeout time.Duration, proc step.Procedure) (*step.Definition, error)

	// RegisterEnum makes enum sets available to argument conversion.
	RegisterEnum(sets ...*convert.EnumSet)

	// Transformers returns the registry named transform modifiers resolve from.
	Transformers() *convert.TransformerRegistry
}

// Glue holds the registered step definitions.
type Glue struct {
	mu           sync.RWMutex
	defs         []*step.Definition
	converter    *convert.Converter
	sources      []SnippetSource
	transformers *convert.TransformerRegistry
	invoker      *timeout.Invoker
	timeout      time.Duration
	clock        clock.Clock
	logger       zerolog.Logger
	contexts     sync.Map // language.Tag -> convert.Context
}

// Ensure Glue implements Registrar.
var _ Registrar = (*Glue)(nil)

// Option configures a Glue.
type Option func(*Glue)

// WithTransformers sets the transformer registry. The default registry
// holds the built-in transformers.
func WithTransformers(r *convert.TransformerRegistry) Option {
	return func(g *Glue) {
		g.transformers = r
	}
}

// WithConverter sets the base converter.
func WithConverter(c *convert.Converter) Option {
	return func(g *Glue) {
		g.converter = c
	}
}

// WithInvoker sets the timeout invoker shared by every definition.
func WithInvoker(inv *timeout.Invoker) Option {
	return func(g *Glue) {
		g.invoker = inv
	}
}

// WithDefaultTimeout sets the budget for definitions that do not set one.
func WithDefaultTimeout(d time.Duration) Option {
	return func(g *Glue) {
		g.timeout = d
	}
}

// WithClock sets the clock used to time invocations.
func WithClock(c clock.Clock) Option {
	return func(g *Glue) {
		g.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Glue) {
		g.logger = logger
	}
}

// New creates an empty Glue.
func New(opts ...Option) *Glue {
	g := &Glue{
		converter:    convert.NewConverter(),
		transformers: convert.DefaultTransformers(),
		clock:        clock.RealClock{},
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.invoker == nil {
		g.invoker = timeout.New(timeout.WithLogger(g.logger))
	}
	return g
}

// Register implements Registrar. An invalid pattern or a parameter count
// that differs from the pattern's capture groups is a configuration error.
// A pattern identical to an existing one is accepted with a warning; the
// overlap is reported as ambiguous when a step matches both.
func (g *Glue) Register(pattern string, params []convert.Descriptor, loc step.Location,
	budget time.Duration, proc step.Procedure,
) (*step.Definition, error) {
	m, err := match.New(pattern)
	if err != nil {
		return nil, swerrors.ConfigWrap(err, "step at %s", loc)
	}

	switch {
	case budget == 0:
		budget = g.timeout
	case budget < 0:
		budget = 0
	}

	def, err := step.New(step.Config{
		Matcher:    m,
		Parameters: params,
		Location:   loc,
		Timeout:    budget,
		Procedure:  proc,
		Invoker:    g.invoker,
	})
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, existing := range g.defs {
		if existing.Pattern() == def.Pattern() {
			g.logger.Warn().
				Str("pattern", def.Pattern()).
				Str("location", loc.String()).
				Str("existing_location", existing.Location().String()).
				Msg("duplicate step pattern")
			break
		}
	}
	g.defs = append(g.defs, def)

	g.logger.Debug().
		Str("pattern", def.Pattern()).
		Str("location", loc.String()).
		Dur("timeout", def.Timeout()).
		Msg("registered step definition")

	return def, nil
}

// RegisterEnum implements Registrar.
func (g *Glue) RegisterEnum(sets ...*convert.EnumSet) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.converter = g.converter.With(sets...)
}

// Transformers implements Registrar.
func (g *Glue) Transformers() *convert.TransformerRegistry {
	return g.transformers
}

// Definitions returns the registered definitions in registration order.
func (g *Glue) Definitions() []*step.Definition {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*step.Definition(nil), g.defs...)
}

// Len returns the number of registered definitions.
func (g *Glue) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.defs)
}

// conversionContext returns the cached conversion context for tag.
func (g *Glue) conversionContext(tag language.Tag) convert.Context {
	if cached, ok := g.contexts.Load(tag); ok {
		return cached.(convert.Context) //nolint:forcetypeassert // only Contexts are stored
	}
	ctx := convert.NewContext(tag)
	g.contexts.Store(tag, ctx)
	return ctx
}

func (g *Glue) currentConverter() *convert.Converter {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.converter
}
