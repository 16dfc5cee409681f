// Package gobackend binds Go functions to step patterns.
//
// Steps are registered explicitly:
//
//	b := gobackend.New()
//	b.Given(`^I have (\d+) cukes in my belly$`, (*Belly).HaveCukes)
//	b.Then(`^I am (\w+)$`, func(ctx context.Context, mood string) error { ... })
//
// The first parameter of a method expression is its receiver; receivers are
// built per scenario from the world, so every scenario sees fresh values.
// A context.Context parameter, first after any receiver, receives the
// invocation context. The remaining parameters are step arguments.
package gobackend

import (
	"context"
	"reflect"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/stepwire/internal/backend"
	"github.com/mrz1836/stepwire/internal/convert"
	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/glue"
	"github.com/mrz1836/stepwire/internal/snippet"
	"github.com/mrz1836/stepwire/internal/step"
)

// ErrPending is returned by step functions that are not written yet.
var ErrPending = swerrors.ErrPending

// Name is the backend's name.
const Name = "go"

// registration is one step recorded before Load.
type registration struct {
	pattern string
	fn      any
	cfg     stepConfig
}

// Backend is the Go function backend.
type Backend struct {
	mu      sync.Mutex
	steps   []registration
	enums   []*convert.EnumSet
	errs    []error
	loaded  bool
	factory *backend.ObjectFactory
	logger  zerolog.Logger
}

// Compile-time checks.
var (
	_ backend.Backend  = (*Backend)(nil)
	_ backend.Isolated = (*Backend)(nil)
)

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// New creates an empty Go backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		factory: backend.NewObjectFactory(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Given registers a step. Given, When, Then and Step are interchangeable;
// the keyword only documents intent.
func (b *Backend) Given(pattern string, fn any, opts ...StepOption) {
	b.add(pattern, fn, opts)
}

// When registers a step.
func (b *Backend) When(pattern string, fn any, opts ...StepOption) {
	b.add(pattern, fn, opts)
}

// Then registers a step.
func (b *Backend) Then(pattern string, fn any, opts ...StepOption) {
	b.add(pattern, fn, opts)
}

// Step registers a step.
func (b *Backend) Step(pattern string, fn any, opts ...StepOption) {
	b.add(pattern, fn, opts)
}

// add must be called directly by the exported registration methods so the
// caller's location is two frames up.
func (b *Backend) add(pattern string, fn any, opts []StepOption) {
	cfg := stepConfig{}
	if _, file, line, ok := runtime.Caller(2); ok {
		cfg.location = step.Location{File: file, Line: line}
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.steps = append(b.steps, registration{pattern: pattern, fn: fn, cfg: cfg})
}

// Enum makes enum sets available to the backend's step arguments.
func (b *Backend) Enum(sets ...*convert.EnumSet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enums = append(b.enums, sets...)
}

// Provide registers the constructor used to build T for each world.
// Receiver types without a constructor are built as zero values.
func Provide[T any](b *Backend, ctor func() (T, error)) {
	if err := backend.Provide(b.factory, ctor); err != nil {
		b.mu.Lock()
		b.errs = append(b.errs, err)
		b.mu.Unlock()
	}
}

// Instance returns the current scenario's T from ctx.
func Instance[T any](ctx context.Context, b *Backend) (T, error) {
	var zero T
	w, err := backend.WorldFrom(ctx, b)
	if err != nil {
		return zero, err
	}
	return backend.Instance[T](w)
}

// Name implements backend.Backend.
func (b *Backend) Name() string {
	return Name
}

// IsolatedWorlds implements backend.Isolated.
func (b *Backend) IsolatedWorlds() bool {
	return true
}

// Load registers every recorded step with reg. It fails on the first
// invalid step and may only run once.
func (b *Backend) Load(_ context.Context, reg glue.Registrar) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loaded {
		return swerrors.Configf("go backend already loaded")
	}
	b.loaded = true

	if len(b.errs) > 0 {
		return b.errs[0]
	}
	reg.RegisterEnum(b.enums...)

	for _, r := range b.steps {
		if err := b.register(reg, r); err != nil {
			return err
		}
	}

	b.logger.Debug().Int("steps", len(b.steps)).Msg("go steps loaded")
	return nil
}

func (b *Backend) register(reg glue.Registrar, r registration) error {
	sig, err := inspect(r.fn, r.cfg.location)
	if err != nil {
		return err
	}

	if sig.receiver != nil && !b.factory.Has(sig.receiver) {
		elem := sig.receiver.Elem()
		if err := b.factory.Add(sig.receiver, func() (any, error) {
			return reflect.New(elem).Interface(), nil
		}); err != nil {
			return err
		}
	}

	params := make([]convert.Descriptor, len(sig.args))
	for i, typ := range sig.args {
		builder := convert.NewBuilder(typ)
		for _, mod := range r.cfg.params[i] {
			mod(builder)
		}
		d, err := builder.Build(reg.Transformers())
		if err != nil {
			return swerrors.Wrapf(err, "step %s argument %d", r.cfg.location, i)
		}
		params[i] = d
	}
	for i := range r.cfg.params {
		if i < 0 || i >= len(sig.args) {
			return swerrors.Configf("step at %s has a modifier for argument %d but takes %d arguments",
				r.cfg.location, i, len(sig.args))
		}
	}

	_, err = reg.Register(r.pattern, params, r.cfg.location, r.cfg.timeout, b.procedure(sig))
	return err
}

// procedure adapts a Go function to step.Procedure.
func (b *Backend) procedure(sig signature) step.Procedure {
	return func(ctx context.Context, args []any) error {
		in := make([]reflect.Value, 0, sig.fn.Type().NumIn())

		if sig.receiver != nil {
			w, err := backend.WorldFrom(ctx, b)
			if err != nil {
				return err
			}
			recv, err := w.Get(sig.receiver)
			if err != nil {
				return err
			}
			in = append(in, reflect.ValueOf(recv))
		}
		if sig.context {
			in = append(in, reflect.ValueOf(ctx))
		}
		for i, arg := range args {
			v := reflect.ValueOf(arg)
			if !v.IsValid() {
				v = reflect.Zero(sig.args[i])
			}
			in = append(in, v)
		}

		out := sig.fn.Call(in)
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error) //nolint:forcetypeassert // checked by inspect
		}
		return nil
	}
}

// NewWorld implements backend.Backend.
func (b *Backend) NewWorld(ctx context.Context) (context.Context, error) {
	return backend.WithWorld(ctx, b, b.factory.NewWorld()), nil
}

// DisposeWorld implements backend.Backend.
func (b *Backend) DisposeWorld(ctx context.Context) error {
	w, err := backend.WorldFrom(ctx, b)
	if err != nil {
		return err
	}
	return w.Dispose(ctx)
}

// Snippet implements backend.Backend.
func (b *Backend) Snippet(text string) string {
	return snippet.For(snippet.StyleGo, text)
}
