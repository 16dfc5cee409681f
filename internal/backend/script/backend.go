// Package script loads step definitions from YAML step files whose bodies
// are expr-lang expressions.
//
// A step file looks like:
//
//	steps:
//	  - pattern: '^I have (\d+) cukes$'
//	    params:
//	      - type: int
//	    timeout: 500
//	    body: set("cukes", args[0])
//	  - pattern: '^I should have (\d+) cukes$'
//	    params:
//	      - type: int
//	    body: get("cukes") == args[0]
//
// Bodies see the converted arguments as args, the scenario's values as
// world, and the functions set, get, fail and pending. A body that
// evaluates to false fails its step.
package script

import (
	"context"
	"sync"
	"time"

	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog"

	"github.com/mrz1836/stepwire/internal/backend"
	"github.com/mrz1836/stepwire/internal/convert"
	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/glue"
	"github.com/mrz1836/stepwire/internal/snippet"
	"github.com/mrz1836/stepwire/internal/step"
)

// Name is the backend's name.
const Name = "script"

// Backend is the YAML/expr step backend.
type Backend struct {
	mu      sync.Mutex
	paths   []string
	loader  *Loader
	factory *backend.ObjectFactory
	logger  zerolog.Logger
	loaded  bool
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

// WithBasePath resolves relative step paths against dir.
func WithBasePath(dir string) Option {
	return func(b *Backend) {
		b.loader = NewLoader(dir)
	}
}

// New creates a backend reading the given files, directories or globs.
func New(paths []string, opts ...Option) *Backend {
	b := &Backend{
		paths:   append([]string(nil), paths...),
		loader:  NewLoader(""),
		factory: backend.NewObjectFactory(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	// Cannot fail: the factory is new and the type is fixed.
	_ = backend.Provide(b.factory, func() (*Vars, error) { return NewVars(), nil })
	return b
}

// Name implements backend.Backend.
func (b *Backend) Name() string {
	return Name
}

// IsolatedWorlds implements backend.Isolated.
func (b *Backend) IsolatedWorlds() bool {
	return true
}

// Load parses and compiles every step file, registering each step.
// A parse or compile failure aborts the load.
func (b *Backend) Load(ctx context.Context, reg glue.Registrar) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loaded {
		return swerrors.Configf("script backend already loaded")
	}
	b.loaded = true

	if len(b.paths) == 0 {
		return nil
	}
	files, err := b.loader.Files(b.paths)
	if err != nil {
		return err
	}

	total := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		steps, err := b.loader.LoadFile(file)
		if err != nil {
			return err
		}
		for _, s := range steps {
			if err := b.register(reg, s); err != nil {
				return err
			}
		}
		total += len(steps)
		b.logger.Debug().Str("file", file).Int("steps", len(steps)).Msg("step file loaded")
	}

	b.logger.Debug().Int("files", len(files)).Int("steps", total).Msg("script steps loaded")
	return nil
}

func (b *Backend) register(reg glue.Registrar, s FileStep) error {
	params := make([]convert.Descriptor, len(s.Params))
	for i, p := range s.Params {
		d, err := descriptor(p, reg.Transformers())
		if err != nil {
			return swerrors.Wrapf(err, "step %s param %d", s.Location(), i+1)
		}
		params[i] = d
	}

	program, err := compile(s.Body, s.Location())
	if err != nil {
		return err
	}

	_, err = reg.Register(s.Pattern, params, s.Location(), time.Duration(s.Timeout)*time.Millisecond, b.procedure(program))
	return err
}

func descriptor(p FileParam, transformers *convert.TransformerRegistry) (convert.Descriptor, error) {
	typ, err := paramType(p.Type)
	if err != nil {
		return convert.Descriptor{}, err
	}

	builder := convert.NewBuilder(typ).Format(p.Format)
	if p.Delimiter != "" {
		builder.Delimiter(p.Delimiter)
	}
	if p.Transform != "" {
		builder.Transform(p.Transform)
	}
	if p.Optional {
		builder.Optional()
	}
	return builder.Build(transformers)
}

func (b *Backend) procedure(program *vm.Program) step.Procedure {
	return func(ctx context.Context, args []any) error {
		w, err := backend.WorldFrom(ctx, b)
		if err != nil {
			return err
		}
		vars, err := backend.Instance[*Vars](w)
		if err != nil {
			return err
		}
		return run(program, vars, args)
	}
}

// Vars returns the current scenario's values carried by ctx.
func (b *Backend) Vars(ctx context.Context) (*Vars, error) {
	w, err := backend.WorldFrom(ctx, b)
	if err != nil {
		return nil, err
	}
	return backend.Instance[*Vars](w)
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
	return snippet.For(snippet.StyleScript, text)
}
