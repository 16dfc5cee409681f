package convert

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

// Transformer converts raw matched text into a value on its own terms.
// A descriptor with a transformer bypasses every built-in conversion rule.
// Transform receives the descriptor and context so it can read the
// declared type, format hint and locale.
type Transformer interface {
	Transform(ctx Context, d Descriptor, raw string) (any, error)
}

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc func(ctx Context, d Descriptor, raw string) (any, error)

// Transform implements Transformer.
func (f TransformerFunc) Transform(ctx Context, d Descriptor, raw string) (any, error) {
	return f(ctx, d, raw)
}

// TransformerFactory constructs a Transformer. Factories run when a
// descriptor naming them is built, so a broken transformer fails
// registration rather than the step that uses it.
type TransformerFactory func() (Transformer, error)

// TransformerRegistry maps transform modifier names to factories.
// Register everything before loading step definitions; it is safe for
// concurrent reads afterwards.
type TransformerRegistry struct {
	mu        sync.RWMutex
	factories map[string]TransformerFactory
}

// NewTransformerRegistry creates an empty registry.
func NewTransformerRegistry() *TransformerRegistry {
	return &TransformerRegistry{factories: make(map[string]TransformerFactory)}
}

// DefaultTransformers returns a registry holding the built-in transformers:
//
//   - "time": parses a time.Time using the descriptor's format as layout
//     (time.RFC3339 when no format is given).
func DefaultTransformers() *TransformerRegistry {
	r := NewTransformerRegistry()
	r.MustRegister("time", func() (Transformer, error) { return TransformerFunc(transformTime), nil })
	return r
}

// MustRegister is like Register but panics on error. It suits built-in
// and package-level registrations whose names are fixed.
func (r *TransformerRegistry) MustRegister(name string, factory TransformerFactory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Register adds a named factory. Empty names, nil factories and duplicates
// are configuration errors.
func (r *TransformerRegistry) Register(name string, factory TransformerFactory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return swerrors.Configf("transformer name is required")
	}
	if factory == nil {
		return swerrors.Configf("transformer %q has a nil factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return swerrors.Configf("transformer %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Resolve constructs the transformer registered under name.
func (r *TransformerRegistry) Resolve(name string) (Transformer, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", swerrors.ErrConfiguration, swerrors.ErrTransformerNotFound, name)
	}

	t, err := factory()
	if err != nil {
		return nil, swerrors.ConfigWrap(err, "transformer %q cannot be instantiated", name)
	}
	if t == nil {
		return nil, swerrors.Configf("transformer %q factory returned nil", name)
	}
	return t, nil
}

// Names returns the registered transformer names in sorted order.
func (r *TransformerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func transformTime(_ Context, d Descriptor, raw string) (any, error) {
	layout := d.Format()
	if layout == "" {
		layout = time.RFC3339
	}
	return time.Parse(layout, strings.TrimSpace(raw))
}
