package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"sync"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

// Disposer is implemented by world instances that need cleanup with a context.
type Disposer interface {
	Dispose(ctx context.Context) error
}

// Constructor builds one world instance.
type Constructor func() (any, error)

// ObjectFactory holds the constructors for world instances, keyed by type.
// It is safe for concurrent use once populated.
type ObjectFactory struct {
	mu    sync.RWMutex
	ctors map[reflect.Type]Constructor
}

// NewObjectFactory creates an empty factory.
func NewObjectFactory() *ObjectFactory {
	return &ObjectFactory{ctors: make(map[reflect.Type]Constructor)}
}

// Add registers the constructor for typ. Adding a type twice is a
// configuration error.
func (f *ObjectFactory) Add(typ reflect.Type, ctor Constructor) error {
	if typ == nil || ctor == nil {
		return swerrors.Configf("world constructor needs a type and a function")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.ctors[typ]; exists {
		return swerrors.Configf("world type %s already has a constructor", typ)
	}
	f.ctors[typ] = ctor
	return nil
}

// Provide registers a constructor for T.
func Provide[T any](f *ObjectFactory, ctor func() (T, error)) error {
	return f.Add(reflect.TypeFor[T](), func() (any, error) { return ctor() })
}

// Has reports whether typ has a constructor.
func (f *ObjectFactory) Has(typ reflect.Type) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ctors[typ]
	return ok
}

// Types returns the constructible types sorted by name.
func (f *ObjectFactory) Types() []reflect.Type {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]reflect.Type, 0, len(f.ctors))
	for t := range f.ctors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })
	return types
}

// NewWorld starts an empty world. Instances are built on first use.
func (f *ObjectFactory) NewWorld() *World {
	return &World{factory: f, instances: make(map[reflect.Type]any)}
}

func (f *ObjectFactory) constructor(typ reflect.Type) (Constructor, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ctor, ok := f.ctors[typ]
	return ctor, ok
}

// World is the set of instances built for one scenario.
// Procedures abandoned by a timeout may still reach it, so access is locked.
type World struct {
	mu        sync.Mutex
	factory   *ObjectFactory
	instances map[reflect.Type]any
	order     []reflect.Type
	disposed  bool
}

// Get returns the world's instance of typ, building it on first use.
func (w *World) Get(typ reflect.Type) (any, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.disposed {
		return nil, swerrors.Wrapf(swerrors.ErrWorldNotStarted, "instance of %s requested after dispose", typ)
	}
	if inst, ok := w.instances[typ]; ok {
		return inst, nil
	}

	ctor, ok := w.factory.constructor(typ)
	if !ok {
		return nil, swerrors.Configf("no world constructor for %s", typ)
	}
	inst, err := ctor()
	if err != nil {
		return nil, swerrors.Wrapf(err, "construct %s", typ)
	}
	w.instances[typ] = inst
	w.order = append(w.order, typ)
	return inst, nil
}

// Instance returns the world's instance of T.
func Instance[T any](w *World) (T, error) {
	var zero T
	inst, err := w.Get(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("world constructor for %s returned %T", reflect.TypeFor[T](), inst)
	}
	return typed, nil
}

// Len returns the number of instances built so far.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.instances)
}

// Dispose releases the instances in reverse creation order, calling
// Dispose or Close where implemented. Only the first call has any effect.
func (w *World) Dispose(ctx context.Context) error {
	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return nil
	}
	w.disposed = true
	order, instances := w.order, w.instances
	w.order, w.instances = nil, nil
	w.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		if err := disposeInstance(ctx, instances[order[i]]); err != nil {
			errs = append(errs, swerrors.Wrapf(err, "dispose %s", order[i]))
		}
	}
	return errors.Join(errs...)
}

func disposeInstance(ctx context.Context, inst any) error {
	switch v := inst.(type) {
	case Disposer:
		return v.Dispose(ctx)
	case io.Closer:
		return v.Close()
	default:
		return nil
	}
}
