// Package backend defines the contract between the step registry and the
// providers of step definitions.
//
// A Backend discovers its procedures once in Load, registering each with
// the glue. For every scenario it creates a fresh world in NewWorld and
// releases it in DisposeWorld. Worlds travel in the context passed to step
// procedures, so concurrent scenarios never observe each other's state.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/glue"
)

// Backend is a pluggable provider of step definitions and world lifecycle.
type Backend interface {
	// Name identifies the backend in logs and listings.
	Name() string

	// Load discovers procedures and registers them. It runs once per
	// process; configuration errors returned here abort the run.
	Load(ctx context.Context, reg glue.Registrar) error

	// NewWorld creates the instances for the next scenario and returns a
	// context carrying them.
	NewWorld(ctx context.Context) (context.Context, error)

	// DisposeWorld releases the world carried by ctx.
	DisposeWorld(ctx context.Context) error

	// Snippet suggests a definition for undefined step text, in the
	// backend's own syntax.
	Snippet(text string) string
}

// Isolated is implemented by backends whose worlds live only in the
// context returned by NewWorld. Scenarios may run in parallel only when
// every backend reports true.
type Isolated interface {
	IsolatedWorlds() bool
}

// Set is an ordered group of backends sharing one registry.
type Set struct {
	backends []Backend
	logger   zerolog.Logger
}

// NewSet creates a set. Backends are loaded, started and asked for
// snippets in the given order; worlds are disposed in reverse order.
func NewSet(logger zerolog.Logger, backends ...Backend) *Set {
	return &Set{backends: backends, logger: logger}
}

// Backends returns the backends in order.
func (s *Set) Backends() []Backend {
	return append([]Backend(nil), s.backends...)
}

// Load loads every backend into g and registers each as a snippet source.
func (s *Set) Load(ctx context.Context, g *glue.Glue) error {
	for _, b := range s.backends {
		before := g.Len()
		if err := b.Load(ctx, g); err != nil {
			return swerrors.Wrapf(err, "load %s backend", b.Name())
		}
		g.AddSnippetSource(b)

		s.logger.Debug().
			Str("backend", b.Name()).
			Int("definitions", g.Len()-before).
			Msg("backend loaded")
	}
	return nil
}

// Isolated reports whether every backend keeps its worlds context-scoped.
// It returns ErrWorldsNotIsolated naming the first backend that does not.
func (s *Set) Isolated() error {
	for _, b := range s.backends {
		iso, ok := b.(Isolated)
		if !ok || !iso.IsolatedWorlds() {
			return fmt.Errorf("%w: %w: %s", swerrors.ErrConfiguration, swerrors.ErrWorldsNotIsolated, b.Name())
		}
	}
	return nil
}

// StartWorlds asks every backend for a new world. When one fails, the
// worlds already started are disposed before returning. The returned
// context must be passed to DisposeWorlds.
func (s *Set) StartWorlds(ctx context.Context) (context.Context, error) {
	started := ctx
	for i, b := range s.backends {
		next, err := b.NewWorld(started)
		if err != nil {
			startErr := swerrors.Wrapf(err, "start %s world", b.Name())
			if disposeErr := s.dispose(started, s.backends[:i]); disposeErr != nil {
				return ctx, errors.Join(startErr, disposeErr)
			}
			return ctx, startErr
		}
		started = next
	}
	return started, nil
}

// DisposeWorlds disposes every backend's world in reverse order. Every
// backend is asked even when an earlier one fails; the errors are joined.
func (s *Set) DisposeWorlds(ctx context.Context) error {
	return s.dispose(ctx, s.backends)
}

func (s *Set) dispose(ctx context.Context, backends []Backend) error {
	var errs []error
	for i := len(backends) - 1; i >= 0; i-- {
		b := backends[i]
		if err := b.DisposeWorld(ctx); err != nil {
			s.logger.Warn().Err(err).Str("backend", b.Name()).Msg("dispose world failed")
			errs = append(errs, swerrors.Wrapf(err, "dispose %s world", b.Name()))
		}
	}
	return errors.Join(errs...)
}
