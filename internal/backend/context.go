package backend

import (
	"context"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

type worldKey struct {
	owner any
}

// WithWorld returns a context carrying w for owner. owner is usually the
// backend itself and must be comparable.
func WithWorld(ctx context.Context, owner any, w *World) context.Context {
	return context.WithValue(ctx, worldKey{owner: owner}, w)
}

// WorldFrom returns owner's world carried by ctx.
// It returns ErrWorldNotStarted outside a scenario.
func WorldFrom(ctx context.Context, owner any) (*World, error) {
	if w, ok := ctx.Value(worldKey{owner: owner}).(*World); ok {
		return w, nil
	}
	return nil, swerrors.ErrWorldNotStarted
}
