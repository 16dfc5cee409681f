package cli

import (
	"context"

	"github.com/mrz1836/stepwire/internal/backend"
	"github.com/mrz1836/stepwire/internal/backend/script"
	"github.com/mrz1836/stepwire/internal/config"
	"github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/glue"
	"github.com/mrz1836/stepwire/internal/timeout"
)

// loadSteps builds a glue from cfg and loads every backend into it: the
// script steps under cfg.Steps.Paths first, then the embedded backends.
func (a *app) loadSteps(ctx context.Context, cfg *config.Config) (*glue.Glue, *backend.Set, error) {
	logger := GetLogger()

	invoker := timeout.New(
		timeout.WithPoolSize(cfg.Execution.PoolSize),
		timeout.WithLogger(logger),
	)
	g := glue.New(
		glue.WithInvoker(invoker),
		glue.WithDefaultTimeout(cfg.Steps.DefaultTimeout),
		glue.WithLogger(logger),
	)

	backends := make([]backend.Backend, 0, len(a.backends)+1)
	if len(cfg.Steps.Paths) > 0 {
		backends = append(backends, script.New(cfg.Steps.Paths, script.WithLogger(logger)))
	}
	backends = append(backends, a.backends...)
	if len(backends) == 0 {
		return nil, nil, errors.NewExitCode2Error(errors.Wrap(errors.ErrConfigInvalidSteps,
			"no step definitions configured: set steps.paths or pass --steps"))
	}

	set := backend.NewSet(logger, backends...)
	if err := set.Load(ctx, g); err != nil {
		return nil, nil, errors.Wrap(err, "load step definitions")
	}

	logger.Debug().
		Int("definitions", g.Len()).
		Int("backends", len(backends)).
		Msg("step definitions loaded")

	return g, set, nil
}
