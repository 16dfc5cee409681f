package gobackend

import (
	"time"

	"github.com/mrz1836/stepwire/internal/convert"
	"github.com/mrz1836/stepwire/internal/step"
)

// StepOption modifies one step registration.
type StepOption func(*stepConfig)

type stepConfig struct {
	timeout  time.Duration
	location step.Location
	params   map[int][]func(*convert.Builder)
}

func (c *stepConfig) param(i int, mod func(*convert.Builder)) {
	if c.params == nil {
		c.params = make(map[int][]func(*convert.Builder))
	}
	c.params[i] = append(c.params[i], mod)
}

// WithTimeout bounds each invocation of the step. Zero uses the registry
// default; a negative budget is unbounded.
func WithTimeout(d time.Duration) StepOption {
	return func(c *stepConfig) {
		c.timeout = d
	}
}

// WithLocation overrides the location recorded for the step. Wrappers that
// register steps on behalf of their callers use it.
func WithLocation(loc step.Location) StepOption {
	return func(c *stepConfig) {
		c.location = loc
	}
}

// WithDelimiter sets the list delimiter expression of step argument i.
// Arguments are counted from zero and exclude the receiver and context.
func WithDelimiter(i int, expr string) StepOption {
	return func(c *stepConfig) {
		c.param(i, func(b *convert.Builder) { b.Delimiter(expr) })
	}
}

// WithFormat sets the format hint of step argument i.
func WithFormat(i int, format string) StepOption {
	return func(c *stepConfig) {
		c.param(i, func(b *convert.Builder) { b.Format(format) })
	}
}

// WithTransform names the transformer of step argument i.
func WithTransform(i int, name string) StepOption {
	return func(c *stepConfig) {
		c.param(i, func(b *convert.Builder) { b.Transform(name) })
	}
}

// WithTransformer attaches a transformer instance to step argument i.
func WithTransformer(i int, t convert.Transformer) StepOption {
	return func(c *stepConfig) {
		c.param(i, func(b *convert.Builder) { b.TransformWith(t) })
	}
}

// WithOptional lets step argument i be absent from the match.
func WithOptional(i int) StepOption {
	return func(c *stepConfig) {
		c.param(i, func(b *convert.Builder) { b.Optional() })
	}
}
