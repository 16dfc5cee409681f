package script

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/step"
)

// ErrBodyFalse is returned when a step body evaluates to false.
var ErrBodyFalse = errors.New("step body evaluated to false")

// scope is the state one body evaluation sees.
type scope struct {
	vars *Vars
	err  error
}

// env builds the expression environment. The same shape is used to
// type-check bodies at load time.
func (s *scope) env(args []any) map[string]any {
	return map[string]any{
		"args":  args,
		"world": s.vars.Snapshot(),
		"set": func(key string, value any) bool {
			s.vars.Set(key, value)
			return true
		},
		"get": func(key string) any {
			return s.vars.Get(key)
		},
		"fail": func(msg string) bool {
			s.err = errors.New(msg)
			return false
		},
		"pending": func() bool {
			s.err = swerrors.ErrPending
			return false
		},
	}
}

// compile type-checks body against the environment shape.
func compile(body string, loc step.Location) (*vm.Program, error) {
	sample := &scope{vars: NewVars()}
	program, err := expr.Compile(body, expr.Env(sample.env(nil)))
	if err != nil {
		return nil, swerrors.ConfigWrap(err, "step body at %s", loc)
	}
	return program, nil
}

// run evaluates program with args against vars. An error recorded by fail
// or pending wins over the result; otherwise a false result fails the step.
func run(program *vm.Program, vars *Vars, args []any) error {
	s := &scope{vars: vars}
	out, err := expr.Run(program, s.env(args))
	if s.err != nil {
		return s.err
	}
	if err != nil {
		return fmt.Errorf("evaluate step body: %w", err)
	}
	if ok, isBool := out.(bool); isBool && !ok {
		return ErrBodyFalse
	}
	return nil
}
