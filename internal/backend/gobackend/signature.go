package gobackend

import (
	"context"
	"reflect"
	"runtime"
	"strings"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/step"
)

//nolint:gochecknoglobals // Immutable reflect types
var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// signature is the parsed shape of a step function.
type signature struct {
	fn       reflect.Value
	receiver reflect.Type
	context  bool
	args     []reflect.Type
}

// inspect classifies fn's parameters. The receiver of a pointer method
// expression comes first; a context.Context after it, or first, is injected.
// fn may return nothing or a single error.
func inspect(fn any, loc step.Location) (signature, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return signature{}, swerrors.Configf("step at %s is %T, not a function", loc, fn)
	}
	t := v.Type()
	if t.IsVariadic() {
		return signature{}, swerrors.Configf("step function at %s must not be variadic", loc)
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) != errorType {
			return signature{}, swerrors.Configf("step function at %s returns %s; want error or nothing", loc, t.Out(0))
		}
	default:
		return signature{}, swerrors.Configf("step function at %s returns %d values; want error or nothing", loc, t.NumOut())
	}

	sig := signature{fn: v}
	i := 0
	if t.NumIn() > 0 && isMethodExpression(v, t.In(0)) {
		sig.receiver = t.In(0)
		i++
	}
	if i < t.NumIn() && t.In(i) == contextType {
		sig.context = true
		i++
	}
	for ; i < t.NumIn(); i++ {
		sig.args = append(sig.args, t.In(i))
	}
	return sig, nil
}

// isMethodExpression reports whether fn is a method expression such as
// (*Belly).HaveCukes whose receiver is first. Method values and plain
// functions taking a struct pointer are not.
func isMethodExpression(fn reflect.Value, first reflect.Type) bool {
	if first.Kind() != reflect.Pointer || first.Elem().Kind() != reflect.Struct {
		return false
	}
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return false
	}
	name := f.Name()
	return !strings.HasSuffix(name, "-fm") && strings.Contains(name, ".(*"+first.Elem().Name()+").")
}
