package script

import (
	"reflect"
	"strings"
	"time"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

//nolint:gochecknoglobals // Immutable lookup table
var scalarTypes = map[string]reflect.Type{
	"string":   reflect.TypeFor[string](),
	"int":      reflect.TypeFor[int](),
	"int64":    reflect.TypeFor[int64](),
	"float":    reflect.TypeFor[float64](),
	"float64":  reflect.TypeFor[float64](),
	"bool":     reflect.TypeFor[bool](),
	"duration": reflect.TypeFor[time.Duration](),
	"time":     reflect.TypeFor[time.Time](),
	"any":      reflect.TypeFor[any](),
}

// paramType maps a declared type name to its Go type. "[]T" declares a
// list of the scalar T. An empty name is a string.
func paramType(name string) (reflect.Type, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return scalarTypes["string"], nil
	}
	if elem, ok := strings.CutPrefix(name, "[]"); ok {
		t, err := paramType(elem)
		if err != nil {
			return nil, err
		}
		if t.Kind() == reflect.Slice {
			return nil, swerrors.Configf("nested list type %q is not supported", name)
		}
		return reflect.SliceOf(t), nil
	}
	if t, ok := scalarTypes[name]; ok {
		return t, nil
	}
	return nil, swerrors.Configf("unknown parameter type %q", name)
}
