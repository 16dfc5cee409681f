package convert

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/match"
)

//nolint:gochecknoglobals // Immutable reflect types
var (
	durationType        = reflect.TypeFor[time.Duration]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Converter applies Descriptors to matched text.
//
// A Converter holds only tables fixed at construction (the enum sets), so a
// single instance may be shared by every scenario and goroutine. Locale and
// other per-call state travel in the Context argument.
type Converter struct {
	enums map[reflect.Type]*EnumSet
}

// Option configures a Converter.
type Option func(*Converter)

// WithEnum registers enum sets. A later set for the same type replaces an earlier one.
func WithEnum(sets ...*EnumSet) Option {
	return func(c *Converter) {
		for _, s := range sets {
			c.enums[s.Type()] = s
		}
	}
}

// NewConverter creates a Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{enums: make(map[reflect.Type]*EnumSet)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of c that also knows sets. c is unchanged.
func (c *Converter) With(sets ...*EnumSet) *Converter {
	next := &Converter{enums: make(map[reflect.Type]*EnumSet, len(c.enums)+len(sets))}
	for t, s := range c.enums {
		next.enums[t] = s
	}
	WithEnum(sets...)(next)
	return next
}

// IsEnum reports whether t has a registered enum set.
func (c *Converter) IsEnum(t reflect.Type) bool {
	_, ok := c.enums[t]
	return ok
}

// Convert converts a matched argument. Absent arguments yield the zero
// value for optional descriptors and ErrMissingArgument otherwise.
func (c *Converter) Convert(ctx Context, arg match.Argument, d Descriptor) (any, error) {
	if !arg.Present {
		if d.Optional() && d.typ != nil {
			return reflect.Zero(d.typ).Interface(), nil
		}
		return nil, &swerrors.ConversionError{Type: d.String(), Reason: swerrors.ErrMissingArgument}
	}
	return c.ConvertString(ctx, arg.Value, d)
}

// ConvertString converts raw text using, in order: the descriptor's
// transformer, list splitting for slice types (or pointers to them), enum
// lookup, and built-in primitive conversion.
func (c *Converter) ConvertString(ctx Context, raw string, d Descriptor) (any, error) {
	if d.typ == nil {
		return nil, swerrors.Configf("descriptor has no type")
	}

	if t := d.Transformer(); t != nil {
		return c.transform(ctx, t, raw, d)
	}

	var (
		v   reflect.Value
		err error
	)
	switch {
	case isList(d.typ):
		v, err = c.convertList(ctx, raw, d, d.typ)
	case d.typ.Kind() == reflect.Pointer && isList(d.typ.Elem()):
		v, err = c.convertList(ctx, raw, d, d.typ.Elem())
		if err == nil {
			ptr := reflect.New(d.typ.Elem())
			ptr.Elem().Set(v)
			v = ptr
		}
	default:
		v, err = c.convertScalar(ctx, raw, d.typ)
	}
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func (c *Converter) transform(ctx Context, t Transformer, raw string, d Descriptor) (any, error) {
	v, err := t.Transform(ctx, d, raw)
	if err != nil {
		var convErr *swerrors.ConversionError
		if swerrors.As(err, &convErr) {
			return nil, err
		}
		return nil, &swerrors.ConversionError{Text: raw, Type: d.String(), Reason: err}
	}
	if v == nil {
		return reflect.Zero(d.typ).Interface(), nil
	}
	if got := reflect.TypeOf(v); !got.AssignableTo(d.typ) {
		return nil, &swerrors.ConversionError{
			Text:   raw,
			Type:   d.String(),
			Reason: fmt.Errorf("transformer %q returned %s", d.TransformerName(), got),
		}
	}
	return v, nil
}

// isList reports slice types other than []byte, which converts as a scalar.
func isList(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8
}

// convertList splits raw with d's delimiter into a slice of type t.
func (c *Converter) convertList(ctx Context, raw string, d Descriptor, t reflect.Type) (reflect.Value, error) {
	if raw == "" {
		return reflect.MakeSlice(t, 0, 0), nil
	}

	parts := d.splitter().Split(raw, -1)
	out := reflect.MakeSlice(t, 0, len(parts))
	for i, part := range parts {
		ev, err := c.convertScalar(ctx, part, t.Elem())
		if err != nil {
			return reflect.Value{}, swerrors.Wrapf(err, "list element %d", i)
		}
		out = reflect.Append(out, ev)
	}
	return out, nil
}

func (c *Converter) convertScalar(ctx Context, raw string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		ev, err := c.convertScalar(ctx, raw, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(ev)
		return ptr, nil
	}

	if set, ok := c.enums[t]; ok {
		return set.Lookup(ctx, raw)
	}

	if t == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return reflect.Value{}, conversionFailure(raw, t, err)
		}
		return reflect.ValueOf(d), nil
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return reflect.Value{}, conversionFailure(raw, t, err)
		}
		return ptr.Elem(), nil
	}

	return convertPrimitive(ctx, raw, t)
}

func convertPrimitive(ctx Context, raw string, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()

	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)

	case reflect.Interface:
		sv := reflect.ValueOf(raw)
		if !sv.Type().AssignableTo(t) {
			return reflect.Value{}, unsupported(raw, t)
		}
		v.Set(sv)

	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return reflect.Value{}, conversionFailure(raw, t, err)
		}
		v.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(ctx.normalizeNumber(raw), 10, t.Bits())
		if err != nil {
			return reflect.Value{}, conversionFailure(raw, t, err)
		}
		v.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(ctx.normalizeNumber(raw), 10, t.Bits())
		if err != nil {
			return reflect.Value{}, conversionFailure(raw, t, err)
		}
		v.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(ctx.normalizeNumber(raw), t.Bits())
		if err != nil {
			return reflect.Value{}, conversionFailure(raw, t, err)
		}
		v.SetFloat(f)

	case reflect.Slice:
		if t.Elem().Kind() != reflect.Uint8 {
			return reflect.Value{}, unsupported(raw, t)
		}
		v.SetBytes([]byte(raw))

	default:
		return reflect.Value{}, unsupported(raw, t)
	}

	return v, nil
}

func conversionFailure(raw string, t reflect.Type, err error) error {
	return &swerrors.ConversionError{Text: raw, Type: t.String(), Reason: err}
}

// unsupported reports a type with no built-in conversion, with a
// transformer skeleton the user can paste.
func unsupported(raw string, t reflect.Type) error {
	return &swerrors.ConversionError{Text: raw, Type: t.String(), Suggestion: transformerSuggestion(t)}
}

func transformerSuggestion(t reflect.Type) string {
	name := t.Name()
	if name == "" {
		name = "value"
	}
	ident := strings.ToLower(name[:1]) + name[1:]

	return fmt.Sprintf(`type %[1]sTransformer struct{}

func (%[1]sTransformer) Transform(ctx convert.Context, d convert.Descriptor, raw string) (any, error) {
	var v %[2]s
	// parse raw into v
	return v, nil
}

// transformers.Register(%[1]q, func() (convert.Transformer, error) { return %[1]sTransformer{}, nil })
// and attach it with gobackend.WithTransform(<index>, %[1]q)
`, ident, t.String())
}
