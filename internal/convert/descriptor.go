// Package convert turns matched step arguments into typed values.
//
// Each formal parameter of a step procedure gets a Descriptor: its declared
// type plus the format, delimiter and transform modifiers attached to it.
// A Converter applies the descriptor to raw text in a fixed order:
// transformer, list splitting, enum lookup, then locale-aware primitive
// parsing.
package convert

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/mrz1836/stepwire/internal/constants"
	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

// defaultDelimiter is compiled once; Descriptors only read it.
//
//nolint:gochecknoglobals // Immutable compiled pattern
var defaultDelimiter = regexp.MustCompile(constants.DefaultDelimiter)

// Descriptor describes how to convert one matched argument.
// It is immutable once built.
type Descriptor struct {
	typ             reflect.Type
	format          string
	delimiter       *regexp.Regexp
	transformer     Transformer
	transformerName string
	optional        bool
}

// Type returns the declared parameter type.
func (d Descriptor) Type() reflect.Type {
	return d.typ
}

// Format returns the display format hint. Built-in conversion ignores it;
// transformers may read it.
func (d Descriptor) Format() string {
	return d.format
}

// Delimiter returns the list delimiter expression.
func (d Descriptor) Delimiter() string {
	if d.delimiter == nil {
		return constants.DefaultDelimiter
	}
	return d.delimiter.String()
}

// Transformer returns the custom transformer, or nil.
func (d Descriptor) Transformer() Transformer {
	return d.transformer
}

// TransformerName returns the name the transformer was resolved from.
func (d Descriptor) TransformerName() string {
	return d.transformerName
}

// Optional reports whether an absent argument is allowed.
func (d Descriptor) Optional() bool {
	return d.optional
}

// String returns the declared type's name.
func (d Descriptor) String() string {
	if d.typ == nil {
		return "<nil>"
	}
	return d.typ.String()
}

func (d Descriptor) splitter() *regexp.Regexp {
	if d.delimiter == nil {
		return defaultDelimiter
	}
	return d.delimiter
}

// Builder assembles a Descriptor from a declared type and its modifiers.
type Builder struct {
	typ         reflect.Type
	format      string
	delimiter   string
	transform   string
	transformer Transformer
	optional    bool
}

// NewBuilder starts a descriptor for the declared type.
func NewBuilder(t reflect.Type) *Builder {
	return &Builder{typ: t, delimiter: constants.DefaultDelimiter}
}

// For starts a descriptor for the type parameter T.
func For[T any]() *Builder {
	return NewBuilder(reflect.TypeFor[T]())
}

// Format sets the display format hint.
func (b *Builder) Format(format string) *Builder {
	b.format = format
	return b
}

// Delimiter overrides the list-splitting expression.
func (b *Builder) Delimiter(expr string) *Builder {
	b.delimiter = expr
	return b
}

// Transform names a transformer to resolve from the registry at Build.
func (b *Builder) Transform(name string) *Builder {
	b.transform = name
	return b
}

// TransformWith attaches an already constructed transformer.
func (b *Builder) TransformWith(t Transformer) *Builder {
	b.transformer = t
	return b
}

// Optional allows the argument to be absent; the value is then the zero
// value of the declared type. Pointer types are optional without this.
func (b *Builder) Optional() *Builder {
	b.optional = true
	return b
}

// Build validates the modifiers and returns the Descriptor.
// Named transformers are resolved through transformers, which may be nil
// when no parameter uses a transform modifier. All failures wrap
// ErrConfiguration.
func (b *Builder) Build(transformers *TransformerRegistry) (Descriptor, error) {
	if b.typ == nil {
		return Descriptor{}, swerrors.Configf("parameter type is required")
	}
	if b.transform != "" && b.transformer != nil {
		return Descriptor{}, swerrors.Configf("parameter %s has both a named and an inline transformer", b.typ)
	}

	d := Descriptor{
		typ:       b.typ,
		format:    b.format,
		optional:  b.optional || b.typ.Kind() == reflect.Pointer,
		delimiter: defaultDelimiter,
	}

	if b.delimiter != constants.DefaultDelimiter {
		if b.delimiter == "" {
			return Descriptor{}, swerrors.Configf("parameter %s has an empty delimiter", b.typ)
		}
		re, err := regexp.Compile(b.delimiter)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: parameter %s: %w %q: %w",
				swerrors.ErrConfiguration, b.typ, swerrors.ErrInvalidDelimiter, b.delimiter, err)
		}
		d.delimiter = re
	}

	switch {
	case b.transformer != nil:
		d.transformer = b.transformer
	case b.transform != "":
		if transformers == nil {
			return Descriptor{}, fmt.Errorf("%w: parameter %s: %w: %q",
				swerrors.ErrConfiguration, b.typ, swerrors.ErrTransformerNotFound, b.transform)
		}
		t, err := transformers.Resolve(b.transform)
		if err != nil {
			return Descriptor{}, err
		}
		d.transformer = t
		d.transformerName = b.transform
	}

	return d, nil
}
