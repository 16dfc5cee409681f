package convert

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/text/language"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

// EnumSet lists the members of an enumeration type.
//
// Go has no enum declaration to introspect, so step packages describe
// their enums explicitly and hand the set to the Converter:
//
//	type Direction int
//	func (d Direction) String() string { ... }
//
//	convert.NewEnum(East, West, North, South)
type EnumSet struct {
	typ     reflect.Type
	names   []string
	values  []reflect.Value
	byName  map[string]int
	locales map[language.Base]map[string]int
}

// NewEnum builds a set whose member names are the values' String() results.
func NewEnum[T fmt.Stringer](members ...T) *EnumSet {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.String()
	}
	return NewNamedEnum(names, members)
}

// NewNamedEnum builds a set from explicit names. names and members are
// paired by index. It panics when their lengths differ or a name repeats,
// since both are programming errors in a static declaration.
func NewNamedEnum[T any](names []string, members []T) *EnumSet {
	if len(names) != len(members) {
		panic(fmt.Sprintf("convert: enum %s has %d names for %d members", reflect.TypeFor[T](), len(names), len(members)))
	}

	s := &EnumSet{
		typ:     reflect.TypeFor[T](),
		names:   make([]string, 0, len(names)),
		values:  make([]reflect.Value, 0, len(members)),
		byName:  make(map[string]int, len(names)),
		locales: make(map[language.Base]map[string]int),
	}
	for i, name := range names {
		if _, dup := s.byName[name]; dup {
			panic(fmt.Sprintf("convert: enum %s repeats member %q", s.typ, name))
		}
		s.byName[name] = i
		s.names = append(s.names, name)
		s.values = append(s.values, reflect.ValueOf(members[i]))
	}
	return s
}

// Localize adds names recognized for a locale. localized maps the
// localized name to the canonical member name. Localized names are matched
// for every locale sharing tag's base language.
func (s *EnumSet) Localize(tag language.Tag, localized map[string]string) *EnumSet {
	base, _ := tag.Base()
	names, ok := s.locales[base]
	if !ok {
		names = make(map[string]int, len(localized))
		s.locales[base] = names
	}
	for local, canonical := range localized {
		idx, ok := s.byName[canonical]
		if !ok {
			panic(fmt.Sprintf("convert: enum %s has no member %q to localize", s.typ, canonical))
		}
		names[local] = idx
	}
	return s
}

// Type returns the enum's Go type.
func (s *EnumSet) Type() reflect.Type {
	return s.typ
}

// Names returns the canonical member names in declaration order.
func (s *EnumSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Lookup resolves text to a member by exact, case-sensitive name.
// Names localized for the context's language are tried first.
func (s *EnumSet) Lookup(ctx Context, text string) (reflect.Value, error) {
	base, _ := ctx.Locale.Base()
	if local, ok := s.locales[base]; ok {
		if idx, ok := local[text]; ok {
			return s.values[idx], nil
		}
	}
	if idx, ok := s.byName[text]; ok {
		return s.values[idx], nil
	}

	return reflect.Value{}, &swerrors.ConversionError{
		Text:   text,
		Type:   s.typ.String(),
		Reason: fmt.Errorf("%w: valid members are [%s]", swerrors.ErrUnknownEnumMember, strings.Join(s.validNames(base), ", ")),
	}
}

func (s *EnumSet) validNames(base language.Base) []string {
	local := make([]string, 0, len(s.locales[base]))
	for name := range s.locales[base] {
		local = append(local, name)
	}
	sort.Strings(local)
	return append(s.Names(), local...)
}
