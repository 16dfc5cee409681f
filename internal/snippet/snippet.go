// Package snippet suggests step definition skeletons for undefined steps.
//
// Analyze turns step text into a pattern with capture groups for quoted
// strings and integers. Render formats that skeleton in a backend's own
// syntax from an embedded text/template. Snippets are display text only;
// nothing parses them back.
package snippet

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ArgKind is the kind of value a snippet argument captures.
type ArgKind int

// Argument kinds recognized in step text.
const (
	KindString ArgKind = iota
	KindInt
)

// Group returns the capture group that matches the kind.
func (k ArgKind) Group() string {
	if k == KindInt {
		return `(\d+)`
	}
	return `"([^"]*)"`
}

// GoType returns the Go parameter type for the kind.
func (k ArgKind) GoType() string {
	if k == KindInt {
		return "int"
	}
	return "string"
}

// ScriptType returns the script-backend parameter type for the kind.
func (k ArgKind) ScriptType() string {
	return k.GoType()
}

// Arg is one argument found in the step text.
type Arg struct {
	Name   string
	Kind   ArgKind
	Sample string
}

// Skeleton is the backend-neutral shape of a suggested step definition.
type Skeleton struct {
	Text     string
	Pattern  string
	FuncName string
	Args     []Arg
}

//nolint:gochecknoglobals // Immutable compiled pattern
var argPattern = regexp.MustCompile(`"[^"]*"|\d+`)

// Analyze builds the skeleton for text. The resulting pattern always
// matches text, capturing each argument it found.
func Analyze(text string) Skeleton {
	sk := Skeleton{Text: text}

	var pattern strings.Builder
	var literal []string
	pattern.WriteByte('^')

	last := 0
	for _, loc := range argPattern.FindAllStringIndex(text, -1) {
		lit := text[last:loc[0]]
		pattern.WriteString(regexp.QuoteMeta(lit))
		literal = append(literal, lit)

		sample := text[loc[0]:loc[1]]
		kind := KindInt
		if strings.HasPrefix(sample, `"`) {
			kind = KindString
			sample = strings.Trim(sample, `"`)
		}
		sk.Args = append(sk.Args, Arg{
			Name:   "arg" + strconv.Itoa(len(sk.Args)+1),
			Kind:   kind,
			Sample: sample,
		})
		pattern.WriteString(kind.Group())
		last = loc[1]
	}
	pattern.WriteString(regexp.QuoteMeta(text[last:]))
	literal = append(literal, text[last:])
	pattern.WriteByte('$')

	sk.Pattern = pattern.String()
	sk.FuncName = funcName(strings.Join(literal, " "))
	return sk
}

// funcName turns the literal words of a step into a lowerCamelCase identifier.
func funcName(literal string) string {
	// Digits never reach here; Analyze captures them as arguments.
	words := strings.FieldsFunc(literal, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 {
		return "step"
	}

	title := cases.Title(language.Und)
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(title.String(w))
	}
	return b.String()
}
