// Package match locates the arguments of a step in its text.
//
// A Matcher wraps one regular expression compiled once at construction.
// Capture groups become Arguments tagged with byte offsets into the
// original text, so downstream tools can highlight them.
package match

import (
	"fmt"
	"regexp"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

// Argument is one captured substring of a step's text.
type Argument struct {
	// Value is the captured text. Empty when Present is false.
	Value string
	// Start is the byte offset of the first captured byte, or -1.
	Start int
	// End is the byte offset just past the captured text, or -1.
	End int
	// Present is false for optional groups that did not participate in the match.
	Present bool
}

// String returns the captured value.
func (a Argument) String() string {
	return a.Value
}

// Matcher matches step text against a single regular expression.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	src string
	re  *regexp.Regexp
}

// New compiles expr into a Matcher. The expression is anchored at the start
// of the step text; a trailing $ is still up to the author.
// It returns ErrInvalidPattern when expr is not a valid regular expression.
func New(expr string) (*Matcher, error) {
	if _, err := regexp.Compile(expr); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", swerrors.ErrInvalidPattern, expr, err)
	}
	re, err := regexp.Compile(`\A(?:` + expr + `)`)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", swerrors.ErrInvalidPattern, expr, err)
	}
	return &Matcher{src: expr, re: re}, nil
}

// MustNew is like New but panics on an invalid expression.
// It is intended for package-level patterns in tests and examples.
func MustNew(expr string) *Matcher {
	m, err := New(expr)
	if err != nil {
		panic(err)
	}
	return m
}

// Match returns the capture groups of text in left-to-right declaration
// order. The second result is false when the expression does not match;
// that is a normal outcome, not an error.
//
// Matching always starts at the first byte of text, so "I do (.*)" does not
// match "Then I do X".
func (m *Matcher) Match(text string) ([]Argument, bool) {
	loc := m.re.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, false
	}

	args := make([]Argument, 0, m.re.NumSubexp())
	for i := 2; i+1 < len(loc); i += 2 {
		start, end := loc[i], loc[i+1]
		if start < 0 {
			args = append(args, Argument{Start: -1, End: -1})
			continue
		}
		args = append(args, Argument{
			Value:   text[start:end],
			Start:   start,
			End:     end,
			Present: true,
		})
	}
	return args, true
}

// NumGroups returns the number of capture groups in the expression.
func (m *Matcher) NumGroups() int {
	return m.re.NumSubexp()
}

// String returns the source expression.
func (m *Matcher) String() string {
	return m.src
}
