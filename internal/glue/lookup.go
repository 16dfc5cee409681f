package glue

import (
	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/match"
	"github.com/mrz1836/stepwire/internal/step"
)

// Match is one definition whose pattern matched a step's text.
type Match struct {
	Definition *step.Definition
	Text       string
	Arguments  []match.Argument
}

// FindMatching returns every definition matching text, in registration order.
func (g *Glue) FindMatching(text string) []Match {
	var matches []Match
	for _, def := range g.Definitions() {
		if args, ok := def.Matches(text); ok {
			matches = append(matches, Match{Definition: def, Text: text, Arguments: args})
		}
	}
	return matches
}

// Lookup resolves text to exactly one definition. No match returns an
// error wrapping ErrUndefinedStep; several return *errors.AmbiguousMatchError.
func (g *Glue) Lookup(text string) (Match, error) {
	matches := g.FindMatching(text)
	switch len(matches) {
	case 0:
		return Match{}, swerrors.Wrapf(swerrors.ErrUndefinedStep, "%q", text)
	case 1:
		return matches[0], nil
	default:
		locations := make([]string, len(matches))
		for i, m := range matches {
			locations[i] = m.Definition.Location().String()
		}
		return Match{}, &swerrors.AmbiguousMatchError{Text: text, Locations: locations}
	}
}
