package glue

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/mrz1836/stepwire/internal/constants"
	"github.com/mrz1836/stepwire/internal/convert"
	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/snippet"
	"github.com/mrz1836/stepwire/internal/step"
)

type heading int

const (
	up heading = iota
	down
)

func (h heading) String() string { return [...]string{"UP", "DOWN"}[h] }

type goSnippets struct{}

func (goSnippets) Snippet(text string) string { return snippet.For(snippet.StyleGo, text) }

type staticSnippet string

func (s staticSnippet) Snippet(string) string { return string(s) }

func param[T any](t *testing.T) convert.Descriptor {
	t.Helper()
	d, err := convert.For[T]().Build(nil)
	require.NoError(t, err)
	return d
}

func at(line int) step.Location {
	return step.Location{File: "steps_test.go", Line: line}
}

// recorder registers a definition that stores the arguments it receives.
func recorder(t *testing.T, g *Glue, pattern string, line int, params ...convert.Descriptor) *[]any {
	t.Helper()
	var got []any
	_, err := g.Register(pattern, params, at(line), 0, func(_ context.Context, args []any) error {
		got = args
		return nil
	})
	require.NoError(t, err)
	return &got
}

func TestRegister_ParameterCountMismatch(t *testing.T) {
	g := New()

	_, err := g.Register(`^I have (\d+) cukes$`, nil, at(1), 0, func(context.Context, []any) error { return nil })

	require.ErrorIs(t, err, swerrors.ErrConfiguration)
	assert.Zero(t, g.Len())
}

func TestRegister_InvalidPattern(t *testing.T) {
	g := New()

	_, err := g.Register(`^I have (\d+ cukes$`, []convert.Descriptor{param[int](t)}, at(1), 0,
		func(context.Context, []any) error { return nil })

	require.ErrorIs(t, err, swerrors.ErrConfiguration)
	require.ErrorIs(t, err, swerrors.ErrInvalidPattern)
	assert.Contains(t, err.Error(), "steps_test.go:1")
}

func TestRegister_Timeouts(t *testing.T) {
	g := New(WithDefaultTimeout(50 * time.Millisecond))
	noop := func(context.Context, []any) error { return nil }

	inherited, err := g.Register(`^a$`, nil, at(1), 0, noop)
	require.NoError(t, err)
	explicit, err := g.Register(`^b$`, nil, at(2), time.Second, noop)
	require.NoError(t, err)
	unbounded, err := g.Register(`^c$`, nil, at(3), -1, noop)
	require.NoError(t, err)

	assert.Equal(t, 50*time.Millisecond, inherited.Timeout())
	assert.Equal(t, time.Second, explicit.Timeout())
	assert.Zero(t, unbounded.Timeout())
}

func TestRegister_DuplicatePatternWarns(t *testing.T) {
	var buf bytes.Buffer
	g := New(WithLogger(zerolog.New(&buf)))

	recorder(t, g, `^I do X$`, 1)
	recorder(t, g, `^I do X$`, 2)

	assert.Equal(t, 2, g.Len())
	assert.Contains(t, buf.String(), "duplicate step pattern")
	assert.Contains(t, buf.String(), `"existing_location":"steps_test.go:1"`)
}

func TestBindAndInvoke_ConversionFailureLogRedactsSecret(t *testing.T) {
	var buf bytes.Buffer
	g := New(WithLogger(zerolog.New(&buf)))
	recorder(t, g, `^my token is (\S+)$`, 1, param[int](t))
	token := "ghp_" + strings.Repeat("a", 36)

	out := g.Execute(context.Background(), "my token is "+token, language.English)

	require.ErrorIs(t, out.Err, swerrors.ErrConversion)
	assert.Equal(t, constants.StepStatusFailed, out.Status)
	assert.Contains(t, buf.String(), "step invoked")
	assert.Contains(t, buf.String(), "[REDACTED]")
	assert.NotContains(t, buf.String(), token)
}

func TestLookup_Ambiguous(t *testing.T) {
	g := New()
	recorder(t, g, `^I do X$`, 10)
	recorder(t, g, `^I do (.*)$`, 20, param[string](t))

	_, err := g.Lookup("I do X")

	var ambiguous *swerrors.AmbiguousMatchError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, []string{"steps_test.go:10", "steps_test.go:20"}, ambiguous.Locations)

	m, err := g.Lookup("I do Y")
	require.NoError(t, err)
	assert.Equal(t, 20, m.Definition.Location().Line)
	assert.Equal(t, "Y", m.Arguments[0].Value)
}

func TestLookup_UndefinedHasNoSideEffects(t *testing.T) {
	g := New()
	g.AddSnippetSource(goSnippets{})
	recorder(t, g, `^something else$`, 1)

	_, err := g.Lookup(`I have 3 "red" apples`)
	require.ErrorIs(t, err, swerrors.ErrUndefinedStep)

	suggestion := g.SuggestSnippet(`I have 3 "red" apples`)
	assert.Contains(t, suggestion, `^I have (\d+) "([^"]*)" apples$`)
	assert.Contains(t, suggestion, "func(arg1 int, arg2 string) error")

	assert.Equal(t, 1, g.Len())
	_, err = g.Lookup(`I have 3 "red" apples`)
	require.ErrorIs(t, err, swerrors.ErrUndefinedStep)
}

func TestSuggestSnippet_Concatenates(t *testing.T) {
	g := New()
	assert.Empty(t, g.SuggestSnippet("x"))

	g.AddSnippetSource(staticSnippet("one\n"), staticSnippet(""), staticSnippet("two"))

	assert.Equal(t, "one\n\ntwo\n", g.SuggestSnippet("x"))
}

func TestExecute_ConvertsArguments(t *testing.T) {
	g := New()
	got := recorder(t, g, `^I have (\d+) cukes in my (\w+)$`, 1, param[int](t), param[string](t))

	out := g.Execute(context.Background(), "I have 42 cukes in my belly", language.English)

	require.NoError(t, out.Err)
	assert.Equal(t, constants.StepStatusPassed, out.Status)
	assert.Equal(t, []any{42, "belly"}, *got)
	assert.Equal(t, []any{42, "belly"}, out.Args)
}

func TestExecute_DefaultListDelimiter(t *testing.T) {
	g := New()
	got := recorder(t, g, `^the basket holds (.*)$`, 1, param[[]string](t))

	out := g.Execute(context.Background(), "the basket holds a, b,c", language.English)

	require.NoError(t, out.Err)
	assert.Equal(t, []any{[]string{"a", "b", "c"}}, *got)
}

func TestExecute_ConversionFailureSkipsProcedure(t *testing.T) {
	g := New()
	called := false
	_, err := g.Register(`^I have (\w+) cukes$`, []convert.Descriptor{param[int](t)}, at(1), 0,
		func(context.Context, []any) error {
			called = true
			return nil
		})
	require.NoError(t, err)

	out := g.Execute(context.Background(), "I have many cukes", language.English)

	assert.Equal(t, constants.StepStatusFailed, out.Status)
	require.ErrorIs(t, out.Err, swerrors.ErrConversion)
	assert.Contains(t, out.Err.Error(), "parameter 1 of steps_test.go:1")
	assert.False(t, called)
}

func TestExecute_Statuses(t *testing.T) {
	g := New()
	noop := func(context.Context, []any) error { return nil }
	_, err := g.Register(`^slow$`, nil, at(1), 100*time.Millisecond, func(context.Context, []any) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)
	_, err = g.Register(`^pending$`, nil, at(2), 0, func(context.Context, []any) error { return swerrors.ErrPending })
	require.NoError(t, err)
	_, err = g.Register(`^same (.*)$`, []convert.Descriptor{param[string](t)}, at(3), 0, noop)
	require.NoError(t, err)
	_, err = g.Register(`^same thing$`, nil, at(4), 0, noop)
	require.NoError(t, err)

	tests := []struct {
		text string
		want constants.StepStatus
	}{
		{"slow", constants.StepStatusTimedOut},
		{"pending", constants.StepStatusPending},
		{"same thing", constants.StepStatusAmbiguous},
		{"missing", constants.StepStatusUndefined},
		{"same other", constants.StepStatusPassed},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			out := g.Execute(context.Background(), tc.text, language.English)
			assert.Equal(t, tc.want, out.Status)
		})
	}
}

func TestExecute_TimedOutPromptly(t *testing.T) {
	g := New()
	_, err := g.Register(`^I wait$`, nil, at(1), 100*time.Millisecond, func(context.Context, []any) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)

	start := time.Now()
	out := g.Execute(context.Background(), "I wait", language.English)

	assert.Equal(t, constants.StepStatusTimedOut, out.Status)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
	require.ErrorIs(t, out.Err, swerrors.ErrStepTimeout)
}

func TestRegisterEnum(t *testing.T) {
	g := New()
	got := recorder(t, g, `^I look (\w+)$`, 1, param[heading](t))

	out := g.Execute(context.Background(), "I look UP", language.English)
	require.ErrorIs(t, out.Err, swerrors.ErrConversion)

	g.RegisterEnum(convert.NewEnum(up, down))
	out = g.Execute(context.Background(), "I look DOWN", language.English)

	require.NoError(t, out.Err)
	assert.Equal(t, []any{down}, *got)
}

func TestBind_Locale(t *testing.T) {
	g := New()
	recorder(t, g, `^I pay (.*) euros$`, 1, param[float64](t))

	m, err := g.Lookup("I pay 1.234,5 euros")
	require.NoError(t, err)

	args, err := g.Bind(m, language.German)
	require.NoError(t, err)
	assert.InDelta(t, 1234.5, args[0], 1e-9)

	args, err = g.Bind(m, language.German)
	require.NoError(t, err)
	assert.InDelta(t, 1234.5, args[0], 1e-9)
}

func TestFindMatching_Concurrent(t *testing.T) {
	g := New()
	recorder(t, g, `^I have (\d+) cukes$`, 1, param[int](t))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				matches := g.FindMatching("I have 7 cukes")
				assert.Len(t, matches, 1)
				args, err := g.Bind(matches[0], language.English)
				assert.NoError(t, err)
				assert.Equal(t, []any{7}, args)
			}
		}()
	}
	wg.Wait()
}

func TestDefinitions_ReturnsCopy(t *testing.T) {
	g := New()
	recorder(t, g, `^a$`, 1)

	defs := g.Definitions()
	defs[0] = nil

	assert.NotNil(t, g.Definitions()[0])
	assert.NotNil(t, g.Transformers())
}
