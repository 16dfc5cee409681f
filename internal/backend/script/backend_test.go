package script_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/mrz1836/stepwire/internal/backend"
	"github.com/mrz1836/stepwire/internal/backend/script"
	"github.com/mrz1836/stepwire/internal/constants"
	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/glue"
	"github.com/mrz1836/stepwire/internal/testutil"
)

const cukeSteps = `steps:
  - pattern: '^I have (\d+) cukes$'
    params:
      - type: int
    timeout: 500
    body: set("cukes", args[0])
  - pattern: '^I eat (\d+) more$'
    params:
      - type: int
    body: set("cukes", get("cukes") + args[0])
  - pattern: '^I should have (\d+) cukes$'
    params:
      - type: int
    body: get("cukes") == args[0]
  - pattern: '^nothing is stored$'
    body: get("cukes") == nil && len(world) == 0
  - pattern: '^the walls are (.*)$'
    params:
      - type: '[]string'
        delimiter: ' and '
    body: set("walls", args[0])
  - pattern: '^it explodes$'
    body: fail("kaboom")
  - pattern: '^it is unwritten$'
    body: pending()
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	return testutil.WriteFile(t, dir, name, content)
}

type harness struct {
	t       *testing.T
	backend *script.Backend
	glue    *glue.Glue
	set     *backend.Set
}

func load(t *testing.T, content string) *harness {
	t.Helper()
	path := writeFile(t, t.TempDir(), "cukes.yaml", content)
	b := script.New([]string{path})
	g := glue.New()
	set := backend.NewSet(zerolog.Nop(), b)
	require.NoError(t, set.Load(context.Background(), g))
	return &harness{t: t, backend: b, glue: g, set: set}
}

func (h *harness) scenario(steps ...string) ([]glue.Outcome, *script.Vars) {
	h.t.Helper()
	ctx, err := h.set.StartWorlds(context.Background())
	require.NoError(h.t, err)
	defer func() { require.NoError(h.t, h.set.DisposeWorlds(ctx)) }()

	outcomes := make([]glue.Outcome, 0, len(steps))
	for _, text := range steps {
		outcomes = append(outcomes, h.glue.Execute(ctx, text, language.English))
	}
	vars, err := h.backend.Vars(ctx)
	require.NoError(h.t, err)
	return outcomes, vars
}

func statuses(outcomes []glue.Outcome) []constants.StepStatus {
	out := make([]constants.StepStatus, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Status
	}
	return out
}

func TestBackend_RunsSteps(t *testing.T) {
	h := load(t, cukeSteps)

	outcomes, vars := h.scenario("I have 3 cukes", "I eat 2 more", "I should have 5 cukes", "the walls are EAST and WEST")

	assert.Equal(t, []constants.StepStatus{"passed", "passed", "passed", "passed"}, statuses(outcomes))
	assert.Equal(t, []string{"cukes", "walls"}, vars.Keys())
	assert.Equal(t, []string{"EAST", "WEST"}, vars.Get("walls"))
}

func TestBackend_FalseBodyFails(t *testing.T) {
	h := load(t, cukeSteps)

	outcomes, _ := h.scenario("I have 3 cukes", "I should have 4 cukes")

	assert.Equal(t, []constants.StepStatus{"passed", "failed"}, statuses(outcomes))
	require.ErrorIs(t, outcomes[1].Err, script.ErrBodyFalse)
}

func TestBackend_WorldIsolation(t *testing.T) {
	h := load(t, cukeSteps)

	first, _ := h.scenario("I have 3 cukes")
	second, _ := h.scenario("nothing is stored")

	assert.Equal(t, constants.StepStatusPassed, first[0].Status)
	assert.Equal(t, constants.StepStatusPassed, second[0].Status, "values must not leak between scenarios")
}

func TestBackend_FailAndPending(t *testing.T) {
	h := load(t, cukeSteps)

	outcomes, _ := h.scenario("it explodes", "it is unwritten")

	assert.Equal(t, []constants.StepStatus{"failed", "pending"}, statuses(outcomes))
	assert.Contains(t, outcomes[0].Err.Error(), "kaboom")
}

func TestBackend_Definitions(t *testing.T) {
	h := load(t, cukeSteps)

	defs := h.glue.Definitions()
	require.Len(t, defs, 7)
	assert.Equal(t, 500*time.Millisecond, defs[0].Timeout())
	assert.Equal(t, 2, defs[0].Location().Line)
	assert.Equal(t, 7, defs[1].Location().Line)
	assert.True(t, defs[0].IsDefinedAt("cukes.yaml"))
	assert.Equal(t, " and ", defs[4].Parameter(0).Delimiter())
}

func TestBackend_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		mention string
	}{
		{"compile error", "steps:\n  - pattern: '^x$'\n    body: set(\n", "cukes.yaml:2"},
		{"unknown type", "steps:\n  - pattern: '^(x)$'\n    params:\n      - type: money\n    body: 'true'\n", `unknown parameter type "money"`},
		{"count mismatch", "steps:\n  - pattern: '^(x)$'\n    body: 'true'\n", "capture groups"},
		{"bad pattern", "steps:\n  - pattern: '^(x$'\n    body: 'true'\n", "cukes.yaml:2"},
		{"bad yaml", "steps: [\n", "parse step file"},
		{"missing body", "steps:\n  - pattern: '^x$'\n", "has no body"},
		{"not a list", "steps: nope\n", "must be a list"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "cukes.yaml", tc.content)

			err := script.New([]string{path}).Load(context.Background(), glue.New())

			require.ErrorIs(t, err, swerrors.ErrConfiguration)
			assert.Contains(t, err.Error(), tc.mention)
		})
	}
}

func TestBackend_LoadOnceAndEmpty(t *testing.T) {
	b := script.New(nil)
	g := glue.New()

	require.NoError(t, b.Load(context.Background(), g))
	assert.Zero(t, g.Len())
	require.ErrorIs(t, b.Load(context.Background(), g), swerrors.ErrConfiguration)
}

func TestBackend_VarsOutsideScenario(t *testing.T) {
	b := script.New(nil)

	_, err := b.Vars(context.Background())
	require.ErrorIs(t, err, swerrors.ErrWorldNotStarted)
	require.ErrorIs(t, b.DisposeWorld(context.Background()), swerrors.ErrWorldNotStarted)
}

func TestBackend_Snippet(t *testing.T) {
	b := script.New(nil)

	assert.Contains(t, b.Snippet("I have 5 cukes"), `- pattern: '^I have (\d+) cukes$'`)
	assert.Equal(t, script.Name, b.Name())
	assert.True(t, b.IsolatedWorlds())
}

func TestLoader_Files(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "steps/a.yaml", "steps: []\n")
	b := writeFile(t, dir, "steps/nested/b.yml", "steps: []\n")
	writeFile(t, dir, "steps/readme.md", "not steps")
	c := writeFile(t, dir, "extra/c.yaml", "steps: []\n")

	loader := script.NewLoader(dir)

	files, err := loader.Files([]string{"steps", "extra/*.yaml", "steps/a.yaml"})
	require.NoError(t, err)
	assert.Equal(t, []string{c, a, b}, files)

	_, err = loader.Files([]string{"missing/*.yaml"})
	require.ErrorIs(t, err, swerrors.ErrConfiguration)
}

func TestParse_NoSteps(t *testing.T) {
	steps, err := script.Parse("empty.yaml", []byte("other: 1\n"))
	require.NoError(t, err)
	assert.Empty(t, steps)

	steps, err = script.Parse("empty.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, steps)

	_, err = script.Parse("list.yaml", []byte("- a\n"))
	require.ErrorIs(t, err, swerrors.ErrConfiguration)
}

func TestVars(t *testing.T) {
	v := script.NewVars()
	v.Set("b", 2)
	v.Set("a", 1)

	snap := v.Snapshot()
	snap["c"] = 3

	assert.Equal(t, []string{"a", "b"}, v.Keys())
	assert.Equal(t, 1, v.Get("a"))
	assert.Nil(t, v.Get("c"))
}
