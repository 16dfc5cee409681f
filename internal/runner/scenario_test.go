package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

const cukesFile = `# kitchen scenarios
Scenario: eating cukes
  Given I have 5 cukes
  When I eat 2 cukes

  Then I should have 3 cukes
  # trailing comment
Scenario: bare steps
  I have 1 cukes
  * I eat 1 cukes
  And Givenchy is a brand
`

func TestParseScenarios(t *testing.T) {
	t.Parallel()

	scenarios, err := ParseScenarios("kitchen.txt", strings.NewReader(cukesFile))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	first := scenarios[0]
	assert.Equal(t, "eating cukes", first.Name)
	assert.Equal(t, "kitchen.txt", first.File)
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, []Step{
		{Keyword: "Given", Text: "I have 5 cukes", Line: 3},
		{Keyword: "When", Text: "I eat 2 cukes", Line: 4},
		{Keyword: "Then", Text: "I should have 3 cukes", Line: 6},
	}, first.Steps)

	second := scenarios[1]
	assert.Equal(t, []Step{
		{Keyword: "", Text: "I have 1 cukes", Line: 9},
		{Keyword: "*", Text: "I eat 1 cukes", Line: 10},
		{Keyword: "And", Text: "Givenchy is a brand", Line: 11},
	}, second.Steps)
}

func TestParseScenarios_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		mention string
	}{
		{"step before scenario", "Given I have 5 cukes\n", "kitchen.txt:1: step before the first Scenario: line"},
		{"unnamed scenario", "Scenario:   \n", "kitchen.txt:1: scenario has no name"},
		{"keyword only", "Scenario: x\n  Then\n", "kitchen.txt:2: Then without step text"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseScenarios("kitchen.txt", strings.NewReader(tc.input))

			require.ErrorIs(t, err, swerrors.ErrInvalidScenarioFile)
			assert.Contains(t, err.Error(), tc.mention)
		})
	}
}

func TestParseScenarios_Empty(t *testing.T) {
	t.Parallel()

	scenarios, err := ParseScenarios("empty.txt", strings.NewReader("# nothing here\n\n"))

	require.NoError(t, err)
	assert.Empty(t, scenarios)
}

func TestLoadScenarios(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("Scenario: one\n  Given x\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("Scenario: two\n  Given y\n"), 0o600))

	scenarios, err := LoadScenarios(a, b)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "one", scenarios[0].Name)
	assert.Equal(t, b, scenarios[1].File)

	_, err = LoadScenarios(filepath.Join(dir, "missing.txt"))
	require.ErrorIs(t, err, swerrors.ErrInvalidScenarioFile)
}

func TestSplitKeyword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line, keyword, text string
	}{
		{"Given I am here", "Given", "I am here"},
		{"But\tnot there", "But", "not there"},
		{"Thence we go", "", "Thence we go"},
		{"*I am starred", "", "*I am starred"},
		{"When", "When", ""},
	}

	for _, tc := range tests {
		keyword, text := SplitKeyword(tc.line)
		assert.Equal(t, tc.keyword, keyword, tc.line)
		assert.Equal(t, tc.text, text, tc.line)
	}
}
