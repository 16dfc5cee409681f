package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mrz1836/stepwire/internal/config"
	"github.com/mrz1836/stepwire/internal/testutil"
)

const kitchenSteps = `steps:
  - pattern: '^I have (\d+) cukes$'
    params:
      - type: int
    body: set("cukes", args[0])
  - pattern: '^I eat (\d+) cukes$'
    params:
      - type: int
    body: set("cukes", get("cukes") - args[0])
  - pattern: '^I should have (\d+) cukes$'
    params:
      - type: int
    body: get("cukes") == args[0]
  - pattern: '^I pay ([\d.,]+) euros$'
    params:
      - type: float
    body: set("paid", args[0])
  - pattern: '^the weather is (.*)$'
    params:
      - type: string
    body: "true"
  - pattern: '^the weather is sunny$'
    body: "true"
  - pattern: '^my password is "([^"]*)"$'
    params:
      - type: string
    body: "true"
`

const eatingScenario = `# cukes
Scenario: eating cukes
  Given I have 5 cukes
  When I eat 3 cukes
  Then I should have 2 cukes

Scenario: snacking
  Given I have 1 cukes
  Then I should have 1 cukes
`

// project is a temporary directory holding a config file, a step file and
// scenario files.
type project struct {
	t      *testing.T
	dir    string
	config string
	steps  string
}

func newProject(t *testing.T) *project {
	t.Helper()
	dir := t.TempDir()
	p := &project{t: t, dir: dir}
	p.steps = p.write("steps/kitchen.yaml", kitchenSteps)
	p.config = p.write("config.yaml", "steps:\n  paths:\n    - "+p.steps+"\n")
	return p
}

func (p *project) write(name, content string) string {
	p.t.Helper()
	return testutil.WriteFile(p.t, p.dir, name, content)
}

// result holds what one CLI invocation produced.
type result struct {
	out    string
	errOut string
	logs   string
	err    error
}

// execute runs the root command in memory. Logs go to a buffer instead of
// the console and the rotating file.
func execute(t *testing.T, opts []Option, args ...string) result {
	t.Helper()

	var logs bytes.Buffer
	opts = append(opts, func(a *app) {
		a.initLogger = func(flags *GlobalFlags, cfg *config.Config) zerolog.Logger {
			return InitLoggerWithWriter(flags.Verbose, flags.Quiet, cfg.Log.Level, &logs)
		}
	})

	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "test"}, opts...)
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), logs: logs.String(), err: err}
}
