package runner

import (
	"bufio"
	"io"
	"os"
	"strings"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

// ScenarioPrefix opens a scenario in a plain-text scenario file.
const ScenarioPrefix = "Scenario:"

// keywords are stripped from the start of a step line before matching.
//
//nolint:gochecknoglobals // Immutable keyword list
var keywords = []string{"Given", "When", "Then", "And", "But", "*"}

// Step is one line of a scenario.
type Step struct {
	Keyword string
	Text    string
	Line    int
}

// Scenario is a named, ordered list of steps.
type Scenario struct {
	Name  string
	File  string
	Line  int
	Steps []Step
}

// ParseScenarios reads the plain-text scenario format:
//
//	# comment
//	Scenario: eating cukes
//	  Given I have 5 cukes
//	  When I eat 2 more
//	  Then I should have 7 cukes
//
// Every non-empty line after a Scenario line that does not start with # is
// a step. A leading Given, When, Then, And, But or * is kept as the step's
// keyword and removed from its text. file is used for reporting only.
func ParseScenarios(file string, r io.Reader) ([]Scenario, error) {
	var scenarios []Scenario

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if name, ok := strings.CutPrefix(line, ScenarioPrefix); ok {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, swerrors.Wrapf(swerrors.ErrInvalidScenarioFile, "%s:%d: scenario has no name", file, lineNo)
			}
			scenarios = append(scenarios, Scenario{Name: name, File: file, Line: lineNo})
			continue
		}

		if len(scenarios) == 0 {
			return nil, swerrors.Wrapf(swerrors.ErrInvalidScenarioFile, "%s:%d: step before the first %s line", file, lineNo, ScenarioPrefix)
		}
		keyword, text := SplitKeyword(line)
		if text == "" {
			return nil, swerrors.Wrapf(swerrors.ErrInvalidScenarioFile, "%s:%d: %s without step text", file, lineNo, keyword)
		}
		current := &scenarios[len(scenarios)-1]
		current.Steps = append(current.Steps, Step{Keyword: keyword, Text: text, Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, swerrors.Wrapf(swerrors.ErrInvalidScenarioFile, "%s: %v", file, err)
	}
	return scenarios, nil
}

// LoadScenarios parses every file in order.
func LoadScenarios(paths ...string) ([]Scenario, error) {
	var all []Scenario
	for _, path := range paths {
		f, err := os.Open(path) //nolint:gosec // Path comes from the command line
		if err != nil {
			return nil, swerrors.Wrapf(swerrors.ErrInvalidScenarioFile, "%v", err)
		}
		scenarios, err := ParseScenarios(path, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		all = append(all, scenarios...)
	}
	return all, nil
}

// SplitKeyword separates a leading step keyword from the step text. The
// keyword must be followed by whitespace; otherwise the whole line is text.
func SplitKeyword(line string) (keyword, text string) {
	for _, kw := range keywords {
		rest, ok := strings.CutPrefix(line, kw)
		if !ok {
			continue
		}
		if rest == "" {
			return kw, ""
		}
		if rest[0] == ' ' || rest[0] == '\t' {
			return kw, strings.TrimSpace(rest)
		}
	}
	return "", line
}
