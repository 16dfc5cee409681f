package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/runner"
	"github.com/mrz1836/stepwire/internal/snippet"
)

// snippetResult is the JSON form of the snippet command's output.
type snippetResult struct {
	Text    string `json:"text"`
	Snippet string `json:"snippet"`
}

func addSnippetCommand(root *cobra.Command, a *app) {
	var style string

	cmd := &cobra.Command{
		Use:   "snippet <step text>",
		Short: "Print a step definition skeleton for undefined step text",
		Long: `Snippet prints a skeleton definition for the step text. Without --style it
asks every loaded backend for a snippet in its own syntax; with --style it
renders the named syntax without loading any step definitions.`,
		Example: `  stepwire snippet "I have 42 cukes in my belly"
  stepwire snippet --style go "the walls face \"north\""`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSnippet(cmd, a, style, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&style, "style", "", fmt.Sprintf("snippet syntax %v (default: every loaded backend)", snippet.Styles()))

	root.AddCommand(cmd)
}

func printSnippet(cmd *cobra.Command, a *app, style, line string) error {
	_, text := runner.SplitKeyword(strings.TrimSpace(line))

	var out string
	if style != "" {
		if !slices.Contains(snippet.Styles(), snippet.Style(style)) {
			return errors.NewExitCode2Error(fmt.Errorf("%w: %q must be one of %v", snippet.ErrUnknownStyle, style, snippet.Styles()))
		}
		out = snippet.For(snippet.Style(style), text)
	} else {
		g, _, err := a.loadSteps(cmd.Context(), a.cfg)
		if err != nil {
			return err
		}
		out = g.SuggestSnippet(text)
	}

	if a.flags.Output == OutputJSON {
		return a.output(cmd).JSON(snippetResult{Text: text, Snippet: out})
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
	return err
}
