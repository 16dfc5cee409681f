package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/glue"
	"github.com/mrz1836/stepwire/internal/runner"
	"github.com/mrz1836/stepwire/internal/tui"
)

// matchArgument is one converted argument in match output.
type matchArgument struct {
	Text  string `json:"text"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// matchResult is the JSON form of the match command's output.
type matchResult struct {
	Text      string          `json:"text"`
	Pattern   string          `json:"pattern,omitempty"`
	Location  string          `json:"location,omitempty"`
	Arguments []matchArgument `json:"arguments,omitempty"`
	Matches   []string        `json:"matches,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func addMatchCommand(root *cobra.Command, a *app) {
	var locale string

	cmd := &cobra.Command{
		Use:   "match <step text>",
		Short: "Show which step definition a step binds to",
		Long: `Match looks the step text up among the loaded step definitions and prints
the matching definition with its converted arguments. A leading Given,
When, Then, And, But or * keyword is ignored.

Nothing is invoked.`,
		Example: `  stepwire match "Given I have 42 cukes in my belly"
  stepwire match --locale de-DE "I pay 1.234,50 euros"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return matchStep(cmd, a, locale, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "locale arguments are converted with")

	root.AddCommand(cmd)
}

func matchStep(cmd *cobra.Command, a *app, locale, line string) error {
	cfg := *a.cfg
	if locale != "" {
		cfg.Locale = locale
	}
	tag, err := cfg.LocaleTag()
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	g, _, err := a.loadSteps(cmd.Context(), &cfg)
	if err != nil {
		return err
	}

	_, text := runner.SplitKeyword(strings.TrimSpace(line))
	result, err := bindStep(g, text, tag)
	if err != nil {
		result.Error = err.Error()
	}

	if a.flags.Output == OutputJSON {
		if jsonErr := a.output(cmd).JSON(result); jsonErr != nil {
			return jsonErr
		}
		return err
	}

	renderMatch(cmd, result, err)
	return err
}

// bindStep looks text up and converts its arguments without invoking anything.
func bindStep(g *glue.Glue, text string, tag language.Tag) (matchResult, error) {
	result := matchResult{Text: text}

	m, err := g.Lookup(text)
	if err != nil {
		var ambiguous *errors.AmbiguousMatchError
		if errors.As(err, &ambiguous) {
			result.Matches = ambiguous.Locations
		}
		return result, err
	}

	def := m.Definition
	result.Pattern = def.Pattern()
	result.Location = def.Location().String()

	values, err := g.Bind(m, tag)
	if err != nil {
		return result, err
	}
	for i, arg := range m.Arguments {
		result.Arguments = append(result.Arguments, matchArgument{
			Text:  arg.Value,
			Type:  def.Parameter(i).String(),
			Value: values[i],
		})
	}
	return result, nil
}

func renderMatch(cmd *cobra.Command, result matchResult, err error) {
	w := cmd.OutOrStdout()
	out := tui.NewTTYOutput(w)
	styles := out.Styles()

	switch {
	case errors.Is(err, errors.ErrUndefinedStep):
		out.Warning(fmt.Sprintf("No step definition matches %q", result.Text))
		return
	case len(result.Matches) > 0:
		out.Warning(fmt.Sprintf("%q matches %d step definitions:", result.Text, len(result.Matches)))
		for _, loc := range result.Matches {
			_, _ = fmt.Fprintln(w, "  "+loc)
		}
		return
	}

	_, _ = fmt.Fprintf(w, "%s  %s\n", tui.StyleBold.Render(result.Pattern), styles.Dim.Render("# "+result.Location))
	for i, arg := range result.Arguments {
		_, _ = fmt.Fprintf(w, "  %d. %q → %v %s\n", i+1, arg.Text, arg.Value, styles.Dim.Render("("+arg.Type+")"))
	}
	if err != nil {
		out.Error(err)
	}
}
