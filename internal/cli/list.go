package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/stepwire/internal/step"
	"github.com/mrz1836/stepwire/internal/tui"
)

// definitionInfo is the JSON form of one listed step definition.
type definitionInfo struct {
	Pattern    string   `json:"pattern"`
	Location   string   `json:"location"`
	Parameters []string `json:"parameters"`
	Timeout    string   `json:"timeout,omitempty"`
}

func addListCommand(root *cobra.Command, a *app) {
	var file string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the loaded step definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listDefinitions(cmd, a, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "only list definitions declared in this file")

	root.AddCommand(cmd)
}

func listDefinitions(cmd *cobra.Command, a *app, file string) error {
	g, _, err := a.loadSteps(cmd.Context(), a.cfg)
	if err != nil {
		return err
	}

	var defs []*step.Definition
	for _, def := range g.Definitions() {
		if file == "" || def.IsDefinedAt(file) {
			defs = append(defs, def)
		}
	}

	infos := make([]definitionInfo, 0, len(defs))
	for _, def := range defs {
		infos = append(infos, describe(def))
	}

	if a.flags.Output == OutputJSON {
		return a.output(cmd).JSON(infos)
	}

	out := tui.NewTTYOutput(cmd.OutOrStdout())
	if len(infos) == 0 {
		out.Warning("No step definitions found")
		return nil
	}

	table := tui.NewTable(cmd.OutOrStdout(), "PATTERN", "PARAMETERS", "TIMEOUT", "LOCATION")
	for _, info := range infos {
		timeout := info.Timeout
		if timeout == "" {
			timeout = "-"
		}
		table.AddRow(info.Pattern, strings.Join(info.Parameters, ", "), timeout, out.Styles().Dim.Render(info.Location))
	}
	table.Render()
	out.Info(fmt.Sprintf("%d step definitions", table.Len()))
	return nil
}

func describe(def *step.Definition) definitionInfo {
	info := definitionInfo{
		Pattern:    def.Pattern(),
		Location:   def.Location().String(),
		Parameters: make([]string, def.ParameterCount()),
	}
	for i := range info.Parameters {
		info.Parameters[i] = def.Parameter(i).String()
	}
	if d := def.Timeout(); d > 0 {
		info.Timeout = d.String()
	}
	return info
}
