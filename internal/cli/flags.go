package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/stepwire/internal/constants"
	"github.com/mrz1836/stepwire/internal/errors"
)

// Process exit codes. Failing scenarios exit with ExitError.
const (
	ExitSuccess      = 0
	ExitError        = 1
	ExitInvalidInput = 2
)

// Values accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// GlobalFlags holds the persistent flags of the root command.
type GlobalFlags struct {
	// Output is text or json.
	Output string
	// Verbose selects debug logging.
	Verbose bool
	// Quiet selects warn logging.
	Quiet bool
	// ConfigFile replaces the layered config files when set.
	ConfigFile string
}

// envBoundFlags can also be set as STEPWIRE_<NAME>.
//
//nolint:gochecknoglobals // Fixed flag list
var envBoundFlags = []string{"output", "verbose", "quiet"}

// AddGlobalFlags registers the persistent flags on cmd.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "log step-level detail")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "log warnings and errors only")
	pf.StringVar(&flags.ConfigFile, "config", "", "config file (default .stepwire/config.yaml, then ~/.stepwire/config.yaml)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds the env-capable flags of cmd's root to v, so
// STEPWIRE_OUTPUT=json works like --output json.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	for _, name := range envBoundFlags {
		if err := v.BindPFlag(name, pf.Lookup(name)); err != nil {
			return err
		}
	}
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	return nil
}

// applyBoundFlags copies the resolved flag and environment values into flags.
func applyBoundFlags(v *viper.Viper, flags *GlobalFlags) {
	flags.Output = v.GetString("output")
	flags.Verbose = v.GetBool("verbose")
	flags.Quiet = v.GetBool("quiet")
}

// ValidOutputFormats lists the values accepted by --output.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat reports whether format is accepted by --output.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// cobraUsageErrors are fragments of the errors cobra and pflag return for
// bad command lines.
//
//nolint:gochecknoglobals // Fixed message list
var cobraUsageErrors = []string{
	"unknown flag",
	"unknown shorthand flag",
	"flag needs an argument",
	"invalid argument",
	"if any flags in the group",
	"required flag",
	"unknown command",
	"accepts ",
	"requires at least",
}

// ExitCodeForError maps the error returned by Execute to a process exit code.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.IsExitCode2Error(err), errors.Is(err, errors.ErrInvalidOutputFormat), isUsageError(err):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

func isUsageError(err error) bool {
	msg := err.Error()
	return slices.ContainsFunc(cobraUsageErrors, func(fragment string) bool {
		return strings.Contains(msg, fragment)
	})
}
