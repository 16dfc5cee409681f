// Package cli provides the command-line interface for stepwire.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/stepwire/internal/backend"
	"github.com/mrz1836/stepwire/internal/config"
	"github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// IMPORTANT: This function MUST only be called after the root command's
// PersistentPreRunE has executed. Calling it before initialization will
// return a zero-value logger that discards all log output.
//
// This function is safe for concurrent use.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// Option customizes the CLI.
type Option func(*app)

// WithBackends adds backends loaded alongside the script steps named in
// configuration. Programs that embed the CLI use it to run their own Go
// step definitions:
//
//	steps := gobackend.New()
//	steps.Given(`^I have (\d+) cukes$`, (*kitchen).have)
//	os.Exit(cli.ExitCodeForError(cli.Execute(ctx, info, cli.WithBackends(steps))))
func WithBackends(backends ...backend.Backend) Option {
	return func(a *app) {
		a.backends = append(a.backends, backends...)
	}
}

// app carries state shared by subcommands once PersistentPreRunE has run.
type app struct {
	flags    *GlobalFlags
	cfg      *config.Config
	backends []backend.Backend
	// initLogger builds the logger; tests swap it to keep output in memory.
	initLogger func(flags *GlobalFlags, cfg *config.Config) zerolog.Logger
}

func defaultInitLogger(flags *GlobalFlags, cfg *config.Config) zerolog.Logger {
	return InitLogger(flags.Verbose, flags.Quiet, cfg.Log)
}

// output returns the output for the selected format, writing to cmd's
// standard output.
func (a *app) output(cmd *cobra.Command) tui.Output {
	return tui.NewOutput(cmd.OutOrStdout(), a.flags.Output)
}

// loadConfig reads --config when given, otherwise the layered config files.
func (a *app) loadConfig(ctx context.Context) (*config.Config, error) {
	if a.flags.ConfigFile != "" {
		return config.LoadFile(ctx, a.flags.ConfigFile)
	}
	return config.Load(ctx)
}

// newRootCmd creates and returns the root command for the stepwire CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo, opts ...Option) *cobra.Command {
	v := viper.New()
	a := &app{flags: flags, initLogger: defaultInitLogger}
	for _, opt := range opts {
		opt(a)
	}

	cmd := &cobra.Command{
		Use:   "stepwire",
		Short: "stepwire - bind plain-text steps to code",
		Long: `stepwire matches plain-text scenario steps against registered step
definitions, converts the captured arguments into typed values and runs
the bound procedures with per-step time budgets.

Step definitions come from YAML script files (steps.paths) and from Go
code registered by programs that embed this CLI.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			applyBoundFlags(v, flags)

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			cfg, err := a.loadConfig(cmd.Context())
			if err != nil {
				return errors.NewExitCode2Error(err)
			}
			a.cfg = cfg

			globalLoggerMu.Lock()
			globalLogger = a.initLogger(flags, cfg)
			globalLoggerMu.Unlock()

			tui.CheckNoColor()
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			CloseLogFile()
		},
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, flags)

	addRunCommand(cmd, a)
	addMatchCommand(cmd, a)
	addSnippetCommand(cmd, a)
	addListCommand(cmd, a)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo, opts ...Option) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info, opts...)
	return cmd.ExecuteContext(ctx)
}
