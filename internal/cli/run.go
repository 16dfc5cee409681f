package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/stepwire/internal/config"
	"github.com/mrz1836/stepwire/internal/constants"
	"github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/runner"
	"github.com/mrz1836/stepwire/internal/signal"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	dryRun      bool
	strict      bool
	parallel    int
	poolSize    int
	locale      string
	steps       []string
	timeout     time.Duration
	metricsFile string
}

// overrides converts the flags into a config overlay.
func (o *runOptions) overrides() *config.Config {
	return &config.Config{
		Locale: o.locale,
		Steps: config.StepsConfig{
			Paths:          o.steps,
			DefaultTimeout: o.timeout,
		},
		Execution: config.ExecutionConfig{
			PoolSize: o.poolSize,
			Parallel: o.parallel,
			Strict:   o.strict,
		},
		Metrics: config.MetricsConfig{Textfile: o.metricsFile},
	}
}

func addRunCommand(root *cobra.Command, a *app) {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <scenario-file>...",
		Short: "Run plain-text scenarios against the loaded step definitions",
		Long: `Run reads each scenario file, matches every step against the loaded step
definitions and runs the bound procedures. A scenario stops at its first
step that does not pass.

Scenario files are plain text:

  Scenario: eating cukes
    Given I have 5 cukes
    When I eat 3 cukes
    Then I should have 2 cukes

Lines starting with # and blank lines are ignored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd.Context(), cmd, a, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "match and convert every step without running it")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail scenarios with undefined or pending steps")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 0, "scenarios to run at once (default from config)")
	cmd.Flags().IntVar(&opts.poolSize, "pool-size", 0, "bounded-time step calls allowed in flight (default from config)")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "locale arguments are converted with, e.g. en-US or de-DE")
	cmd.Flags().StringSliceVar(&opts.steps, "steps", nil, "additional YAML step files, directories or globs")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "default step time budget (default from config)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics for the run to this file")

	root.AddCommand(cmd)
}

func runScenarios(ctx context.Context, cmd *cobra.Command, a *app, opts *runOptions, files []string) error {
	logger := GetLogger()
	out := a.output(cmd)

	cfg, err := config.Apply(a.cfg, opts.overrides())
	if err != nil {
		return errors.NewExitCode2Error(err)
	}
	locale, err := cfg.LocaleTag()
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	scenarios, err := runner.LoadScenarios(files...)
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	g, set, err := a.loadSteps(ctx, cfg)
	if err != nil {
		return err
	}

	namespace := cfg.Metrics.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}
	metrics := runner.NewPrometheusMetrics(namespace)

	sig := signal.NewHandler(ctx)
	defer sig.Stop()

	r := runner.New(g, set,
		runner.WithLocale(locale),
		runner.WithStrict(cfg.Execution.Strict),
		runner.WithDryRun(opts.dryRun),
		runner.WithParallel(cfg.Execution.Parallel),
		runner.WithMetrics(metrics),
		runner.WithLogger(logger),
	)

	report, runErr := r.Run(sig.Context(), scenarios)
	if report == nil {
		return runErr
	}

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn().Err(err).Str("path", cfg.Metrics.Textfile).Msg("failed to write metrics")
		}
	}

	if a.flags.Output == OutputJSON {
		if err := out.JSON(report); err != nil {
			return err
		}
	} else {
		renderReport(cmd.OutOrStdout(), report)
	}

	if runErr != nil {
		if cause := context.Cause(sig.Context()); cause != nil && errors.Is(cause, signal.ErrInterrupted) {
			return errors.Wrap(cause, "run stopped")
		}
		return runErr
	}

	if !report.Passed() {
		counts := report.ScenarioCounts()
		return errors.Wrapf(errors.ErrScenarioFailed, "%d of %d scenarios failed",
			counts[constants.ScenarioStatusFailed], len(report.Scenarios))
	}
	return nil
}
