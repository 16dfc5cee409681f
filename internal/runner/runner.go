// Package runner executes scenarios against a loaded step registry.
//
// The runner is deliberately thin: it looks each step up, invokes it
// through the glue, and records results. Matching, conversion, timeouts
// and world state all live below it. A scenario stops at its first step
// that does not pass; the remaining steps are reported as skipped.
package runner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/mrz1836/stepwire/internal/backend"
	"github.com/mrz1836/stepwire/internal/clock"
	"github.com/mrz1836/stepwire/internal/constants"
	"github.com/mrz1836/stepwire/internal/ctxutil"
	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/glue"
	"github.com/mrz1836/stepwire/internal/logging"
)

// Runner runs scenarios.
type Runner struct {
	glue     *glue.Glue
	backends *backend.Set
	locale   language.Tag
	strict   bool
	dryRun   bool
	parallel int
	metrics  Metrics
	clock    clock.Clock
	logger   zerolog.Logger
	newRunID func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLocale sets the locale arguments are converted with.
func WithLocale(tag language.Tag) Option {
	return func(r *Runner) {
		r.locale = tag
	}
}

// WithStrict makes undefined and pending steps fail their scenario.
func WithStrict(strict bool) Option {
	return func(r *Runner) {
		r.strict = strict
	}
}

// WithDryRun looks up and converts every step without invoking any
// procedure or starting any world.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithParallel runs up to n scenarios at once. Values below 1 mean 1.
func WithParallel(n int) Option {
	return func(r *Runner) {
		if n < 1 {
			n = 1
		}
		r.parallel = n
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m Metrics) Option {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithClock sets the clock durations are measured with.
func WithClock(c clock.Clock) Option {
	return func(r *Runner) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithRunID sets the run ID generator.
func WithRunID(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newRunID = fn
		}
	}
}

// New creates a runner over a registry the backends were loaded into.
func New(g *glue.Glue, backends *backend.Set, opts ...Option) *Runner {
	r := &Runner{
		glue:     g,
		backends: backends,
		locale:   language.English,
		parallel: constants.DefaultParallelism,
		metrics:  NoopMetrics{},
		clock:    clock.RealClock{},
		logger:   zerolog.Nop(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run runs every scenario and returns the report. The error is non-nil
// only when the run could not start or was canceled; failing scenarios are
// reported through the report. A canceled run still returns the results of
// the scenarios that ran.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*Report, error) {
	if r.parallel > 1 && !r.dryRun {
		if err := r.backends.Isolated(); err != nil {
			return nil, swerrors.Wrapf(err, "run %d scenarios in parallel", r.parallel)
		}
	}

	report := &Report{
		RunID:   r.newRunID(),
		Started: r.clock.Now(),
		Strict:  r.strict,
		DryRun:  r.dryRun,
	}
	r.metrics.RunStarted(report.RunID, len(scenarios))
	r.logger.Info().
		Str("run_id", report.RunID).
		Int("scenarios", len(scenarios)).
		Int("parallel", r.parallel).
		Bool("dry_run", r.dryRun).
		Msg("run started")

	var err error
	if r.parallel > 1 {
		err = r.runParallel(ctx, report, scenarios)
	} else {
		err = r.runSequential(ctx, report, scenarios)
	}

	report.Duration = r.clock.Since(report.Started)
	r.metrics.RunCompleted(report.RunID, report.Duration, report.Passed())
	r.logger.Info().
		Str("run_id", report.RunID).
		Int("scenarios", len(report.Scenarios)).
		Bool("passed", report.Passed()).
		Int64("duration_ms", report.Duration.Milliseconds()).
		Msg("run completed")

	return report, err
}

func (r *Runner) runSequential(ctx context.Context, report *Report, scenarios []Scenario) error {
	for _, sc := range scenarios {
		if err := ctxutil.Canceled(ctx); err != nil {
			return err
		}
		report.Scenarios = append(report.Scenarios, r.runScenario(ctx, report.RunID, sc))
	}
	return ctxutil.Canceled(ctx)
}

// runParallel keeps the report in input order regardless of completion order.
func (r *Runner) runParallel(ctx context.Context, report *Report, scenarios []Scenario) error {
	results := make([]*ScenarioResult, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, sc := range scenarios {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctxutil.Canceled(gctx); err != nil {
				return err
			}
			res := r.runScenario(gctx, report.RunID, sc)
			results[i] = &res
			return nil
		})
	}
	err := g.Wait()

	for _, res := range results {
		if res != nil {
			report.Scenarios = append(report.Scenarios, *res)
		}
	}
	if err != nil {
		return err
	}
	return ctxutil.Canceled(ctx)
}

func (r *Runner) runScenario(ctx context.Context, runID string, sc Scenario) ScenarioResult {
	start := r.clock.Now()
	ctx = ctxutil.WithScenario(ctx, sc.Name)

	res := ScenarioResult{
		Name:  sc.Name,
		File:  sc.File,
		Line:  sc.Line,
		Steps: make([]StepResult, 0, len(sc.Steps)),
	}

	if r.dryRun {
		for _, s := range sc.Steps {
			res.Steps = append(res.Steps, r.checkStep(s))
		}
	} else {
		r.executeScenario(ctx, runID, sc, &res)
	}

	res.Status = r.scenarioStatus(&res)
	if res.Err != nil {
		res.Error = res.Err.Error()
	}
	res.Duration = r.clock.Since(start)
	r.metrics.ScenarioCompleted(runID, sc.Name, res.Status, res.Duration)

	level := zerolog.InfoLevel
	if res.Status == constants.ScenarioStatusFailed {
		level = zerolog.WarnLevel
	}
	event := r.logger.WithLevel(level). //nolint:zerologlint // dispatched below
						Str("run_id", runID).
						Str("scenario", sc.Name).
						Str("status", res.Status.String()).
						Int64("duration_ms", res.Duration.Milliseconds())
	if res.Err != nil {
		event = event.Err(res.Err)
	}
	event.Msg("scenario completed")

	return res
}

// executeScenario runs the steps in fresh worlds and always disposes them.
func (r *Runner) executeScenario(ctx context.Context, runID string, sc Scenario, res *ScenarioResult) {
	wctx, err := r.backends.StartWorlds(ctx)
	if err != nil {
		res.Err = err
		for _, s := range sc.Steps {
			res.Steps = append(res.Steps, skipped(s))
		}
		return
	}

	blocked := false
	for _, s := range sc.Steps {
		if !blocked {
			if err := ctxutil.Canceled(ctx); err != nil {
				res.Err = err
				blocked = true
			}
		}
		if blocked {
			res.Steps = append(res.Steps, skipped(s))
			continue
		}

		sr := r.executeStep(wctx, runID, s)
		res.Steps = append(res.Steps, sr)
		blocked = sr.Status != constants.StepStatusPassed
	}

	if err := r.backends.DisposeWorlds(wctx); err != nil {
		res.Err = errors.Join(res.Err, err)
	}
}

func (r *Runner) executeStep(ctx context.Context, runID string, s Step) StepResult {
	sr := StepResult{Keyword: s.Keyword, Text: s.Text, Line: s.Line}

	m, err := r.glue.Lookup(s.Text)
	switch {
	case errors.Is(err, swerrors.ErrUndefinedStep):
		sr.Status = constants.StepStatusUndefined
		sr.Snippet = r.glue.SuggestSnippet(s.Text)
	case err != nil:
		sr.Status = constants.StepStatusAmbiguous
	default:
		out := r.glue.BindAndInvoke(ctx, m, r.locale)
		sr.Location = m.Definition.Location().String()
		sr.Status = out.Status
		sr.Duration = out.Elapsed
		err = out.Err
	}
	sr.Err = err
	if err != nil {
		sr.Error = err.Error()
	}

	r.metrics.StepExecuted(runID, sr.Location, sr.Status, sr.Duration)
	r.logStep(ctx, runID, sr)
	return sr
}

// checkStep is the dry-run counterpart of executeStep. A step that binds
// is reported as skipped.
func (r *Runner) checkStep(s Step) StepResult {
	sr := StepResult{Keyword: s.Keyword, Text: s.Text, Line: s.Line}

	m, err := r.glue.Lookup(s.Text)
	switch {
	case errors.Is(err, swerrors.ErrUndefinedStep):
		sr.Status = constants.StepStatusUndefined
		sr.Snippet = r.glue.SuggestSnippet(s.Text)
	case err != nil:
		sr.Status = constants.StepStatusAmbiguous
	default:
		sr.Location = m.Definition.Location().String()
		sr.Status = constants.StepStatusSkipped
		if _, err = r.glue.Bind(m, r.locale); err != nil {
			sr.Status = constants.StepStatusFailed
		}
	}
	sr.Err = err
	if err != nil {
		sr.Error = err.Error()
	}
	return sr
}

func (r *Runner) scenarioStatus(res *ScenarioResult) constants.ScenarioStatus {
	if res.Err != nil {
		return constants.ScenarioStatusFailed
	}

	var undefined, pending bool
	for _, st := range res.Steps {
		switch {
		case st.Status.IsFailure():
			return constants.ScenarioStatusFailed
		case st.Status == constants.StepStatusUndefined:
			undefined = true
		case st.Status == constants.StepStatusPending:
			pending = true
		}
	}

	switch {
	case r.strict && (undefined || pending):
		return constants.ScenarioStatusFailed
	case undefined:
		return constants.ScenarioStatusUndefined
	case pending:
		return constants.ScenarioStatusPending
	default:
		return constants.ScenarioStatusPassed
	}
}

// logStep logs one step; the text is redacted before it reaches the logger.
func (r *Runner) logStep(ctx context.Context, runID string, sr StepResult) {
	level := zerolog.DebugLevel
	if sr.Status.IsFailure() {
		level = zerolog.WarnLevel
	}

	event := r.buildStepLogEvent(ctx, runID, sr, level)
	if sr.Err != nil {
		event = event.Str("error", logging.RedactStepText(sr.Err.Error()))
	}
	event.Msg("step completed")
}

// buildStepLogEvent creates a log event with common step fields.
func (r *Runner) buildStepLogEvent(ctx context.Context, runID string, sr StepResult, level zerolog.Level) *zerolog.Event {
	event := r.logger.WithLevel(level). //nolint:zerologlint // event returned for caller to dispatch
						Str("run_id", runID).
						Str("scenario", ctxutil.Scenario(ctx)).
						Str("step", logging.RedactStepText(sr.Text)).
						Str("status", sr.Status.String())

	if sr.Location != "" {
		event = event.Str("location", sr.Location)
	}
	if sr.Duration > 0 {
		event = event.Int64("duration_ms", sr.Duration.Milliseconds())
	}
	return event
}

func skipped(s Step) StepResult {
	return StepResult{Keyword: s.Keyword, Text: s.Text, Line: s.Line, Status: constants.StepStatusSkipped}
}

