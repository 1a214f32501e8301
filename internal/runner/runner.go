// Package runner sequences declared groups and examples, strictly one
// example at a time. It owns the pieces shared across a run: the mock
// controller, the settings derived from configuration, and the run summary.
package runner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brentsnook/rspec-core/internal/config"
	"github.com/brentsnook/rspec-core/internal/dsl"
	"github.com/brentsnook/rspec-core/internal/mocks"
	"github.com/brentsnook/rspec-core/internal/reporter"
	"github.com/brentsnook/rspec-core/internal/spec"
)

// summaryReporter is implemented by reporters that want the final run
// summary, such as the console.
type summaryReporter interface {
	RunFinished(reporter.RunSummary)
}

// Runner executes groups sequentially against one reporter.
type Runner struct {
	cfg   *config.Config
	mocks *mocks.Controller
	clock func() time.Time
	runID uuid.UUID
}

// New constructs a Runner for the given configuration. A nil cfg uses
// defaults.
func New(cfg *config.Config) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Runner{
		cfg:   cfg,
		mocks: mocks.NewController(),
		clock: time.Now,
		runID: uuid.New(),
	}
}

// RunID identifies this run, mainly for report correlation.
func (r *Runner) RunID() uuid.UUID { return r.runID }

// Mocks exposes the run's mock controller so bodies can create doubles.
func (r *Runner) Mocks() *mocks.Controller { return r.mocks }

// SetClock replaces the time source, primarily for tests.
func (r *Runner) SetClock(now func() time.Time) {
	if now != nil {
		r.clock = now
	}
}

// Run executes every group in declaration order and returns the summary.
// One example executes fully, including all hook phases, before the next
// begins.
func (r *Runner) Run(groups []*dsl.Group, rep spec.Reporter) reporter.RunSummary {
	start := r.clock()
	var summary reporter.RunSummary
	for _, g := range groups {
		r.runGroup(g, rep, &summary)
	}
	summary.Duration = r.clock().Sub(start)
	if sr, ok := rep.(summaryReporter); ok {
		sr.RunFinished(summary)
	}
	return summary
}

func (r *Runner) settings() spec.Settings {
	return spec.Settings{
		DryRun:                    r.cfg.DryRun,
		ExpectMatcherDescriptions: r.cfg.ExpectMatcherDescriptions,
		FormatDescription:         r.cfg.FormatDescription,
	}
}

func (r *Runner) runGroup(g *dsl.Group, rep spec.Reporter, summary *reporter.RunSummary) {
	settings := r.settings()

	groupCtx := spec.NewGroupContext()
	if !r.cfg.DryRun {
		if err := g.RunBeforeAll(groupCtx); err != nil {
			// Group setup failed: no body in this group may execute. Each
			// example is reported failed with the setup error, properly
			// timed, without running any per-example hooks.
			for _, decl := range g.Examples() {
				ex := spec.NewExample(decl.Metadata, decl.Body, nil, nil, settings)
				ex.SetClock(r.clock)
				ex.FailWithError(rep, err)
				tally(ex, summary)
			}
			return
		}
	}

	for _, decl := range g.Examples() {
		ex := spec.NewExample(decl.Metadata, decl.Body, g.Hooks(), r.mocks, settings)
		ex.SetClock(r.clock)

		// Each example receives its own context, seeded with the group
		// setup state; the example wipes it at the end of its run.
		exCtx := spec.NewGroupContext()
		exCtx.Seed(groupCtx)
		ex.Run(exCtx, rep)
		tally(ex, summary)
	}

	if !r.cfg.DryRun {
		if err := g.RunAfterAll(groupCtx); err != nil {
			// Group teardown failures cannot change any example's outcome;
			// they surface as a diagnostic.
			rep.Message(fmt.Sprintf("An error occurred in an after(:all) hook: %v", err))
		}
	}
}

func tally(ex *spec.Example, summary *reporter.RunSummary) {
	summary.Examples++
	switch ex.ExecutionResult().Status {
	case spec.StatusFailed:
		summary.Failures++
	case spec.StatusPending:
		summary.Pending++
	}
}
