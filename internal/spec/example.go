package spec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Body is the executable part of an example. It receives the example itself
// as its sole argument; bodies that need nothing from it simply ignore it.
// A nil return means the example passed. Returning ErrSkipDeclared (via
// Example.Skip) aborts the body without failing it. Panics are recovered and
// treated as failures.
type Body func(ex *Example) error

// Example owns one declared test's run lifecycle: sequencing hook phases,
// recording the execution result, capturing at most one reportable failure,
// deciding the final status, and notifying the reporter. One Example exists
// per declared test per run.
type Example struct {
	id       uuid.UUID
	metadata *Metadata
	body     Body
	result   *ExecutionResult

	hooks    Hooks
	mocks    MockLifecycle
	settings Settings
	clock    func() time.Time

	// err holds the first captured failure. Write-once-if-empty: later
	// failures surface only as reporter diagnostics.
	err error

	// group is the run-scoped execution context; non-nil only while a run
	// is in flight.
	group *GroupContext

	// reporter is bound for the duration of one run so the capture rule can
	// emit collision diagnostics mid-run.
	reporter Reporter
}

// NewExample constructs an example from its metadata and body. hooks and
// mocks may be nil when the example runs without a registry or mocking
// subsystem.
func NewExample(metadata *Metadata, body Body, hooks Hooks, mocks MockLifecycle, settings Settings) *Example {
	if metadata == nil {
		metadata = &Metadata{}
	}
	if body == nil {
		body = func(*Example) error { return nil }
	}
	if hooks == nil {
		hooks = noopHooks{}
	}
	if mocks == nil {
		mocks = noopMocks{}
	}
	return &Example{
		id:       uuid.New(),
		metadata: metadata,
		body:     body,
		result:   &ExecutionResult{},
		hooks:    hooks,
		mocks:    mocks,
		settings: settings,
		clock:    time.Now,
	}
}

// SetClock replaces the time source, primarily for tests.
func (e *Example) SetClock(now func() time.Time) {
	if now != nil {
		e.clock = now
	}
}

// ID returns the example's unique identifier for this process.
func (e *Example) ID() uuid.UUID { return e.id }

// Metadata returns the example's metadata record.
func (e *Example) Metadata() *Metadata { return e.metadata }

// ExecutionResult returns the result record owned by this example.
func (e *Example) ExecutionResult() *ExecutionResult { return e.result }

// Err returns the captured failure, or nil.
func (e *Example) Err() error { return e.err }

// Description returns the example's doc string, generated if it was declared
// without one and synthesis has run.
func (e *Example) Description() string { return e.metadata.Description }

// FullDescription returns the group descriptions joined with the example's.
func (e *Example) FullDescription() string { return e.metadata.FullDescription }

// Location returns the declaration site as "file:line".
func (e *Example) Location() string { return e.metadata.Location() }

// FilePath returns the file the example was declared in.
func (e *Example) FilePath() string { return e.metadata.File }

// IsPending reports whether the example is marked pending.
func (e *Example) IsPending() bool { return e.metadata.Pending }

// IsSkipped reports whether the example is marked skipped.
func (e *Example) IsSkipped() bool { return e.metadata.Skip }

// Group returns the run-scoped execution context, or nil outside a run.
func (e *Example) Group() *GroupContext { return e.group }

// Skip marks the example skipped from inside a running body and returns the
// control signal the body must return. The pipeline absorbs the signal; it
// never surfaces as a failure.
func (e *Example) Skip(message string) error {
	MarkSkipped(e, message)
	return ErrSkipDeclared
}

// Pending marks the example pending from inside a running body. The body
// should continue (and is then expected to fail).
func (e *Example) Pending(message string) {
	MarkPending(e, message)
}

// Run executes the example to completion: start notification, the guarded
// body pipeline inside the around-hook composition (or the skip/dry-run
// short circuit), guaranteed cleanup of run-scoped state, and the terminal
// reporter notification. It never lets a failure escape; the return value is
// false only when the example failed.
func (e *Example) Run(group *GroupContext, reporter Reporter) bool {
	e.group = group
	e.reporter = reporter
	setCurrentExample(e)
	defer clearCurrentExample()
	defer func() { e.reporter = nil }()

	e.start(reporter)

	switch {
	case e.metadata.Skip:
		e.result.PendingMessage = skipMessage(e.metadata)
	case e.settings.DryRun:
		// Nothing executes in dry-run mode.
	default:
		e.runWithAroundHooks()
	}

	// Guaranteed cleanup: wipe and release the run-scoped context so no
	// example's local state is observable by the next one, then try to
	// synthesize a description for examples declared without one.
	if e.group != nil {
		e.group.reset()
		e.group = nil
	}
	e.assignGeneratedDescription()

	return e.finish(reporter)
}

// FailWithError reports the example failed without running any hooks or the
// body, used when a group-level setup failure means the body must never
// execute. The result is timed like a normal run.
func (e *Example) FailWithError(reporter Reporter, err error) {
	e.reporter = reporter
	defer func() { e.reporter = nil }()
	e.start(reporter)
	e.captureError(err, "")
	e.finish(reporter)
}

// start notifies the reporter and records the started timestamp.
func (e *Example) start(reporter Reporter) {
	reporter.ExampleStarted(e)
	e.result.recordStarted(e.clock())
}

// runWithAroundHooks executes the guarded pipeline, wrapped in a Procsy when
// around hooks are registered so each hook can run code before and after the
// pipeline, or decline to invoke it at all.
func (e *Example) runWithAroundHooks() {
	if e.hooks.AroundCount(e) == 0 {
		e.runExamplePipeline()
		return
	}
	procsy := NewProcsy(e.metadata, e.runExamplePipeline)
	if err := callSafely(func() error { return e.hooks.RunAround(e, procsy) }); err != nil {
		e.captureError(err, ContextAroundHook)
	}
}

// runExamplePipeline is the innermost operation of the around composition:
// mock setup and before hooks, the body, pending bookkeeping, then the
// guaranteed after/verify/teardown phase. It executes at most once per run
// unless an around hook deliberately re-invokes its Procsy.
func (e *Example) runExamplePipeline() {
	defer e.runAfterExample()

	if err := e.runBeforeExample(); err != nil {
		e.captureError(err, "")
		return
	}

	bodyErr := callSafely(func() error { return e.body(e) })
	switch {
	case errors.Is(bodyErr, ErrSkipDeclared):
		// Dynamic skip: the bookkeeping already happened in Skip. Not a
		// failure.
	case bodyErr == nil && e.metadata.Pending:
		// A pending example that passes is itself an error.
		e.captureError(markFixed(e), "")
	case bodyErr != nil && e.metadata.Pending:
		// Pending examples swallow ordinary failures.
		e.result.PendingError = bodyErr
		if e.result.PendingMessage == "" {
			e.result.PendingMessage = pendingMessage(e.metadata)
		}
	case bodyErr != nil:
		e.captureError(bodyErr, "")
	}
}

// runBeforeExample prepares mocks and runs the before(:each) hooks. An error
// here means the body never executes.
func (e *Example) runBeforeExample() error {
	if err := e.mocks.SetupMocks(e); err != nil {
		return err
	}
	return callSafely(func() error { return e.hooks.RunBeforeEach(e) })
}

// runAfterExample is the guaranteed-cleanup phase of the pipeline: every
// after(:each) hook runs regardless of earlier failures, then mocks are
// verified, then torn down. Mock teardown runs even when a hook or
// verification panics.
func (e *Example) runAfterExample() {
	defer e.mocks.TeardownMocks(e)
	for _, err := range e.hooks.RunAfterEach(e) {
		e.captureError(err, ContextAfterHook)
	}
	e.verifyMocks()
}

// verifyMocks applies the verification policy: a failure is absorbed into
// the pending state when a pending message is already recorded (the pending
// declaration pre-empts verification strictness); otherwise it is captured
// silently, because the verification failure would also surface as the
// terminal failure and reporting it twice is noise.
func (e *Example) verifyMocks() {
	err := callSafely(func() error { return e.mocks.VerifyMocks(e) })
	if err == nil {
		return
	}
	if e.result.PendingMessage != "" {
		e.result.PendingFixed = boolPtr(false)
		e.metadata.Pending = true
		e.err = nil
		return
	}
	e.captureError(err, contextSuppress)
}

// captureError is the single rule every failure path funnels through. The
// first failure wins; later ones are dropped from the result but surfaced as
// a reporter diagnostic unless the context is the suppress marker.
func (e *Example) captureError(err error, context string) {
	if err == nil {
		return
	}
	if e.err == nil {
		e.err = err
		return
	}
	if context == contextSuppress || e.reporter == nil {
		return
	}

	var sb strings.Builder
	if context != "" {
		fmt.Fprintf(&sb, "An error occurred %s", context)
	} else {
		sb.WriteString("An additional error occurred")
	}
	fmt.Fprintf(&sb, " and will not be reported because an error was already captured: %T: %v", err, err)
	if frame := firstFrame(err); frame != "" {
		fmt.Fprintf(&sb, "\n  %s", frame)
	}
	e.reporter.Message(sb.String())
}

// assignGeneratedDescription fills in a doc string for examples declared
// without one, consulting the registered matcher description source and
// falling back to the declaration site. A failure here funnels through the
// ordinary capture rule with its own context label and can never displace an
// earlier captured failure.
func (e *Example) assignGeneratedDescription() {
	if e.metadata.Description != "" || !e.settings.ExpectMatcherDescriptions {
		return
	}
	description, err := e.generateDescription()
	if err != nil {
		e.captureError(err, ContextDescription)
		return
	}
	e.metadata.Description = description
	if parent := e.metadata.Parent(); parent != nil {
		e.metadata.FullDescription = joinDescriptions(parent.FullDescription, description)
	} else {
		e.metadata.FullDescription = description
	}
}

func (e *Example) generateDescription() (string, error) {
	if source := descriptionSource(); source != nil {
		description, err := source()
		if err != nil {
			return "", err
		}
		if description != "" {
			return e.formatDescription(description), nil
		}
	}
	if location := e.metadata.Location(); location != "" {
		return "example at " + location, nil
	}
	return "example", nil
}

func (e *Example) formatDescription(description string) string {
	if e.settings.FormatDescription != nil {
		return e.settings.FormatDescription(description)
	}
	return description
}

// finish computes the final status exactly once, records the terminal
// timestamps, and notifies the reporter. Returns false only for a failure.
func (e *Example) finish(reporter Reporter) bool {
	now := e.clock()
	switch {
	case e.err != nil:
		e.result.recordFinished(StatusFailed, now)
		reporter.ExampleFailed(e)
		return false
	case e.result.PendingMessage != "":
		e.result.recordFinished(StatusPending, now)
		reporter.ExamplePending(e)
		return true
	default:
		e.result.recordFinished(StatusPassed, now)
		reporter.ExamplePassed(e)
		return true
	}
}
