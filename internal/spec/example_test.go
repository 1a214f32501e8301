package spec

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReporter records every lifecycle event it receives.
type fakeReporter struct {
	started      []*Example
	passed       []*Example
	failed       []*Example
	pending      []*Example
	messages     []string
	deprecations []Deprecation
}

func (r *fakeReporter) ExampleStarted(ex *Example) { r.started = append(r.started, ex) }
func (r *fakeReporter) ExamplePassed(ex *Example)  { r.passed = append(r.passed, ex) }
func (r *fakeReporter) ExampleFailed(ex *Example)  { r.failed = append(r.failed, ex) }
func (r *fakeReporter) ExamplePending(ex *Example) { r.pending = append(r.pending, ex) }
func (r *fakeReporter) Message(text string)        { r.messages = append(r.messages, text) }
func (r *fakeReporter) Deprecation(d Deprecation)  { r.deprecations = append(r.deprecations, d) }

// stubClock returns a time source that advances by step on every call.
func stubClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}

// stubHooks is a minimal Hooks implementation driven by plain funcs.
type stubHooks struct {
	before  func(*Example) error
	after   func(*Example) []error
	arounds int
	around  func(*Example, *Procsy) error
}

func (h *stubHooks) RunBeforeEach(ex *Example) error {
	if h.before == nil {
		return nil
	}
	return h.before(ex)
}

func (h *stubHooks) RunAfterEach(ex *Example) []error {
	if h.after == nil {
		return nil
	}
	return h.after(ex)
}

func (h *stubHooks) AroundCount(*Example) int { return h.arounds }

func (h *stubHooks) RunAround(ex *Example, procsy *Procsy) error {
	if h.around == nil {
		procsy.Call()
		return nil
	}
	return h.around(ex, procsy)
}

// stubMocks is a minimal MockLifecycle implementation driven by plain funcs.
type stubMocks struct {
	setupErr    error
	verifyErr   error
	setupCount  int
	verifyCount int
	downCount   int
}

func (m *stubMocks) SetupMocks(*Example) error {
	m.setupCount++
	return m.setupErr
}

func (m *stubMocks) VerifyMocks(*Example) error {
	m.verifyCount++
	return m.verifyErr
}

func (m *stubMocks) TeardownMocks(*Example) { m.downCount++ }

func newTestExample(md *Metadata, body Body, hooks Hooks, mocks MockLifecycle, settings Settings) *Example {
	ex := NewExample(md, body, hooks, mocks, settings)
	ex.SetClock(stubClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), 250*time.Millisecond))
	return ex
}

func TestRun_PassingExample(t *testing.T) {
	rep := &fakeReporter{}
	ran := 0
	ex := newTestExample(nil, func(*Example) error {
		ran++
		return nil
	}, nil, nil, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.True(t, ok)
	assert.Equal(t, 1, ran)
	assert.Equal(t, StatusPassed, ex.ExecutionResult().Status)
	require.Len(t, rep.started, 1)
	require.Len(t, rep.passed, 1)
	assert.Empty(t, rep.failed)
	assert.Empty(t, rep.pending)
}

func TestRun_FailingBody(t *testing.T) {
	rep := &fakeReporter{}
	ex := newTestExample(nil, func(*Example) error {
		return errors.New("boom")
	}, nil, nil, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.False(t, ok)
	assert.Equal(t, StatusFailed, ex.ExecutionResult().Status)
	require.Error(t, ex.Err())
	assert.Equal(t, "boom", ex.Err().Error())
	require.Len(t, rep.failed, 1)
}

func TestRun_PanickingBody(t *testing.T) {
	rep := &fakeReporter{}
	ex := newTestExample(nil, func(*Example) error {
		panic("kaboom")
	}, nil, nil, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.False(t, ok)
	var pe *PanicError
	require.ErrorAs(t, ex.Err(), &pe)
	assert.Equal(t, "kaboom", pe.Value)
	assert.NotEmpty(t, pe.Stack)
}

func TestRun_RunTimeUsesInjectedClock(t *testing.T) {
	rep := &fakeReporter{}
	ex := NewExample(nil, nil, nil, nil, Settings{})
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ex.SetClock(stubClock(start, 3*time.Second))

	ex.Run(NewGroupContext(), rep)

	result := ex.ExecutionResult()
	assert.Equal(t, start, result.StartedAt)
	assert.Equal(t, start.Add(3*time.Second), result.FinishedAt)
	assert.Equal(t, 3*time.Second, result.RunTime)
	assert.GreaterOrEqual(t, result.RunTime, time.Duration(0))
}

func TestRun_PendingBodyFails_ReportsPending(t *testing.T) {
	rep := &fakeReporter{}
	md := &Metadata{Description: "does the thing", Pending: true, PendingMessage: "awaiting fix"}
	bodyErr := errors.New("still broken")
	ex := newTestExample(md, func(*Example) error {
		return bodyErr
	}, nil, nil, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.True(t, ok)
	result := ex.ExecutionResult()
	assert.Equal(t, StatusPending, result.Status)
	assert.Equal(t, "awaiting fix", result.PendingMessage)
	assert.Equal(t, bodyErr, result.PendingError)
	assert.NoError(t, ex.Err())
	require.Len(t, rep.pending, 1)
	assert.Empty(t, rep.failed)
}

func TestRun_PendingBodyPasses_ReportsPendingFixedFailure(t *testing.T) {
	rep := &fakeReporter{}
	md := &Metadata{Pending: true, File: "widget_spec.go", Line: 12}
	ex := newTestExample(md, func(*Example) error {
		return nil
	}, nil, nil, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.False(t, ok)
	assert.Equal(t, StatusFailed, ex.ExecutionResult().Status)
	var fixed *PendingFixedError
	require.ErrorAs(t, ex.Err(), &fixed)
	assert.Contains(t, ex.Err().Error(), "Expected example to fail since it is pending, but it passed.")
	assert.Contains(t, ex.Err().Error(), "widget_spec.go:12")
	require.NotNil(t, ex.ExecutionResult().PendingFixed)
	assert.True(t, *ex.ExecutionResult().PendingFixed)
}

func TestRun_SkippedExample_NothingExecutes(t *testing.T) {
	rep := &fakeReporter{}
	md := &Metadata{Skip: true, SkipMessage: "not on this platform"}
	hookRuns := 0
	bodyRuns := 0
	hooks := &stubHooks{
		before: func(*Example) error { hookRuns++; return nil },
		after:  func(*Example) []error { hookRuns++; return nil },
	}
	mocks := &stubMocks{}
	ex := newTestExample(md, func(*Example) error {
		bodyRuns++
		return nil
	}, hooks, mocks, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.True(t, ok)
	assert.Equal(t, StatusPending, ex.ExecutionResult().Status)
	assert.Equal(t, "not on this platform", ex.ExecutionResult().PendingMessage)
	assert.Zero(t, bodyRuns)
	assert.Zero(t, hookRuns)
	assert.Zero(t, mocks.setupCount)
	assert.Zero(t, mocks.downCount)
	require.Len(t, rep.pending, 1)
}

func TestRun_DynamicSkip(t *testing.T) {
	rep := &fakeReporter{}
	ex := newTestExample(nil, func(ex *Example) error {
		return ex.Skip("backend unavailable")
	}, nil, nil, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.True(t, ok)
	assert.Equal(t, StatusPending, ex.ExecutionResult().Status)
	assert.Equal(t, "backend unavailable", ex.ExecutionResult().PendingMessage)
	assert.NoError(t, ex.Err())
}

func TestRun_DynamicPending(t *testing.T) {
	rep := &fakeReporter{}
	ex := newTestExample(nil, func(ex *Example) error {
		ex.Pending("flaky upstream")
		return errors.New("expected failure")
	}, nil, nil, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.True(t, ok)
	assert.Equal(t, StatusPending, ex.ExecutionResult().Status)
	assert.Equal(t, "flaky upstream", ex.ExecutionResult().PendingMessage)
}

func TestRun_DryRun_NothingExecutes(t *testing.T) {
	rep := &fakeReporter{}
	bodyRuns := 0
	mocks := &stubMocks{}
	hooks := &stubHooks{before: func(*Example) error { t.Fatal("before hook ran in dry-run"); return nil }}
	ex := newTestExample(nil, func(*Example) error {
		bodyRuns++
		return nil
	}, hooks, mocks, Settings{DryRun: true})

	ok := ex.Run(NewGroupContext(), rep)

	require.True(t, ok)
	assert.Zero(t, bodyRuns)
	assert.Zero(t, mocks.setupCount)
	assert.Equal(t, StatusPassed, ex.ExecutionResult().Status)
	require.Len(t, rep.started, 1)
	require.Len(t, rep.passed, 1)
}

func TestRun_FirstErrorWins_SecondBecomesDiagnostic(t *testing.T) {
	rep := &fakeReporter{}
	hooks := &stubHooks{
		after: func(*Example) []error {
			return []error{errors.New("cleanup exploded")}
		},
	}
	ex := newTestExample(nil, func(*Example) error {
		return errors.New("boom")
	}, hooks, nil, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.False(t, ok)
	assert.Equal(t, "boom", ex.Err().Error())
	require.Len(t, rep.messages, 1)
	assert.Contains(t, rep.messages[0], ContextAfterHook)
	assert.Contains(t, rep.messages[0], "cleanup exploded")
}

func TestRun_AfterHookFailureAlone_IsCaptured(t *testing.T) {
	rep := &fakeReporter{}
	hooks := &stubHooks{
		after: func(*Example) []error {
			return []error{errors.New("cleanup exploded")}
		},
	}
	ex := newTestExample(nil, nil, hooks, nil, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.False(t, ok)
	assert.Equal(t, "cleanup exploded", ex.Err().Error())
	assert.Empty(t, rep.messages)
}

func TestRun_BeforeHookFailure_BodySkippedAfterStillRuns(t *testing.T) {
	rep := &fakeReporter{}
	bodyRuns := 0
	afterRuns := 0
	mocks := &stubMocks{}
	hooks := &stubHooks{
		before: func(*Example) error { return errors.New("setup failed") },
		after:  func(*Example) []error { afterRuns++; return nil },
	}
	ex := newTestExample(nil, func(*Example) error {
		bodyRuns++
		return nil
	}, hooks, mocks, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.False(t, ok)
	assert.Zero(t, bodyRuns)
	assert.Equal(t, 1, afterRuns)
	assert.Equal(t, 1, mocks.downCount, "mock teardown must run after a before-hook failure")
	assert.Equal(t, "setup failed", ex.Err().Error())
}

func TestRun_AroundHookNeverInvokesProcsy(t *testing.T) {
	rep := &fakeReporter{}
	bodyRuns := 0
	mocks := &stubMocks{}
	hooks := &stubHooks{
		arounds: 1,
		around: func(*Example, *Procsy) error {
			// Deliberately declines to invoke the pipeline.
			return nil
		},
	}
	ex := newTestExample(nil, func(*Example) error {
		bodyRuns++
		return nil
	}, hooks, mocks, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.True(t, ok)
	assert.Zero(t, bodyRuns)
	assert.Zero(t, mocks.setupCount)
	assert.Equal(t, StatusPassed, ex.ExecutionResult().Status)
}

func TestRun_AroundHookInvokesPipelineOnce(t *testing.T) {
	rep := &fakeReporter{}
	bodyRuns := 0
	mocks := &stubMocks{}
	var sawMetadata *Metadata
	hooks := &stubHooks{
		arounds: 1,
		around: func(_ *Example, procsy *Procsy) error {
			sawMetadata = procsy.Metadata()
			procsy.Call()
			return nil
		},
	}
	md := &Metadata{Description: "wrapped"}
	ex := newTestExample(md, func(*Example) error {
		bodyRuns++
		return nil
	}, hooks, mocks, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.True(t, ok)
	assert.Equal(t, 1, bodyRuns)
	assert.Equal(t, 1, mocks.setupCount)
	assert.Equal(t, 1, mocks.verifyCount)
	assert.Equal(t, 1, mocks.downCount)
	assert.Same(t, md, sawMetadata)
}

func TestRun_AroundHookError_CapturedWithContext(t *testing.T) {
	rep := &fakeReporter{}
	hooks := &stubHooks{
		arounds: 1,
		around: func(_ *Example, procsy *Procsy) error {
			procsy.Call()
			return errors.New("around broke")
		},
	}
	ex := newTestExample(nil, nil, hooks, nil, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.False(t, ok)
	assert.Equal(t, "around broke", ex.Err().Error())
}

func TestRun_VerificationFailure_CapturedSilently(t *testing.T) {
	rep := &fakeReporter{}
	mocks := &stubMocks{verifyErr: errors.New("expected save was never received")}
	ex := newTestExample(nil, nil, nil, mocks, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.False(t, ok)
	assert.Equal(t, "expected save was never received", ex.Err().Error())
	// The silent marker suppresses the collision diagnostic.
	assert.Empty(t, rep.messages)
}

func TestRun_VerificationFailure_SilencedCollision(t *testing.T) {
	rep := &fakeReporter{}
	mocks := &stubMocks{verifyErr: errors.New("expectation unmet")}
	ex := newTestExample(nil, func(*Example) error {
		return errors.New("boom")
	}, nil, mocks, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.False(t, ok)
	assert.Equal(t, "boom", ex.Err().Error())
	assert.Empty(t, rep.messages, "a verification collision must not be reported twice")
}

func TestRun_VerificationFailure_AbsorbedIntoPending(t *testing.T) {
	rep := &fakeReporter{}
	mocks := &stubMocks{verifyErr: errors.New("expectation unmet")}
	md := &Metadata{Pending: true, PendingMessage: "awaiting fix"}
	ex := newTestExample(md, func(*Example) error {
		return errors.New("still broken")
	}, nil, mocks, Settings{})

	ok := ex.Run(NewGroupContext(), rep)

	require.True(t, ok)
	result := ex.ExecutionResult()
	assert.Equal(t, StatusPending, result.Status)
	require.NotNil(t, result.PendingFixed)
	assert.False(t, *result.PendingFixed)
	assert.NoError(t, ex.Err())
	assert.True(t, ex.IsPending())
}

func TestRun_ClearsGroupContextAndCurrentExample(t *testing.T) {
	rep := &fakeReporter{}
	ctx := NewGroupContext()
	ctx.Set("db", "handle")
	var duringRun *Example
	ex := newTestExample(nil, func(ex *Example) error {
		duringRun = CurrentExample()
		ex.Group().Set("tmpdir", "/tmp/spec")
		return nil
	}, nil, nil, Settings{})

	ex.Run(ctx, rep)

	assert.Same(t, ex, duringRun)
	assert.Nil(t, CurrentExample())
	assert.Nil(t, ex.Group())
	_, ok := ctx.Lookup("db")
	assert.False(t, ok, "group context state must be wiped after the run")
	_, ok = ctx.Lookup("tmpdir")
	assert.False(t, ok)
}

func TestRun_CurrentExampleClearedOnPanicPath(t *testing.T) {
	rep := &fakeReporter{}
	ex := newTestExample(nil, func(*Example) error {
		panic("kaboom")
	}, nil, nil, Settings{})

	ex.Run(NewGroupContext(), rep)

	assert.Nil(t, CurrentExample())
}

func TestFailWithError(t *testing.T) {
	rep := &fakeReporter{}
	bodyRuns := 0
	mocks := &stubMocks{}
	hooks := &stubHooks{before: func(*Example) error { t.Fatal("hooks must not run"); return nil }}
	ex := newTestExample(nil, func(*Example) error {
		bodyRuns++
		return nil
	}, hooks, mocks, Settings{})

	ex.FailWithError(rep, errors.New("before-all setup failed"))

	assert.Zero(t, bodyRuns)
	assert.Zero(t, mocks.setupCount)
	assert.Equal(t, StatusFailed, ex.ExecutionResult().Status)
	assert.Equal(t, "before-all setup failed", ex.Err().Error())
	assert.Equal(t, 250*time.Millisecond, ex.ExecutionResult().RunTime)
	require.Len(t, rep.started, 1)
	require.Len(t, rep.failed, 1)
}

func TestRun_GeneratedDescription(t *testing.T) {
	SetDescriptionSource(func() (string, error) {
		return "  is   expected to equal 3  ", nil
	})
	defer SetDescriptionSource(nil)

	rep := &fakeReporter{}
	parent := &Metadata{Description: "Calculator", FullDescription: "Calculator"}
	md := ChildMetadata(parent, "", nil)
	settings := Settings{
		ExpectMatcherDescriptions: true,
		FormatDescription: func(s string) string {
			return "is expected to equal 3"
		},
	}
	ex := newTestExample(md, nil, nil, nil, settings)

	ex.Run(NewGroupContext(), rep)

	assert.Equal(t, "is expected to equal 3", ex.Description())
	assert.Equal(t, "Calculator is expected to equal 3", ex.FullDescription())
}

func TestRun_GeneratedDescription_FallsBackToLocation(t *testing.T) {
	SetDescriptionSource(nil)
	rep := &fakeReporter{}
	md := &Metadata{File: "calc_spec.go", Line: 7}
	ex := newTestExample(md, nil, nil, nil, Settings{ExpectMatcherDescriptions: true})

	ex.Run(NewGroupContext(), rep)

	assert.Equal(t, "example at calc_spec.go:7", ex.Description())
}

func TestRun_DescriptionSynthesisFailure_Captured(t *testing.T) {
	SetDescriptionSource(func() (string, error) {
		return "", errors.New("matcher state corrupted")
	})
	defer SetDescriptionSource(nil)

	rep := &fakeReporter{}
	ex := newTestExample(&Metadata{}, nil, nil, nil, Settings{ExpectMatcherDescriptions: true})

	ok := ex.Run(NewGroupContext(), rep)

	require.False(t, ok)
	assert.Equal(t, "matcher state corrupted", ex.Err().Error())
}

func TestRun_DescriptionSynthesisFailure_NeverMasksEarlierError(t *testing.T) {
	SetDescriptionSource(func() (string, error) {
		return "", errors.New("matcher state corrupted")
	})
	defer SetDescriptionSource(nil)

	rep := &fakeReporter{}
	ex := newTestExample(&Metadata{}, func(*Example) error {
		return errors.New("boom")
	}, nil, nil, Settings{ExpectMatcherDescriptions: true})

	ok := ex.Run(NewGroupContext(), rep)

	require.False(t, ok)
	assert.Equal(t, "boom", ex.Err().Error())
	require.Len(t, rep.messages, 1)
	assert.Contains(t, rep.messages[0], ContextDescription)
}

func TestRun_SecondRunOfSameMetadataKeepsFirstFailure(t *testing.T) {
	rep := &fakeReporter{}
	ex := newTestExample(nil, func(*Example) error { return errors.New("first") }, nil, nil, Settings{})
	ex.Run(NewGroupContext(), rep)

	ex.captureError(errors.New("second"), "")
	assert.Equal(t, "first", ex.Err().Error())
}
