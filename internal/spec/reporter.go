package spec

// Deprecation carries the fields forwarded to a reporter's deprecation
// channel.
type Deprecation struct {
	Deprecated  string // What is deprecated
	Replacement string // What to use instead (optional)
	CallSite    string // First non-framework stack frame (optional)
	Message     string // Fully formed message overriding the default (optional)
}

// Reporter receives lifecycle events for examples as they run. Exactly one
// terminal event (passed/failed/pending) is delivered per started example.
type Reporter interface {
	ExampleStarted(ex *Example)
	ExamplePassed(ex *Example)
	ExampleFailed(ex *Example)
	ExamplePending(ex *Example)

	// Message delivers secondary diagnostic text, such as collision notices
	// for failures that arrived after one was already captured.
	Message(text string)

	// Deprecation delivers a deprecation notice.
	Deprecation(d Deprecation)
}

// Hooks is the slice of the hook registry the run orchestration needs: a
// single ordered sequence per phase, run synchronously. Ordering and
// filter matching are the registry's concern.
type Hooks interface {
	// RunBeforeEach runs the before(:each) hooks. The first error aborts
	// the sequence; the body will not execute.
	RunBeforeEach(ex *Example) error

	// RunAfterEach runs every after(:each) hook even when some fail, and
	// returns the errors in encounter order.
	RunAfterEach(ex *Example) []error

	// AroundCount reports how many around(:each) hooks apply to ex, so an
	// example with none skips the Procsy wrapping entirely.
	AroundCount(ex *Example) int

	// RunAround hands the wrapped pipeline to the around(:each) hooks.
	RunAround(ex *Example, procsy *Procsy) error
}

// MockLifecycle is the mocking subsystem as seen by the run orchestration.
type MockLifecycle interface {
	SetupMocks(ex *Example) error
	VerifyMocks(ex *Example) error
	TeardownMocks(ex *Example)
}

// Settings is the slice of configuration the run orchestration consults.
type Settings struct {
	// DryRun starts and finishes examples without running hooks, bodies, or
	// the mock lifecycle.
	DryRun bool

	// ExpectMatcherDescriptions enables description synthesis for examples
	// declared without a doc string.
	ExpectMatcherDescriptions bool

	// FormatDescription post-processes generated descriptions (nil = keep
	// as generated).
	FormatDescription func(string) string
}

// noopHooks is used when an example is constructed without a registry.
type noopHooks struct{}

func (noopHooks) RunBeforeEach(*Example) error { return nil }

func (noopHooks) RunAfterEach(*Example) []error { return nil }

func (noopHooks) AroundCount(*Example) int { return 0 }

func (noopHooks) RunAround(*Example, *Procsy) error { return nil }

// noopMocks is used when an example is constructed without a mock subsystem.
type noopMocks struct{}

func (noopMocks) SetupMocks(*Example) error { return nil }

func (noopMocks) VerifyMocks(*Example) error { return nil }

func (noopMocks) TeardownMocks(*Example) {}
