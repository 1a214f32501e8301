package reporter

import "github.com/brentsnook/rspec-core/internal/spec"

// Multi fans every event out to a set of reporters in order.
type Multi struct {
	reporters []spec.Reporter
}

// NewMulti creates a fan-out over the given reporters. Nil entries are
// dropped.
func NewMulti(reporters ...spec.Reporter) *Multi {
	m := &Multi{}
	for _, r := range reporters {
		if r != nil {
			m.reporters = append(m.reporters, r)
		}
	}
	return m
}

// ExampleStarted forwards the event to every reporter.
func (m *Multi) ExampleStarted(ex *spec.Example) {
	for _, r := range m.reporters {
		r.ExampleStarted(ex)
	}
}

// ExamplePassed forwards the event to every reporter.
func (m *Multi) ExamplePassed(ex *spec.Example) {
	for _, r := range m.reporters {
		r.ExamplePassed(ex)
	}
}

// ExampleFailed forwards the event to every reporter.
func (m *Multi) ExampleFailed(ex *spec.Example) {
	for _, r := range m.reporters {
		r.ExampleFailed(ex)
	}
}

// ExamplePending forwards the event to every reporter.
func (m *Multi) ExamplePending(ex *spec.Example) {
	for _, r := range m.reporters {
		r.ExamplePending(ex)
	}
}

// Message forwards the diagnostic to every reporter.
func (m *Multi) Message(text string) {
	for _, r := range m.reporters {
		r.Message(text)
	}
}

// Deprecation forwards the notice to every reporter.
func (m *Multi) Deprecation(d spec.Deprecation) {
	for _, r := range m.reporters {
		r.Deprecation(d)
	}
}
