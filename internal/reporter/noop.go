package reporter

import "github.com/brentsnook/rspec-core/internal/spec"

// Noop is a Reporter implementation that discards all events. Useful for
// tests or when reporting is disabled.
type Noop struct{}

// NewNoop creates a Noop reporter.
func NewNoop() *Noop {
	return &Noop{}
}

// ExampleStarted is a no-op implementation.
func (*Noop) ExampleStarted(*spec.Example) {}

// ExamplePassed is a no-op implementation.
func (*Noop) ExamplePassed(*spec.Example) {}

// ExampleFailed is a no-op implementation.
func (*Noop) ExampleFailed(*spec.Example) {}

// ExamplePending is a no-op implementation.
func (*Noop) ExamplePending(*spec.Example) {}

// Message is a no-op implementation.
func (*Noop) Message(string) {}

// Deprecation is a no-op implementation.
func (*Noop) Deprecation(spec.Deprecation) {}
