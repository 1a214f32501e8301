package spec

import "time"

// Status represents the lifecycle state of one example run.
type Status int

const (
	// StatusNotStarted means Run has not been called yet.
	StatusNotStarted Status = iota
	// StatusStarted means the example has been reported started but has no
	// terminal outcome yet.
	StatusStarted
	// StatusPassed means the example completed without a captured failure.
	StatusPassed
	// StatusFailed means a failure was captured for the example.
	StatusFailed
	// StatusPending means the example was pending or skipped.
	StatusPending
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusStarted:
		return "started"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is a final outcome.
func (s Status) Terminal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusPending
}

// ExecutionResult accumulates timestamps and the final status for one example
// run. It is owned by the example and mutated only by the run orchestration.
type ExecutionResult struct {
	Status         Status        // Lifecycle state, only ever moves forward
	StartedAt      time.Time     // When the example was reported started
	FinishedAt     time.Time     // When a terminal status was recorded
	RunTime        time.Duration // FinishedAt - StartedAt, set with the terminal status
	PendingMessage string        // Reason the example is pending/skipped (empty if none)
	PendingFixed   *bool         // Set true when a pending example unexpectedly passed
	PendingError   error         // Failure swallowed because the example was pending
}

// recordStarted marks the result started at the given time.
func (r *ExecutionResult) recordStarted(at time.Time) {
	r.Status = StatusStarted
	r.StartedAt = at
}

// recordFinished records a terminal status. RunTime is derived from the
// started timestamp so it is only ever set together with a terminal status.
func (r *ExecutionResult) recordFinished(status Status, at time.Time) {
	r.Status = status
	r.FinishedAt = at
	r.RunTime = at.Sub(r.StartedAt)
}

// boolPtr returns a pointer to b, used for the optional PendingFixed field.
func boolPtr(b bool) *bool {
	return &b
}
