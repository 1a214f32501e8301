package spec

// NoReason is the pending message recorded when a pending or skip directive
// carries no explanation.
const NoReason = "No reason given"

// MarkPending flags the example as pending with the given reason and records
// the reason on the execution result. Used both at declaration time (via
// metadata directives) and dynamically from inside a body.
func MarkPending(ex *Example, message string) {
	if message == "" {
		message = NoReason
	}
	ex.metadata.Pending = true
	ex.metadata.PendingMessage = message
	ex.result.PendingMessage = message
}

// MarkSkipped records the skip reason on the execution result. The example's
// body and hooks never execute; finish reports the example pending.
func MarkSkipped(ex *Example, message string) {
	if message == "" {
		message = NoReason
	}
	ex.metadata.Skip = true
	ex.metadata.SkipMessage = message
	ex.result.PendingMessage = message
}

// markFixed records that a pending example unexpectedly passed and returns
// the distinguished failure that reports it.
func markFixed(ex *Example) *PendingFixedError {
	ex.result.PendingFixed = boolPtr(true)
	return &PendingFixedError{Location: ex.metadata.Location()}
}

// skipMessage returns the reason attached to the example's skip directive.
func skipMessage(m *Metadata) string {
	if m.SkipMessage != "" {
		return m.SkipMessage
	}
	return NoReason
}

// pendingMessage returns the reason attached to the example's pending
// directive.
func pendingMessage(m *Metadata) string {
	if m.PendingMessage != "" {
		return m.PendingMessage
	}
	return NoReason
}
