package spec

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Capture context labels attached to secondary-failure diagnostics. The
// suppress marker means a collision is dropped without a diagnostic, used
// where the failure would otherwise surface twice.
const (
	ContextAroundHook  = "in an around(:each) hook"
	ContextAfterHook   = "in an after(:each) hook"
	ContextDescription = "while assigning the example description"
	contextSuppress    = "\x00suppress"
)

// pendingFixedMessage is the failure message for a pending example that
// unexpectedly passed.
const pendingFixedMessage = "Expected example to fail since it is pending, but it passed."

// PendingFixedError reports a pending example whose body completed without
// failing. Pending examples are contractually expected to fail, so success
// is itself a failure.
type PendingFixedError struct {
	Location string // Declaration site of the example
}

// Error implements the error interface for PendingFixedError.
func (e *PendingFixedError) Error() string {
	if e.Location == "" {
		return pendingFixedMessage
	}
	return fmt.Sprintf("%s (%s)", pendingFixedMessage, e.Location)
}

// ErrSkipDeclared is the control signal returned by Example.Skip from inside
// a body. It is not a failure: the pending bookkeeping has already happened
// by the time it is returned, and the pipeline absorbs it silently.
var ErrSkipDeclared = errors.New("skip declared in example")

// PanicError wraps a recovered panic so it can travel the ordinary error
// paths. The stack is captured at recovery time.
type PanicError struct {
	Value any    // The value passed to panic
	Stack string // Trimmed goroutine stack at the point of recovery
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a wrapped error when the panic value was one.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// callSafely invokes fn, converting a panic into a *PanicError. Bodies and
// hooks are user code; a panic there must become a captured failure, never
// take down the run.
func callSafely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: trimmedStack()}
		}
	}()
	return fn()
}

// trimmedStack returns the current goroutine stack without the frames
// belonging to the recovery machinery itself.
func trimmedStack() string {
	buf := make([]byte, 16*1024)
	n := runtime.Stack(buf, false)
	lines := strings.Split(string(buf[:n]), "\n")
	// Drop the header plus the runtime/recover frames at the top.
	if len(lines) > 7 {
		lines = append(lines[:1], lines[7:]...)
	}
	return strings.Join(lines, "\n")
}

// firstFrame returns a short description of the error's origin for collision
// diagnostics: the first stack line for panics, empty otherwise.
func firstFrame(err error) string {
	var pe *PanicError
	if errors.As(err, &pe) {
		for _, line := range strings.Split(pe.Stack, "\n")[1:] {
			line = strings.TrimSpace(line)
			if line != "" {
				return line
			}
		}
	}
	return ""
}
