// Package warnings formats and forwards deprecation and warning notices
// through a reporter, attaching the current example's source location when
// one is available.
package warnings

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/brentsnook/rspec-core/internal/spec"
)

// frameworkPathFragment identifies this module's own frames so call sites
// point at user code.
const frameworkPathFragment = "rspec-core/internal"

// Options controls how Warn decorates a message.
type Options struct {
	// WithSpecLocation appends the currently running example's declaration
	// site, or a note that the origin could not be determined.
	WithSpecLocation bool
}

// Notifier forwards notices. The zero value writes warnings to os.Stderr and
// drops deprecations.
type Notifier struct {
	// Reporter receives deprecation notices. May be nil.
	Reporter spec.Reporter

	// Out receives plain warnings. Defaults to os.Stderr.
	Out io.Writer
}

// Deprecate forwards a deprecation notice for label, merged with any
// caller-supplied fields. The call site defaults to the first stack frame
// outside this framework.
func (n *Notifier) Deprecate(label string, extra spec.Deprecation) {
	if n.Reporter == nil {
		return
	}
	d := extra
	d.Deprecated = label
	if d.CallSite == "" {
		d.CallSite = firstNonFrameworkFrame()
	}
	n.Reporter.Deprecation(d)
}

// Warn writes a warning message, decorated per opts.
func (n *Notifier) Warn(message string, opts Options) {
	if opts.WithSpecLocation {
		message = appendSpecLocation(message)
	}
	out := n.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "WARNING: %s\n", message)
}

// appendSpecLocation normalizes the trailing period and appends the current
// example's declaration site when one is known.
func appendSpecLocation(message string) string {
	message = strings.TrimRight(message, " ")
	if !strings.HasSuffix(message, ".") {
		message += "."
	}
	ex := spec.CurrentExample()
	if ex == nil || ex.Location() == "" {
		return message + " The warning occurred outside a running example."
	}
	return fmt.Sprintf("%s Warning generated from spec at %s.", message, ex.Location())
}

// firstNonFrameworkFrame walks the call stack for the first frame that does
// not belong to this framework.
func firstNonFrameworkFrame() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !strings.Contains(frame.File, frameworkPathFragment) {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if !more {
			return ""
		}
	}
}
