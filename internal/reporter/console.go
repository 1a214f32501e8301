// Package reporter provides Reporter implementations: colored console
// output, JSON and HTML report files, a fan-out, and a discard reporter.
//
// All implementations are safe for use from the single runner goroutine and
// tolerate interleaved Message calls mid-example.
package reporter

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/brentsnook/rspec-core/internal/spec"
)

// RunSummary aggregates the outcome of a whole run for terminal display.
type RunSummary struct {
	Examples int           // Total examples run
	Failures int           // Examples that failed
	Pending  int           // Examples reported pending
	Duration time.Duration // Wall time for the run
}

// Console writes doc-style example output to a writer with [HH:MM:SS]
// timestamps. Color output is enabled for TTY writers unless overridden.
type Console struct {
	writer io.Writer
	mutex  sync.Mutex
	color  bool
}

// NewConsole creates a Console reporter. colorMode is auto, always, or
// never; auto enables color when the writer is a terminal.
func NewConsole(writer io.Writer, colorMode string) *Console {
	return &Console{
		writer: writer,
		color:  useColor(writer, colorMode),
	}
}

// useColor decides whether to emit ANSI colors for the writer.
func useColor(w io.Writer, mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// ExampleStarted is a no-op for the console; output happens on the terminal
// event so each example occupies one line.
func (c *Console) ExampleStarted(ex *spec.Example) {}

// ExamplePassed logs the example in green.
func (c *Console) ExamplePassed(ex *spec.Example) {
	c.logStatus(ex, "PASS", color.FgGreen, "")
}

// ExampleFailed logs the example in red with the captured failure.
func (c *Console) ExampleFailed(ex *spec.Example) {
	detail := ""
	if err := ex.Err(); err != nil {
		detail = err.Error()
	}
	c.logStatus(ex, "FAIL", color.FgRed, detail)
}

// ExamplePending logs the example in yellow with the pending reason.
func (c *Console) ExamplePending(ex *spec.Example) {
	c.logStatus(ex, "PENDING", color.FgYellow, ex.ExecutionResult().PendingMessage)
}

func (c *Console) logStatus(ex *spec.Example, label string, attr color.Attribute, detail string) {
	if c.writer == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	description := ex.FullDescription()
	if description == "" {
		description = ex.Location()
	}

	if c.color {
		label = color.New(attr).Sprint(label)
	}
	line := fmt.Sprintf("[%s] %s %s", timestamp(), label, description)
	if detail != "" {
		line += fmt.Sprintf(" (%s)", detail)
	}
	fmt.Fprintln(c.writer, line)
}

// Message writes secondary diagnostic text, such as collision notices for
// failures that arrived after one was already captured.
func (c *Console) Message(text string) {
	if c.writer == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.color {
		text = color.New(color.FgHiBlack).Sprint(text)
	}
	fmt.Fprintf(c.writer, "[%s] %s\n", timestamp(), text)
}

// Deprecation writes a deprecation notice in yellow.
func (c *Console) Deprecation(d spec.Deprecation) {
	if c.writer == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	text := d.Message
	if text == "" {
		text = fmt.Sprintf("DEPRECATION: %s is deprecated", d.Deprecated)
		if d.Replacement != "" {
			text += fmt.Sprintf("; use %s instead", d.Replacement)
		}
		if d.CallSite != "" {
			text += fmt.Sprintf(" (called from %s)", d.CallSite)
		}
	}
	if c.color {
		text = color.New(color.FgYellow).Sprint(text)
	}
	fmt.Fprintf(c.writer, "[%s] %s\n", timestamp(), text)
}

// RunFinished writes the run summary with failure counts colored by outcome.
func (c *Console) RunFinished(s RunSummary) {
	if c.writer == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	line := fmt.Sprintf("%d examples, %d failures", s.Examples, s.Failures)
	if s.Pending > 0 {
		line += fmt.Sprintf(", %d pending", s.Pending)
	}
	if c.color {
		attr := color.FgGreen
		if s.Failures > 0 {
			attr = color.FgRed
		} else if s.Pending > 0 {
			attr = color.FgYellow
		}
		line = color.New(attr).Sprint(line)
	}
	fmt.Fprintf(c.writer, "[%s] %s\n", timestamp(), line)
	fmt.Fprintf(c.writer, "[%s] Finished in %s\n", timestamp(), s.Duration)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}
