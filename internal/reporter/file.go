package reporter

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/brentsnook/rspec-core/internal/filelock"
	"github.com/brentsnook/rspec-core/internal/spec"
)

// ExampleRecord is one example's outcome as written to the JSON report.
type ExampleRecord struct {
	ID              string `json:"id"`
	Description     string `json:"description"`
	FullDescription string `json:"full_description"`
	Location        string `json:"location,omitempty"`
	Status          string `json:"status"`
	RunTimeMS       int64  `json:"run_time_ms"`
	Error           string `json:"error,omitempty"`
	PendingMessage  string `json:"pending_message,omitempty"`
}

// Report is the JSON document produced by the File reporter.
type Report struct {
	Examples []ExampleRecord `json:"examples"`
	Messages []string        `json:"messages,omitempty"`
	Summary  struct {
		Total    int   `json:"total"`
		Failures int   `json:"failures"`
		Pending  int   `json:"pending"`
		Duration int64 `json:"duration_ms"`
	} `json:"summary"`
}

// File accumulates example outcomes and writes them as a JSON report. The
// write is flock-guarded so sharded runner processes pointed at the same
// path do not tear each other's output.
type File struct {
	path    string
	mutex   sync.Mutex
	report  Report
	started time.Time
}

// NewFile creates a File reporter targeting path.
func NewFile(path string) *File {
	return &File{path: path, started: time.Now()}
}

// ExampleStarted is a no-op; records are appended on terminal events.
func (f *File) ExampleStarted(ex *spec.Example) {}

// ExamplePassed records a passed example.
func (f *File) ExamplePassed(ex *spec.Example) { f.record(ex) }

// ExampleFailed records a failed example with its captured error.
func (f *File) ExampleFailed(ex *spec.Example) { f.record(ex) }

// ExamplePending records a pending example with its reason.
func (f *File) ExamplePending(ex *spec.Example) { f.record(ex) }

func (f *File) record(ex *spec.Example) {
	result := ex.ExecutionResult()
	rec := ExampleRecord{
		ID:              ex.ID().String(),
		Description:     ex.Description(),
		FullDescription: ex.FullDescription(),
		Location:        ex.Location(),
		Status:          result.Status.String(),
		RunTimeMS:       result.RunTime.Milliseconds(),
		PendingMessage:  result.PendingMessage,
	}
	if err := ex.Err(); err != nil {
		rec.Error = err.Error()
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.report.Examples = append(f.report.Examples, rec)
	switch result.Status {
	case spec.StatusFailed:
		f.report.Summary.Failures++
	case spec.StatusPending:
		f.report.Summary.Pending++
	}
	f.report.Summary.Total++
}

// Message appends secondary diagnostic text to the report.
func (f *File) Message(text string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.report.Messages = append(f.report.Messages, text)
}

// Deprecation appends a deprecation notice to the report's message list.
func (f *File) Deprecation(d spec.Deprecation) {
	text := d.Message
	if text == "" {
		text = fmt.Sprintf("DEPRECATION: %s is deprecated", d.Deprecated)
		if d.CallSite != "" {
			text += fmt.Sprintf(" (called from %s)", d.CallSite)
		}
	}
	f.Message(text)
}

// WriteReport serializes the report and writes it under the path's lock.
func (f *File) WriteReport() error {
	f.mutex.Lock()
	f.report.Summary.Duration = time.Since(f.started).Milliseconds()
	data, err := json.MarshalIndent(f.report, "", "  ")
	f.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return filelock.LockedWrite(f.path, data)
}
