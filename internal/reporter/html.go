package reporter

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"sync"

	"github.com/yuin/goldmark"

	"github.com/brentsnook/rspec-core/internal/spec"
)

// HTML accumulates example outcomes and writes a standalone HTML report.
// Group and example doc strings may contain markdown; they are rendered to
// HTML via goldmark.
type HTML struct {
	path     string
	markdown goldmark.Markdown
	mutex    sync.Mutex
	entries  []htmlEntry
	messages []string
}

type htmlEntry struct {
	description string
	location    string
	status      spec.Status
	detail      string
}

// NewHTML creates an HTML reporter targeting path.
func NewHTML(path string) *HTML {
	return &HTML{
		path:     path,
		markdown: goldmark.New(),
	}
}

// ExampleStarted is a no-op; entries are appended on terminal events.
func (h *HTML) ExampleStarted(ex *spec.Example) {}

// ExamplePassed records a passed example.
func (h *HTML) ExamplePassed(ex *spec.Example) { h.record(ex, "") }

// ExampleFailed records a failed example with its captured error.
func (h *HTML) ExampleFailed(ex *spec.Example) {
	detail := ""
	if err := ex.Err(); err != nil {
		detail = err.Error()
	}
	h.record(ex, detail)
}

// ExamplePending records a pending example with its reason.
func (h *HTML) ExamplePending(ex *spec.Example) {
	h.record(ex, ex.ExecutionResult().PendingMessage)
}

func (h *HTML) record(ex *spec.Example, detail string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.entries = append(h.entries, htmlEntry{
		description: ex.FullDescription(),
		location:    ex.Location(),
		status:      ex.ExecutionResult().Status,
		detail:      detail,
	})
}

// Message records secondary diagnostic text for the report footer.
func (h *HTML) Message(text string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.messages = append(h.messages, text)
}

// Deprecation records a deprecation notice for the report footer.
func (h *HTML) Deprecation(d spec.Deprecation) {
	text := d.Message
	if text == "" {
		text = fmt.Sprintf("DEPRECATION: %s is deprecated", d.Deprecated)
	}
	h.Message(text)
}

// WriteReport renders and writes the HTML document.
func (h *HTML) WriteReport() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Spec report</title>\n")
	b.WriteString("<style>body{font-family:sans-serif}.passed{color:#2e7d32}.failed{color:#c62828}.pending{color:#f9a825}dd{color:#555}</style>\n")
	b.WriteString("</head>\n<body>\n<h1>Spec report</h1>\n<dl>\n")
	for _, entry := range h.entries {
		fmt.Fprintf(&b, "<dt class=%q>%s %s</dt>\n",
			entry.status.String(), statusBadge(entry.status), h.renderMarkdown(entry.description))
		if entry.detail != "" || entry.location != "" {
			fmt.Fprintf(&b, "<dd>%s", html.EscapeString(entry.detail))
			if entry.location != "" {
				fmt.Fprintf(&b, " <code>%s</code>", html.EscapeString(entry.location))
			}
			b.WriteString("</dd>\n")
		}
	}
	b.WriteString("</dl>\n")
	if len(h.messages) > 0 {
		b.WriteString("<h2>Messages</h2>\n<ul>\n")
		for _, m := range h.messages {
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(m))
		}
		b.WriteString("</ul>\n")
	}
	b.WriteString("</body>\n</html>\n")

	return os.WriteFile(h.path, b.Bytes(), 0644)
}

// renderMarkdown converts a markdown doc string to inline HTML, falling back
// to escaped text when conversion fails.
func (h *HTML) renderMarkdown(source string) string {
	var out bytes.Buffer
	if err := h.markdown.Convert([]byte(source), &out); err != nil {
		return html.EscapeString(source)
	}
	return out.String()
}

func statusBadge(s spec.Status) string {
	switch s {
	case spec.StatusPassed:
		return "&#10003;"
	case spec.StatusFailed:
		return "&#10007;"
	case spec.StatusPending:
		return "&#8226;"
	default:
		return ""
	}
}
