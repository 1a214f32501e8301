// Package mocks provides a minimal test-double subsystem wired into the
// example lifecycle: doubles are created during a run, their expectations
// are verified after the body, and all per-example state is torn down before
// the next example starts.
package mocks

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/brentsnook/rspec-core/internal/spec"
)

// VerificationError reports expectations that were never satisfied.
type VerificationError struct {
	Unmet []string // "double.message" entries in deterministic order
}

// Error implements the error interface for VerificationError.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("unsatisfied message expectations: %s", strings.Join(e.Unmet, ", "))
}

// Controller owns the per-example mock sessions. It implements
// spec.MockLifecycle.
type Controller struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

type session struct {
	mu      sync.Mutex
	doubles []*Double
}

// NewController creates an empty mock controller.
func NewController() *Controller {
	return &Controller{sessions: make(map[uuid.UUID]*session)}
}

// SetupMocks opens a session for the example. Called by the run
// orchestration before any before hooks.
func (c *Controller) SetupMocks(ex *spec.Example) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[ex.ID()] = &session{}
	return nil
}

// VerifyMocks checks every expectation declared during the example's run.
func (c *Controller) VerifyMocks(ex *spec.Example) error {
	c.mu.Lock()
	s := c.sessions[ex.ID()]
	c.mu.Unlock()
	if s == nil {
		return nil
	}

	var unmet []string
	s.mu.Lock()
	for _, d := range s.doubles {
		unmet = append(unmet, d.unmet()...)
	}
	s.mu.Unlock()

	if len(unmet) == 0 {
		return nil
	}
	sort.Strings(unmet)
	return &VerificationError{Unmet: unmet}
}

// TeardownMocks discards the example's session so no double survives into
// the next run.
func (c *Controller) TeardownMocks(ex *spec.Example) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, ex.ID())
}

// Double creates a named test double scoped to the example's session.
// Returns an error when called outside a run (no open session).
func (c *Controller) Double(ex *spec.Example, name string) (*Double, error) {
	c.mu.Lock()
	s := c.sessions[ex.ID()]
	c.mu.Unlock()
	if s == nil {
		return nil, fmt.Errorf("double %q requested outside a mock session", name)
	}
	d := &Double{name: name, stubs: make(map[string]any), expected: make(map[string]*expectation)}
	s.mu.Lock()
	s.doubles = append(s.doubles, d)
	s.mu.Unlock()
	return d, nil
}

type expectation struct {
	calls int
}

// Double is a named message receiver with optional canned responses and
// message expectations.
type Double struct {
	mu       sync.Mutex
	name     string
	stubs    map[string]any
	expected map[string]*expectation
}

// Name returns the double's declared name.
func (d *Double) Name() string { return d.name }

// Stub registers a canned response for a message.
func (d *Double) Stub(message string, response any) *Double {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stubs[message] = response
	return d
}

// Expect requires that the message is received at least once before the
// example finishes.
func (d *Double) Expect(message string) *Double {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.expected[message]; !ok {
		d.expected[message] = &expectation{}
	}
	return d
}

// Receive records a message send and returns the stubbed response, if any.
func (d *Double) Receive(message string) any {
	d.mu.Lock()
	defer d.mu.Unlock()
	if exp, ok := d.expected[message]; ok {
		exp.calls++
	}
	return d.stubs[message]
}

// unmet lists expectations that never received their message.
func (d *Double) unmet() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for message, exp := range d.expected {
		if exp.calls == 0 {
			out = append(out, d.name+"."+message)
		}
	}
	return out
}
