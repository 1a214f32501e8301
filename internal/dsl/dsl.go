// Package dsl declares example groups: descriptions, bodies, hooks, and
// tags. Declarations feed a registry the runner consumes; nothing here
// executes anything.
package dsl

import (
	"runtime"
	"sync"

	"github.com/brentsnook/rspec-core/internal/hooks"
	"github.com/brentsnook/rspec-core/internal/spec"
)

// ExampleDecl is one declared example, held until the runner materializes it
// with the run-time hook registry, mock subsystem, and settings.
type ExampleDecl struct {
	Metadata *spec.Metadata
	Body     spec.Body
}

// Group is a described set of examples sharing metadata and hooks.
type Group struct {
	metadata  *spec.Metadata
	hooks     *hooks.Registry
	examples  []ExampleDecl
	beforeAll func(ctx *spec.GroupContext) error
	afterAll  func(ctx *spec.GroupContext) error
}

// Registry collects declared groups.
type Registry struct {
	mu     sync.Mutex
	groups []*Group
}

// NewRegistry creates an empty group registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry receives groups declared through the package-level
// Describe.
var DefaultRegistry = NewRegistry()

// Groups returns the declared groups in declaration order.
func (r *Registry) Groups() []*Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Group(nil), r.groups...)
}

// Reset drops all declared groups, primarily for tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = nil
}

// Describe declares a group in the default registry.
func Describe(description string, define func(g *Group)) *Group {
	return DefaultRegistry.Describe(description, define)
}

// Describe declares a group of examples. define is invoked immediately with
// the new group.
func (r *Registry) Describe(description string, define func(g *Group)) *Group {
	file, line := callSite(2)
	g := &Group{
		metadata: &spec.Metadata{
			Description:     description,
			FullDescription: description,
			File:            file,
			Line:            line,
		},
		hooks: hooks.NewRegistry(),
	}
	if define != nil {
		define(g)
	}
	r.mu.Lock()
	r.groups = append(r.groups, g)
	r.mu.Unlock()
	return g
}

// Metadata returns the group's metadata record.
func (g *Group) Metadata() *spec.Metadata { return g.metadata }

// Hooks returns the group's hook registry.
func (g *Group) Hooks() *hooks.Registry { return g.hooks }

// Examples returns the group's declared examples in declaration order.
func (g *Group) Examples() []ExampleDecl {
	return append([]ExampleDecl(nil), g.examples...)
}

// It declares an example.
func (g *Group) It(description string, body spec.Body) {
	g.declare(description, nil, body, 2)
}

// ItWith declares an example carrying tags, consulted by hook filters.
func (g *Group) ItWith(description string, tags map[string]any, body spec.Body) {
	g.declare(description, tags, body, 2)
}

// XIt declares a skipped example: neither hooks nor the body will run.
func (g *Group) XIt(description, reason string, body spec.Body) {
	md := g.declare(description, nil, body, 2)
	md.Skip = true
	md.SkipMessage = reason
}

// PIt declares a pending example: it runs and is expected to fail.
func (g *Group) PIt(description, reason string, body spec.Body) {
	md := g.declare(description, nil, body, 2)
	md.Pending = true
	md.PendingMessage = reason
}

func (g *Group) declare(description string, tags map[string]any, body spec.Body, skip int) *spec.Metadata {
	file, line := callSite(skip + 1)
	md := spec.ChildMetadata(g.metadata, description, tags)
	md.File = file
	md.Line = line
	g.examples = append(g.examples, ExampleDecl{Metadata: md, Body: body})
	return md
}

// BeforeEach registers a before hook scoped to this group's examples.
func (g *Group) BeforeEach(fn hooks.BeforeFunc) {
	g.hooks.AppendBefore(fn, hooks.Filter{})
}

// AfterEach registers an after hook scoped to this group's examples.
func (g *Group) AfterEach(fn hooks.AfterFunc) {
	g.hooks.AppendAfter(fn, hooks.Filter{})
}

// AroundEach registers an around hook scoped to this group's examples.
func (g *Group) AroundEach(fn hooks.AroundFunc) {
	g.hooks.AppendAround(fn, hooks.Filter{})
}

// BeforeAll registers group-level setup run once before the group's
// examples. Its failure means no body in the group executes: every example
// is reported failed with that error.
func (g *Group) BeforeAll(fn func(ctx *spec.GroupContext) error) {
	g.beforeAll = fn
}

// AfterAll registers group-level teardown run once after the group's
// examples.
func (g *Group) AfterAll(fn func(ctx *spec.GroupContext) error) {
	g.afterAll = fn
}

// RunBeforeAll invokes the group-level setup, if any.
func (g *Group) RunBeforeAll(ctx *spec.GroupContext) error {
	if g.beforeAll == nil {
		return nil
	}
	return g.beforeAll(ctx)
}

// RunAfterAll invokes the group-level teardown, if any.
func (g *Group) RunAfterAll(ctx *spec.GroupContext) error {
	if g.afterAll == nil {
		return nil
	}
	return g.afterAll(ctx)
}

func callSite(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", 0
	}
	return file, line
}
