// Package hooks stores before/after/around hooks and runs the ones whose
// filters match a given example. Hooks run synchronously, in a single
// ordered sequence per phase.
package hooks

import (
	"path/filepath"
	"reflect"
	"runtime/debug"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/brentsnook/rspec-core/internal/spec"
)

// BeforeFunc runs before the example body. An error aborts the sequence and
// the body never executes.
type BeforeFunc func(ex *spec.Example) error

// AfterFunc runs after the example body regardless of its outcome.
type AfterFunc func(ex *spec.Example) error

// AroundFunc receives the wrapped pipeline and decides whether, when, and
// how many times to invoke it.
type AroundFunc func(ex *spec.Example, procsy *spec.Procsy) error

// Filter restricts a hook to matching examples. The zero value matches
// every example.
type Filter struct {
	// Tags must all be present (walking the metadata chain) with equal
	// values for the hook to apply.
	Tags map[string]any

	// LocationGlob, when set, is a doublestar pattern the example's file
	// path must match.
	LocationGlob string
}

// Matches reports whether the filter applies to the example.
func (f Filter) Matches(ex *spec.Example) bool {
	for name, want := range f.Tags {
		got, ok := ex.Metadata().Tag(name)
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	if f.LocationGlob != "" {
		ok, err := doublestar.Match(f.LocationGlob, filepath.ToSlash(ex.FilePath()))
		if err != nil || !ok {
			return false
		}
	}
	return true
}

type beforeHook struct {
	fn     BeforeFunc
	filter Filter
}

type afterHook struct {
	fn     AfterFunc
	filter Filter
}

type aroundHook struct {
	fn     AroundFunc
	filter Filter
}

// Registry holds the registered hooks. It implements spec.Hooks.
type Registry struct {
	mu      sync.Mutex
	befores []beforeHook
	afters  []afterHook
	arounds []aroundHook
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AppendBefore registers a before(:each) hook.
func (r *Registry) AppendBefore(fn BeforeFunc, filter Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.befores = append(r.befores, beforeHook{fn: fn, filter: filter})
}

// AppendAfter registers an after(:each) hook.
func (r *Registry) AppendAfter(fn AfterFunc, filter Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afters = append(r.afters, afterHook{fn: fn, filter: filter})
}

// AppendAround registers an around(:each) hook.
func (r *Registry) AppendAround(fn AroundFunc, filter Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.arounds = append(r.arounds, aroundHook{fn: fn, filter: filter})
}

// RunBeforeEach runs matching before hooks in registration order, stopping
// at the first error.
func (r *Registry) RunBeforeEach(ex *spec.Example) error {
	r.mu.Lock()
	befores := append([]beforeHook(nil), r.befores...)
	r.mu.Unlock()

	for _, hook := range befores {
		if !hook.filter.Matches(ex) {
			continue
		}
		fn := hook.fn
		if err := safeInvoke(func() error { return fn(ex) }); err != nil {
			return err
		}
	}
	return nil
}

// RunAfterEach runs every matching after hook in reverse registration order,
// even when earlier ones fail, and returns the errors in encounter order.
func (r *Registry) RunAfterEach(ex *spec.Example) []error {
	r.mu.Lock()
	afters := append([]afterHook(nil), r.afters...)
	r.mu.Unlock()

	var errs []error
	for i := len(afters) - 1; i >= 0; i-- {
		hook := afters[i]
		if !hook.filter.Matches(ex) {
			continue
		}
		fn := hook.fn
		if err := safeInvoke(func() error { return fn(ex) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// AroundCount reports how many around hooks apply to the example.
func (r *Registry) AroundCount(ex *spec.Example) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, hook := range r.arounds {
		if hook.filter.Matches(ex) {
			count++
		}
	}
	return count
}

// RunAround layers the matching around hooks over the wrapped pipeline. The
// first-registered hook ends up outermost. Each hook receives a Procsy whose
// invocation runs the next layer; a hook that never calls it means the
// pipeline (and the body) never executes.
func (r *Registry) RunAround(ex *spec.Example, procsy *spec.Procsy) error {
	r.mu.Lock()
	arounds := append([]aroundHook(nil), r.arounds...)
	r.mu.Unlock()

	var firstErr error
	record := func(err error) {
		if firstErr == nil && err != nil {
			firstErr = err
		}
	}

	outer := procsy
	for i := len(arounds) - 1; i >= 0; i-- {
		hook := arounds[i]
		if !hook.filter.Matches(ex) {
			continue
		}
		fn := hook.fn
		wrapped := outer
		outer = procsy.Wrap(func() {
			record(safeInvoke(func() error { return fn(ex, wrapped) }))
		})
	}
	outer.Call()
	return firstErr
}

// safeInvoke converts a panicking hook into an error so one bad hook cannot
// take down the run.
func safeInvoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &spec.PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return fn()
}
