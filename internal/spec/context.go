package spec

// GroupContext is the run-scoped execution context handed to bodies and
// hooks: the local state a single example run may touch. One instance is
// exclusively owned by the in-flight run and its state is wiped when that
// run finishes, so no example can observe state left behind by another.
type GroupContext struct {
	values map[string]any
}

// NewGroupContext creates an empty execution context.
func NewGroupContext() *GroupContext {
	return &GroupContext{values: make(map[string]any)}
}

// Set stores a named value for the duration of the current run.
func (c *GroupContext) Set(name string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[name] = value
}

// Get returns a named value, or nil if it was never set.
func (c *GroupContext) Get(name string) any {
	return c.values[name]
}

// Lookup returns a named value and whether it was set.
func (c *GroupContext) Lookup(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Seed copies another context's values in. The runner uses it to expose
// group-level setup state to each example's fresh context without sharing
// the context object itself.
func (c *GroupContext) Seed(from *GroupContext) {
	if from == nil {
		return
	}
	for k, v := range from.values {
		c.Set(k, v)
	}
}

// reset wipes every value so nothing leaks into the next run.
func (c *GroupContext) reset() {
	for k := range c.values {
		delete(c.values, k)
	}
}
