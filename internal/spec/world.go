package spec

import "sync"

// world holds the process-wide "currently running example" marker. Exactly
// one example is in flight at a time; the marker is written at run entry and
// cleared at run exit on every path, including abnormal ones. Collaborators
// such as the warnings helper read it for context. If example execution is
// ever parallelized this must become execution-scoped state instead.
type world struct {
	mu      sync.Mutex
	current *Example

	// descriptionSource supplies the last generated matcher description,
	// consulted when an example was declared without a doc string. Set by a
	// matcher library, nil otherwise.
	descriptionSource func() (string, error)
}

var sharedWorld world

// CurrentExample returns the example currently being run, or nil when none
// is in flight.
func CurrentExample() *Example {
	sharedWorld.mu.Lock()
	defer sharedWorld.mu.Unlock()
	return sharedWorld.current
}

// setCurrentExample publishes ex as the in-flight example.
func setCurrentExample(ex *Example) {
	sharedWorld.mu.Lock()
	defer sharedWorld.mu.Unlock()
	sharedWorld.current = ex
}

// clearCurrentExample empties the in-flight marker.
func clearCurrentExample() {
	sharedWorld.mu.Lock()
	defer sharedWorld.mu.Unlock()
	sharedWorld.current = nil
}

// SetDescriptionSource registers the source of generated matcher
// descriptions. Passing nil removes it.
func SetDescriptionSource(source func() (string, error)) {
	sharedWorld.mu.Lock()
	defer sharedWorld.mu.Unlock()
	sharedWorld.descriptionSource = source
}

func descriptionSource() func() (string, error) {
	sharedWorld.mu.Lock()
	defer sharedWorld.mu.Unlock()
	return sharedWorld.descriptionSource
}
