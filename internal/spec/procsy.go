package spec

// Procsy wraps the "run the remaining example pipeline" operation as a value
// an around hook can hold. The hook decides whether, when, and how many
// times to invoke it: calling it zero times means the guarded pipeline (and
// the body) never executes; calling it twice re-executes the pipeline, which
// is the hook author's responsibility.
type Procsy struct {
	metadata *Metadata
	body     func()
	called   int
}

// NewProcsy wraps body with the example's metadata.
func NewProcsy(metadata *Metadata, body func()) *Procsy {
	return &Procsy{metadata: metadata, body: body}
}

// Call invokes the wrapped pipeline. Failures inside the pipeline are
// captured by the example itself, so Call never returns one.
func (p *Procsy) Call() {
	p.called++
	p.body()
}

// Called reports whether the wrapped pipeline was invoked at least once.
func (p *Procsy) Called() bool {
	return p.called > 0
}

// Metadata returns the example's metadata for hook inspection.
func (p *Procsy) Metadata() *Metadata {
	return p.metadata
}

// Wrap produces a new Procsy with the same metadata and a substituted body,
// used to layer multiple around hooks.
func (p *Procsy) Wrap(body func()) *Procsy {
	return NewProcsy(p.metadata, body)
}
