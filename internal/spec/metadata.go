package spec

import "fmt"

// Metadata is the identity record for an example or an example group. It is
// built once at declaration time and shared by reference: an example's
// metadata points at its group's metadata as parent. The identity fields are
// never mutated after construction; only the pending directives and the
// generated description may be updated during a run.
type Metadata struct {
	Description     string         // Doc string given at declaration (may be empty)
	FullDescription string         // Group descriptions joined with the example description
	File            string         // Source file the example was declared in
	Line            int            // Line the example was declared on
	Pending         bool           // Example is expected to fail
	PendingMessage  string         // Reason attached to the pending directive
	Skip            bool           // Example must not execute at all
	SkipMessage     string         // Reason attached to the skip directive
	Tags            map[string]any // Arbitrary declaration tags, consulted by hook filters

	parent *Metadata // Declaring group's metadata, nil at the root
}

// ChildMetadata derives an example's metadata from its group's metadata.
// The child starts with the group's pending/skip directives and tag set; the
// supplied tags override inherited ones.
func ChildMetadata(parent *Metadata, description string, tags map[string]any) *Metadata {
	child := &Metadata{
		Description: description,
		parent:      parent,
	}
	if parent != nil {
		child.Pending = parent.Pending
		child.PendingMessage = parent.PendingMessage
		child.Skip = parent.Skip
		child.SkipMessage = parent.SkipMessage
		child.FullDescription = joinDescriptions(parent.FullDescription, description)
	} else {
		child.FullDescription = description
	}
	if len(tags) > 0 || parent != nil {
		child.Tags = make(map[string]any)
		for p := parent; p != nil; p = p.parent {
			for k, v := range p.Tags {
				if _, ok := child.Tags[k]; !ok {
					child.Tags[k] = v
				}
			}
		}
		for k, v := range tags {
			child.Tags[k] = v
		}
	}
	return child
}

func joinDescriptions(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	default:
		return parent + " " + child
	}
}

// Parent returns the declaring group's metadata, or nil at the root.
func (m *Metadata) Parent() *Metadata {
	return m.parent
}

// Location returns the example's declaration site as "file:line".
func (m *Metadata) Location() string {
	if m.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", m.File, m.Line)
}

// Tag looks up a tag by name, walking up the metadata chain.
func (m *Metadata) Tag(name string) (any, bool) {
	for cur := m; cur != nil; cur = cur.parent {
		if v, ok := cur.Tags[name]; ok {
			return v, true
		}
	}
	return nil, false
}
