// Package container implements a hierarchical, self-describing binary data
// container: groups hold named sub-groups or multi-dimensional array
// datasets, and every node carries a key/value attribute map.
//
// A container is built in memory with NewGroup / CreateGroup / AddDataset,
// persisted with WriteFile, and reopened read-only with Open. Reopened
// dataset payloads stay on disk and are read chunk by chunk on demand; the
// group layout and attributes are decoded eagerly at open time since they are
// small.
//
// Chunk payloads are compressed with a codec from the compress package and
// protected by xxHash64 checksums, both recorded in the file.
package container

import (
	"fmt"
	"slices"
)

// Node is a node of the container hierarchy: either a *Group or a *Dataset.
// Callers dispatch with a type switch.
type Node interface {
	// Name returns the node's name within its parent ("" for the root).
	Name() string
	// Attributes returns a copy of the node's attribute map. Values are
	// int64, float64, string or []byte.
	Attributes() map[string]any

	isNode()
}

// Group is an interior node holding named children in insertion order.
type Group struct {
	name     string
	attrs    map[string]any
	names    []string
	children map[string]Node
}

var _ Node = (*Group)(nil)

// NewGroup creates an empty root group.
func NewGroup() *Group {
	return &Group{
		attrs:    make(map[string]any),
		children: make(map[string]Node),
	}
}

func (g *Group) isNode() {}

// Name returns the group's name within its parent, "" for a root.
func (g *Group) Name() string {
	return g.name
}

// Attributes returns a copy of the group's attribute map.
func (g *Group) Attributes() map[string]any {
	attrs := make(map[string]any, len(g.attrs))
	for k, v := range g.attrs {
		attrs[k] = v
	}

	return attrs
}

// SetAttr sets one attribute. The value must be int64, float64, string or
// []byte.
func (g *Group) SetAttr(key string, value any) error {
	if err := validAttrValue(value); err != nil {
		return fmt.Errorf("attribute %q: %w", key, err)
	}
	g.attrs[key] = value

	return nil
}

// CreateGroup adds and returns an empty child group.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if err := g.checkChildName(name); err != nil {
		return nil, err
	}

	child := NewGroup()
	child.name = name
	g.names = append(g.names, name)
	g.children[name] = child

	return child, nil
}

// AddDataset attaches a dataset under the given name.
func (g *Group) AddDataset(name string, d *Dataset) error {
	if err := g.checkChildName(name); err != nil {
		return err
	}

	d.name = name
	g.names = append(g.names, name)
	g.children[name] = d

	return nil
}

func (g *Group) checkChildName(name string) error {
	if name == "" {
		return fmt.Errorf("child name must not be empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("child name %q exceeds %d bytes", name, maxNameLength)
	}
	if _, ok := g.children[name]; ok {
		return fmt.Errorf("child %q already exists", name)
	}

	return nil
}

// ChildNames returns the names of direct children in insertion order. The
// slice is a copy.
func (g *Group) ChildNames() []string {
	return slices.Clone(g.names)
}

// NumChildren returns the number of direct children.
func (g *Group) NumChildren() int {
	return len(g.names)
}

// HasChild reports whether a direct child with the given name exists.
func (g *Group) HasChild(name string) bool {
	_, ok := g.children[name]
	return ok
}

// Child looks up a direct child by name.
func (g *Group) Child(name string) (Node, bool) {
	node, ok := g.children[name]
	return node, ok
}
