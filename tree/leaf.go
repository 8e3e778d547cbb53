package tree

import "github.com/bruceravel/tiled/chunked"

// Leaf wraps one resolved array-valued leaf: a lazily evaluated chunked
// array plus a metadata map snapshotted from the leaf's attribute store at
// resolution time. Leaves are terminal; they never have children.
type Leaf struct {
	array    *chunked.Array
	metadata map[string]any
}

func newLeaf(array *chunked.Array, metadata map[string]any) *Leaf {
	return &Leaf{array: array, metadata: metadata}
}

// Array returns the leaf's chunked array value.
func (l *Leaf) Array() *chunked.Array {
	return l.array
}

// Metadata returns a copy of the metadata snapshot taken when the leaf was
// resolved. Byte-valued attributes were decoded to text at that point.
func (l *Leaf) Metadata() map[string]any {
	out := make(map[string]any, len(l.metadata))
	for k, v := range l.metadata {
		out[k] = v
	}

	return out
}

// IsGroup reports whether the entry is a nested node; always false.
func (l *Leaf) IsGroup() bool {
	return false
}

// IsLeaf reports whether the entry is an array-valued leaf; always true.
func (l *Leaf) IsLeaf() bool {
	return true
}

// AsGroup attempts to cast to *Node; always fails for a leaf.
func (l *Leaf) AsGroup() (*Node, bool) {
	return nil, false
}

// AsLeaf attempts to cast to *Leaf.
func (l *Leaf) AsLeaf() (*Leaf, bool) {
	return l, true
}
