package tree

// Entry is the result of resolving one child: either a nested *Node or a
// terminal *Leaf. It is a closed union; both concrete types live in this
// package and callers dispatch with the Is/As pairs.
type Entry interface {
	// IsGroup reports whether the entry is a nested node.
	IsGroup() bool

	// IsLeaf reports whether the entry is an array-valued leaf.
	IsLeaf() bool

	// AsGroup attempts to cast to *Node, returning false for leaves.
	AsGroup() (*Node, bool)

	// AsLeaf attempts to cast to *Leaf, returning false for groups.
	AsLeaf() (*Leaf, bool)
}

var (
	_ Entry = (*Node)(nil)
	_ Entry = (*Leaf)(nil)
)
