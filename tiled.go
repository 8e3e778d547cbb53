// Package tiled presents hierarchical binary data containers as read-only,
// lazily evaluated trees.
//
// A container file holds groups (named children, key/value attributes) and
// multi-dimensional array datasets. The tree package wraps an open container
// so that groups resolve to nested nodes and datasets to leaves backed by
// lazy chunked arrays; nothing is read from disk until a leaf's elements are
// consumed.
//
// # Basic Usage
//
// Opening a file and walking the tree:
//
//	root, file, err := tiled.Open("run42.tlc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	entry, _ := root.Get("entry")
//	node, _ := entry.AsGroup()
//	child, _ := node.Get("data")
//	leaf, _ := child.AsLeaf()
//	fmt.Println(leaf.Metadata()["unit"])
//	values, _ := leaf.Array().Float64s()
//
// Paginated traversal of a node's children:
//
//	ix := tiled.NewIndexer(root)
//	page := ix.KeysSlice(0, 10, 1)     // first ten names
//	last := ix.KeysSlice(0, 10, -1)    // last ten, newest first
//
// # Package Structure
//
// This package provides thin wrappers over the sub-packages for the common
// cases. Use container to build and persist containers, chunked for the lazy
// array views, ndarray for metadata-carrying numeric arrays, and tree for
// the full adapter API.
package tiled

import (
	"github.com/bruceravel/tiled/container"
	"github.com/bruceravel/tiled/tree"
)

// Open opens a container file read-only and returns its root node.
//
// The returned File owns the underlying handle and must be closed by the
// caller once the tree is no longer in use; the nodes and leaves resolved
// from it share the handle and do not close it themselves.
func Open(path string) (*tree.Node, *container.File, error) {
	return tree.FromFile(path)
}

// FromGroup binds a tree node to an already-resolved container group, root
// or sub-group.
func FromGroup(g *container.Group, opts ...tree.NodeOption) (*tree.Node, error) {
	return tree.New(g, opts...)
}

// NewIndexer creates a direction-aware range view over a node's children.
func NewIndexer(n *tree.Node) *tree.Indexer {
	return tree.NewIndexer(n)
}
