// Package tree presents an open container as a read-only, lazily evaluated
// tree. Nodes wrap container groups and resolve children on demand: child
// groups come back as nested Nodes, array datasets as Leaf values backed by
// lazy chunked arrays. Child enumeration re-queries the backing container on
// every pass, so nothing structural is cached.
//
// Datasets stored with the non-interoperable variable-length object encoding
// are degraded rather than failed: resolution logs a warning and serves a
// best-effort value (the repackaged payload for single-element datasets, an
// empty placeholder otherwise), so one malformed leaf never makes the rest
// of the tree unreachable.
package tree

import (
	"fmt"
	"iter"

	"github.com/bruceravel/tiled/chunked"
	"github.com/bruceravel/tiled/container"
	"github.com/bruceravel/tiled/internal/options"
)

// AccessPolicy gates which identities may read which parts of the tree. The
// adapter only consults the compatibility predicate at construction;
// enforcement belongs to the serving layer.
type AccessPolicy interface {
	// CompatibleWith reports whether this policy can govern the given node.
	CompatibleWith(n *Node) bool
}

// Node wraps one container group. It does not own the group: the container
// stays open and shared across every Node derived from it, and whoever
// opened the container closes it.
//
// A Node is immutable. AuthenticatedAs returns a new bound instance rather
// than mutating the receiver.
type Node struct {
	group    *container.Group
	policy   AccessPolicy
	identity any
}

// NodeOption configures New.
type NodeOption = options.Option[*Node]

// WithAccessPolicy attaches an access policy. New fails with
// ErrIncompatiblePolicy when the policy rejects the node.
func WithAccessPolicy(p AccessPolicy) NodeOption {
	return options.NoError(func(n *Node) {
		n.policy = p
	})
}

// WithIdentity binds an authenticated identity at construction.
func WithIdentity(identity any) NodeOption {
	return options.NoError(func(n *Node) {
		n.identity = identity
	})
}

// New binds an already-resolved container group (root or sub-group).
func New(group *container.Group, opts ...NodeOption) (*Node, error) {
	n := &Node{group: group}
	if err := options.Apply(n, opts...); err != nil {
		return nil, err
	}
	if n.policy != nil && !n.policy.CompatibleWith(n) {
		return nil, fmt.Errorf("%w: %T", ErrIncompatiblePolicy, n.policy)
	}

	return n, nil
}

// FromFile opens a container file read-only and binds its root. The
// returned File must be closed by the caller once the tree is no longer in
// use; closing it invalidates lazy reads on every Leaf resolved from it.
func FromFile(path string) (*Node, *container.File, error) {
	f, err := container.Open(path)
	if err != nil {
		return nil, nil, err
	}

	n, err := New(f.Root())
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	return n, f, nil
}

// AccessPolicy returns the policy bound at construction, or nil.
func (n *Node) AccessPolicy() AccessPolicy {
	return n.policy
}

// Identity returns the authenticated identity, or nil when unauthenticated.
func (n *Node) Identity() any {
	return n.identity
}

// AuthenticatedAs returns a new Node over the same group and policy with
// the identity attached. The receiver is left unchanged.
//
// Fails with ErrAlreadyAuthenticated when the receiver already carries an
// identity, and with ErrNotImplemented when an access policy is set:
// policy-aware authentication is the authorization layer's job, not wired
// into this adapter.
func (n *Node) AuthenticatedAs(identity any) (*Node, error) {
	if n.identity != nil {
		return nil, fmt.Errorf("%w: as %v", ErrAlreadyAuthenticated, n.identity)
	}
	if n.policy != nil {
		return nil, fmt.Errorf("%w: authentication under an access policy", ErrNotImplemented)
	}

	return &Node{group: n.group, policy: n.policy, identity: identity}, nil
}

// Metadata returns the node's attribute map, read fresh from the backing
// group on every call. Byte-valued attributes are decoded to text. The
// returned map is a copy.
func (n *Node) Metadata() map[string]any {
	return decodeAttrs(n.group.Attributes())
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	return n.group.NumChildren()
}

// Contains reports whether a direct child with the given name exists.
func (n *Node) Contains(key string) bool {
	return n.group.HasChild(key)
}

// Keys returns the names of direct children in the container's native
// order. The sequence is restartable and re-queries the backing group each
// time it is iterated.
func (n *Node) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range n.group.ChildNames() {
			if !yield(name) {
				return
			}
		}
	}
}

// Values returns the resolved children in native order. Like Keys, each
// iteration starts fresh against the backing group.
func (n *Node) Values() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, name := range n.group.ChildNames() {
			entry, err := n.Get(name)
			if err != nil {
				continue
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// Items returns (name, resolved child) pairs in native order.
func (n *Node) Items() iter.Seq2[string, Entry] {
	return func(yield func(string, Entry) bool) {
		for _, name := range n.group.ChildNames() {
			entry, err := n.Get(name)
			if err != nil {
				continue
			}
			if !yield(name, entry) {
				return
			}
		}
	}
}

// Get resolves one named child. Sub-groups come back as new unauthenticated,
// policy-less Nodes; datasets as Leaf values. Fails with ErrKeyNotFound when
// no child has the given name.
func (n *Node) Get(key string) (Entry, error) {
	child, ok := n.group.Child(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	switch c := child.(type) {
	case *container.Group:
		// Resolution never inherits policy or identity; callers re-apply
		// them explicitly if needed.
		return &Node{group: c}, nil
	case *container.Dataset:
		return n.resolveLeaf(key, c), nil
	default:
		return nil, fmt.Errorf("%w: %q has unknown node kind %T", ErrKeyNotFound, key, child)
	}
}

// resolveLeaf wraps a dataset as a Leaf, applying the degrade-gracefully
// policy for variable-length object encodings.
func (n *Node) resolveLeaf(key string, ds *container.Dataset) *Leaf {
	if ds.ElemType() != container.VarObject {
		return newLeaf(chunked.FromDataset(ds), decodeAttrs(ds.Attributes()))
	}

	logger.Warn().
		Str("dataset", key).
		Int("elements", ds.Len()).
		Msg("dataset uses the variable-length object encoding, which is not " +
			"interoperable; serving a placeholder unless it holds exactly one element")

	// A declared fixed string width means the elements are really
	// fixed-length strings; only the storage is variable-length.
	if ds.StringWidth() > 0 {
		return newLeaf(chunked.FromDataset(ds), decodeAttrs(ds.Attributes()))
	}

	if ds.Len() == 1 {
		if payload, err := ds.ObjectPayload(0); err == nil {
			return newLeaf(chunked.FromStrings([]string{string(payload)}), map[string]any{})
		}
	}

	return newLeaf(chunked.Empty(), map[string]any{})
}

// Search is explicitly unsupported: filtering or subsetting the tree is out
// of scope for this adapter.
func (n *Node) Search(query string) (*Node, error) {
	return nil, fmt.Errorf("%w: search", ErrNotSupported)
}

// Read returns the node itself when no fields are given. Partial field
// selection is unsupported.
func (n *Node) Read(fields ...string) (*Node, error) {
	if len(fields) > 0 {
		return nil, fmt.Errorf("%w: partial field read %v", ErrNotSupported, fields)
	}

	return n, nil
}

// IsGroup reports whether the entry is a nested node; always true.
func (n *Node) IsGroup() bool {
	return true
}

// IsLeaf reports whether the entry is an array-valued leaf; always false.
func (n *Node) IsLeaf() bool {
	return false
}

// AsGroup attempts to cast to *Node.
func (n *Node) AsGroup() (*Node, bool) {
	return n, true
}

// AsLeaf attempts to cast to *Leaf; always fails for a node.
func (n *Node) AsLeaf() (*Leaf, bool) {
	return nil, false
}

// decodeAttrs copies an attribute map, decoding raw byte values to text.
func decodeAttrs(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if b, ok := v.([]byte); ok {
			out[k] = string(b)
			continue
		}
		out[k] = v
	}

	return out
}
