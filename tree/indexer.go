package tree

import (
	"fmt"
	"slices"
)

// Indexer answers direction-aware bounded range queries over a Node's
// children: slices of keys, values or (key, value) pairs, and single-key
// lookup by position.
//
// Every query materializes the complete child list before slicing. That is
// bounded by the group's child count, which is assumed small relative to
// leaf data; this is not a streaming pagination mechanism.
type Indexer struct {
	node *Node
}

// NewIndexer creates an indexer over a node.
func NewIndexer(n *Node) *Indexer {
	return &Indexer{node: n}
}

// Item is one (key, resolved child) pair from an items slice.
type Item struct {
	Key   string
	Entry Entry
}

// keys enumerates the full child name list, reversed when direction is
// negative.
func (ix *Indexer) keys(direction int) []string {
	keys := ix.node.group.ChildNames()
	if direction < 0 {
		slices.Reverse(keys)
	}

	return keys
}

// clamp applies Python-style slice clamping of [start, stop) to n elements.
func clamp(start, stop, n int) (int, int) {
	start = max(0, min(start, n))
	stop = max(start, min(stop, n))

	return start, stop
}

// KeysSlice returns the child names in positions [start, stop), walking
// backwards from the end when direction is negative. Out-of-range bounds
// are clamped.
func (ix *Indexer) KeysSlice(start, stop, direction int) []string {
	keys := ix.keys(direction)
	start, stop = clamp(start, stop, len(keys))

	return keys[start:stop]
}

// ValuesSlice resolves the children in positions [start, stop) of the
// direction-ordered child list.
func (ix *Indexer) ValuesSlice(start, stop, direction int) ([]Entry, error) {
	keys := ix.KeysSlice(start, stop, direction)
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entry, err := ix.node.Get(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ItemsSlice returns (key, resolved child) pairs for positions
// [start, stop) of the direction-ordered child list.
func (ix *Indexer) ItemsSlice(start, stop, direction int) ([]Item, error) {
	keys := ix.KeysSlice(start, stop, direction)
	items := make([]Item, 0, len(keys))
	for _, key := range keys {
		entry, err := ix.node.Get(key)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Key: key, Entry: entry})
	}

	return items, nil
}

// KeyByIndex returns the child name at the given position of the
// direction-ordered child list. Fails with ErrIndexOutOfRange when the
// position is outside the list.
func (ix *Indexer) KeyByIndex(index, direction int) (string, error) {
	keys := ix.keys(direction)
	if index < 0 || index >= len(keys) {
		return "", fmt.Errorf("%w: index %d, %d children", ErrIndexOutOfRange, index, len(keys))
	}

	return keys[index], nil
}
