package tree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bruceravel/tiled/container"
)

func indexerFixture(t *testing.T) (*Node, *Indexer) {
	t.Helper()

	group := container.NewGroup()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		_, err := group.CreateGroup(name)
		require.NoError(t, err)
	}

	n, err := New(group)
	require.NoError(t, err)

	return n, NewIndexer(n)
}

func TestKeysSliceForward(t *testing.T) {
	_, ix := indexerFixture(t)

	require.Equal(t, []string{"a", "b", "c", "d", "e"}, ix.KeysSlice(0, 5, 1))
	require.Equal(t, []string{"b", "c"}, ix.KeysSlice(1, 3, 1))
	require.Empty(t, ix.KeysSlice(3, 3, 1))
}

func TestKeysSliceReverse(t *testing.T) {
	_, ix := indexerFixture(t)

	require.Equal(t, []string{"e", "d", "c", "b", "a"}, ix.KeysSlice(0, 5, -1))
	require.Equal(t, []string{"d", "c"}, ix.KeysSlice(1, 3, -1))
}

// Direction law: a reverse slice over the full range is the reverse of the
// forward slice.
func TestKeysSliceDirectionLaw(t *testing.T) {
	n, ix := indexerFixture(t)

	forward := ix.KeysSlice(0, n.Len(), 1)
	backward := ix.KeysSlice(0, n.Len(), -1)

	reversed := slices.Clone(forward)
	slices.Reverse(reversed)
	require.Equal(t, reversed, backward)
}

func TestKeysSliceClamping(t *testing.T) {
	_, ix := indexerFixture(t)

	require.Equal(t, []string{"a", "b", "c", "d", "e"}, ix.KeysSlice(0, 100, 1))
	require.Empty(t, ix.KeysSlice(7, 9, 1))
	require.Empty(t, ix.KeysSlice(4, 2, 1))
	require.Equal(t, []string{"a", "b"}, ix.KeysSlice(-3, 2, 1))
}

func TestValuesSlice(t *testing.T) {
	_, ix := indexerFixture(t)

	entries, err := ix.ValuesSlice(0, 2, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.True(t, e.IsGroup())
	}
}

func TestItemsSlice(t *testing.T) {
	_, ix := indexerFixture(t)

	items, err := ix.ItemsSlice(2, 4, -1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "c", items[0].Key)
	require.Equal(t, "b", items[1].Key)
	require.True(t, items[0].Entry.IsGroup())
}

func TestKeyByIndex(t *testing.T) {
	_, ix := indexerFixture(t)

	key, err := ix.KeyByIndex(0, 1)
	require.NoError(t, err)
	require.Equal(t, "a", key)

	key, err = ix.KeyByIndex(0, -1)
	require.NoError(t, err)
	require.Equal(t, "e", key)

	key, err = ix.KeyByIndex(4, -1)
	require.NoError(t, err)
	require.Equal(t, "a", key)
}

func TestKeyByIndexOutOfRange(t *testing.T) {
	_, ix := indexerFixture(t)

	_, err := ix.KeyByIndex(5, 1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = ix.KeyByIndex(-1, 1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

// Items slices resolve leaves through the same degrade-gracefully policy as
// direct lookup.
func TestItemsSliceWithLeaves(t *testing.T) {
	captureWarnings(t)
	root := newRoot(t)
	ix := NewIndexer(root)

	items, err := ix.ItemsSlice(0, root.Len(), 1)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.True(t, items[0].Entry.IsGroup())

	leaf, ok := items[1].Entry.AsLeaf()
	require.True(t, ok)
	require.Equal(t, 0, leaf.Array().Len())
}
