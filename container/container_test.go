package container

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bruceravel/tiled/compress"
)

func buildTree(t *testing.T) *Group {
	t.Helper()

	root := NewGroup()
	require.NoError(t, root.SetAttr("facility", "beamline 6"))
	require.NoError(t, root.SetAttr("run", int64(42)))

	entry, err := root.CreateGroup("entry")
	require.NoError(t, err)
	require.NoError(t, entry.SetAttr("note", []byte("raw bytes")))

	data, err := NewFloat64Dataset([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.NoError(t, data.SetAttr("unit", "eV"))
	require.NoError(t, entry.AddDataset("data", data))

	counts, err := NewInt32Dataset([]int{4}, []int32{7, -8, 9, -10})
	require.NoError(t, err)
	require.NoError(t, entry.AddDataset("counts", counts))

	labels, err := NewStringDataset(8, []string{"alpha", "beta"})
	require.NoError(t, err)
	require.NoError(t, root.AddDataset("labels", labels))

	ragged, err := NewObjectDataset([][]byte{[]byte("one"), []byte("twotwo")})
	require.NoError(t, err)
	require.NoError(t, root.AddDataset("ragged", ragged))

	return root
}

func TestGroupConstruction(t *testing.T) {
	root := buildTree(t)

	require.Equal(t, 3, root.NumChildren())
	require.Equal(t, []string{"entry", "labels", "ragged"}, root.ChildNames())
	require.True(t, root.HasChild("entry"))
	require.False(t, root.HasChild("missing"))

	node, ok := root.Child("entry")
	require.True(t, ok)
	entry, ok := node.(*Group)
	require.True(t, ok)
	require.Equal(t, "entry", entry.Name())
	require.Equal(t, []string{"data", "counts"}, entry.ChildNames())
}

func TestDuplicateChildRejected(t *testing.T) {
	root := NewGroup()
	_, err := root.CreateGroup("entry")
	require.NoError(t, err)
	_, err = root.CreateGroup("entry")
	require.Error(t, err)

	ds, err := NewFloat64Dataset([]int{0}, nil)
	require.NoError(t, err)
	require.Error(t, root.AddDataset("entry", ds))
	require.Error(t, root.AddDataset("", ds))
}

func TestAttrValidation(t *testing.T) {
	root := NewGroup()
	require.Error(t, root.SetAttr("bad", struct{}{}))
	require.NoError(t, root.SetAttr("ok", 3.5))

	// Attributes returns a copy; mutating it must not leak back.
	attrs := root.Attributes()
	attrs["ok"] = 99.0
	require.Equal(t, 3.5, root.Attributes()["ok"])
}

func TestShapeMismatch(t *testing.T) {
	_, err := NewFloat64Dataset([]int{3}, []float64{1, 2})
	require.Error(t, err)

	_, err = NewStringDataset(3, []string{"toolong"})
	require.Error(t, err)
}

func TestInMemoryChunks(t *testing.T) {
	ds, err := NewFloat64Dataset([]int{5}, []float64{0.5, 1.5, 2.5, 3.5, 4.5})
	require.NoError(t, err)
	ds.chunkElems = 2

	require.Equal(t, 3, ds.NumChunks())
	require.Equal(t, 2, ds.ChunkLen(0))
	require.Equal(t, 1, ds.ChunkLen(2))

	raw, err := ds.ReadChunk(2)
	require.NoError(t, err)
	require.Len(t, raw, 8)
	require.Equal(t, 4.5, math.Float64frombits(ds.Engine().Uint64(raw)))

	_, err = ds.ReadChunk(3)
	require.Error(t, err)
}

func roundTrip(t *testing.T, opts ...WriterOption) *File {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tree.tlc")
	require.NoError(t, WriteFile(buildTree(t), path, opts...))

	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	return f
}

func verifyTree(t *testing.T, root *Group) {
	t.Helper()

	require.Equal(t, []string{"entry", "labels", "ragged"}, root.ChildNames())
	require.Equal(t, "beamline 6", root.Attributes()["facility"])
	require.Equal(t, int64(42), root.Attributes()["run"])

	node, ok := root.Child("entry")
	require.True(t, ok)
	entry := node.(*Group)
	require.Equal(t, []byte("raw bytes"), entry.Attributes()["note"])

	node, ok = entry.Child("data")
	require.True(t, ok)
	data := node.(*Dataset)
	require.Equal(t, Float64, data.ElemType())
	require.Equal(t, []int{2, 3}, data.Shape())
	require.Equal(t, 6, data.Len())
	require.Equal(t, "eV", data.Attributes()["unit"])

	want := []float64{1, 2, 3, 4, 5, 6}
	got := make([]float64, 0, 6)
	for i := range data.NumChunks() {
		raw, err := data.ReadChunk(i)
		require.NoError(t, err)
		engine := data.Engine()
		for off := 0; off+8 <= len(raw); off += 8 {
			got = append(got, math.Float64frombits(engine.Uint64(raw[off:off+8])))
		}
	}
	require.Equal(t, want, got)

	node, ok = root.Child("ragged")
	require.True(t, ok)
	ragged := node.(*Dataset)
	require.Equal(t, VarObject, ragged.ElemType())
	require.Equal(t, 0, ragged.StringWidth())
	p0, err := ragged.ObjectPayload(0)
	require.NoError(t, err)
	require.Equal(t, []byte("one"), p0)
	p1, err := ragged.ObjectPayload(1)
	require.NoError(t, err)
	require.Equal(t, []byte("twotwo"), p1)
}

func TestRoundTripDefault(t *testing.T) {
	f := roundTrip(t)
	verifyTree(t, f.Root())
}

func TestRoundTripCompressed(t *testing.T) {
	for _, typ := range []compress.Type{compress.Zstd, compress.S2, compress.LZ4} {
		t.Run(typ.String(), func(t *testing.T) {
			f := roundTrip(t, WithCompression(typ))
			verifyTree(t, f.Root())
		})
	}
}

func TestRoundTripBigEndian(t *testing.T) {
	f := roundTrip(t, WithBigEndian())
	verifyTree(t, f.Root())
}

func TestRoundTripSmallChunks(t *testing.T) {
	f := roundTrip(t, WithChunkSize(2))
	verifyTree(t, f.Root())

	node, _ := f.Root().Child("entry")
	data, _ := node.(*Group).Child("data")
	require.Equal(t, 3, data.(*Dataset).NumChunks())
}

func TestChecksumMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.tlc")
	require.NoError(t, WriteFile(buildTree(t), path))

	// Flip a byte in the data region (it sits at the end of the file).
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	f, err := Open(path)
	require.NoError(t, err, "layout is intact, open must succeed")
	defer f.Close()

	// Some dataset's chunk is now corrupt; at least one read must fail
	// with a checksum error.
	var failed bool
	for _, name := range f.Root().ChildNames() {
		node, _ := f.Root().Child(name)
		ds, ok := node.(*Dataset)
		if !ok {
			continue
		}
		if ds.ElemType() == VarObject {
			if _, err := ds.ObjectPayload(0); err != nil {
				failed = true
			}
			continue
		}
		for i := range ds.NumChunks() {
			if _, err := ds.ReadChunk(i); err != nil {
				failed = true
			}
		}
	}
	require.True(t, failed, "corrupted chunk must fail its read")
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tlc")
	require.NoError(t, os.WriteFile(path, []byte("not a container file"), 0o644))

	_, err := Open(path)
	require.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.tlc"))
	require.Error(t, err)
}

func TestZeroElementDataset(t *testing.T) {
	root := NewGroup()
	empty, err := NewFloat64Dataset([]int{0}, nil)
	require.NoError(t, err)
	require.NoError(t, root.AddDataset("empty", empty))

	path := filepath.Join(t.TempDir(), "empty.tlc")
	require.NoError(t, WriteFile(root, path))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	node, ok := f.Root().Child("empty")
	require.True(t, ok)
	ds := node.(*Dataset)
	require.Equal(t, 0, ds.Len())
	require.Equal(t, 0, ds.NumChunks())
}

func TestObjectStringDataset(t *testing.T) {
	ds, err := NewObjectStringDataset(10, []string{"fixed", "width"})
	require.NoError(t, err)
	require.Equal(t, VarObject, ds.ElemType())
	require.Equal(t, 10, ds.StringWidth())

	p, err := ds.ObjectPayload(1)
	require.NoError(t, err)
	require.Equal(t, []byte("width"), p)
}
