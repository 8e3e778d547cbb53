// Package chunked provides lazily evaluated array views over container
// datasets.
//
// An Array created with FromDataset defers all element reads: nothing is
// fetched from the backing dataset until a consuming call (Float64s, At,
// Materialize, ...) needs it, and then only the chunks covering the request
// are read, verified and decoded. Arrays can also be built eagerly from
// materialized values, which the tree adapter uses when it has to repackage
// anomalous leaf payloads.
package chunked

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/bruceravel/tiled/container"
)

// Array is a read-only numeric or textual array, either backed by a dataset
// (lazy) or by materialized values (eager).
type Array struct {
	ds *container.Dataset

	shape    []int
	elemType container.ElementType
	width    int

	floats  []float64
	strs    []string
	numeric bool
}

// FromDataset creates a lazy view over a dataset's full extent. No element
// data is read until the view is consumed.
func FromDataset(ds *container.Dataset) *Array {
	return &Array{
		ds:       ds,
		shape:    ds.Shape(),
		elemType: ds.ElemType(),
		width:    ds.StringWidth(),
		numeric:  ds.ElemType().Numeric(),
	}
}

// FromFloat64s creates an eager array from materialized values. The product
// of shape must equal len(values).
func FromFloat64s(shape []int, values []float64) (*Array, error) {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	if size != len(values) {
		return nil, fmt.Errorf("chunked: shape %v implies %d elements, got %d", shape, size, len(values))
	}

	return &Array{
		shape:    slices.Clone(shape),
		elemType: container.Float64,
		floats:   slices.Clone(values),
		numeric:  true,
	}, nil
}

// FromStrings creates an eager one-dimensional string array.
func FromStrings(values []string) *Array {
	return &Array{
		shape:    []int{len(values)},
		elemType: container.FixedString,
		strs:     slices.Clone(values),
	}
}

// Empty returns an eager zero-element array, the placeholder value for
// leaves that cannot be represented.
func Empty() *Array {
	return &Array{
		shape:    []int{0},
		elemType: container.Float64,
		floats:   []float64{},
		numeric:  true,
	}
}

// Lazy reports whether element reads are still deferred to the backing
// dataset.
func (a *Array) Lazy() bool {
	return a.ds != nil
}

// Shape returns a copy of the array's dimensions.
func (a *Array) Shape() []int {
	return slices.Clone(a.shape)
}

// Len returns the total element count.
func (a *Array) Len() int {
	size := 1
	for _, dim := range a.shape {
		size *= dim
	}

	return size
}

// ElemType returns the element encoding of the underlying data.
func (a *Array) ElemType() container.ElementType {
	return a.elemType
}

// Numeric reports whether the elements are numbers.
func (a *Array) Numeric() bool {
	return a.numeric
}

// NumChunks returns how many chunks back this array; eager arrays report 1.
func (a *Array) NumChunks() int {
	if a.ds != nil {
		return a.ds.NumChunks()
	}

	return 1
}

// Float64s materializes every element as float64. Integer and float
// encodings are widened; string encodings are rejected.
func (a *Array) Float64s() ([]float64, error) {
	if !a.numeric {
		return nil, fmt.Errorf("chunked: %v elements are not numeric", a.elemType)
	}
	if a.ds == nil {
		return slices.Clone(a.floats), nil
	}

	out := make([]float64, 0, a.Len())
	for i := range a.ds.NumChunks() {
		vals, err := a.chunkFloat64s(i)
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}

	return out, nil
}

// Strings materializes every element as a string. Only string encodings are
// accepted; fixed-width values have their NUL padding stripped.
func (a *Array) Strings() ([]string, error) {
	if a.numeric {
		return nil, fmt.Errorf("chunked: %v elements are not strings", a.elemType)
	}
	if a.ds == nil {
		return slices.Clone(a.strs), nil
	}

	if a.elemType == container.VarObject {
		out := make([]string, a.Len())
		for i := range out {
			p, err := a.ds.ObjectPayload(i)
			if err != nil {
				return nil, err
			}
			out[i] = string(p)
		}

		return out, nil
	}

	out := make([]string, 0, a.Len())
	for i := range a.ds.NumChunks() {
		raw, err := a.ds.ReadChunk(i)
		if err != nil {
			return nil, err
		}
		for off := 0; off+a.width <= len(raw); off += a.width {
			out = append(out, strings.TrimRight(string(raw[off:off+a.width]), "\x00"))
		}
	}

	return out, nil
}

// At returns element i (flat index) as float64, reading only the chunk that
// contains it.
func (a *Array) At(i int) (float64, error) {
	if !a.numeric {
		return 0, fmt.Errorf("chunked: %v elements are not numeric", a.elemType)
	}
	if i < 0 || i >= a.Len() {
		return 0, fmt.Errorf("chunked: index %d out of range [0, %d)", i, a.Len())
	}
	if a.ds == nil {
		return a.floats[i], nil
	}

	// Walk chunk extents to find the owner; chunk sizes are uniform except
	// for the tail, so this is a short loop.
	base := 0
	for c := range a.ds.NumChunks() {
		n := a.ds.ChunkLen(c)
		if i < base+n {
			vals, err := a.chunkFloat64s(c)
			if err != nil {
				return 0, err
			}

			return vals[i-base], nil
		}
		base += n
	}

	return 0, fmt.Errorf("chunked: index %d not covered by any chunk", i)
}

// Materialize returns an eager copy of the array; lazy views read all their
// chunks once. String arrays materialize to string storage, numeric ones to
// float64.
func (a *Array) Materialize() (*Array, error) {
	if a.ds == nil {
		return a, nil
	}

	if a.numeric {
		vals, err := a.Float64s()
		if err != nil {
			return nil, err
		}

		return &Array{
			shape:    slices.Clone(a.shape),
			elemType: a.elemType,
			floats:   vals,
			numeric:  true,
		}, nil
	}

	strs, err := a.Strings()
	if err != nil {
		return nil, err
	}

	return &Array{
		shape:    slices.Clone(a.shape),
		elemType: a.elemType,
		strs:     strs,
	}, nil
}

// chunkFloat64s reads and decodes one backing chunk.
func (a *Array) chunkFloat64s(i int) ([]float64, error) {
	raw, err := a.ds.ReadChunk(i)
	if err != nil {
		return nil, err
	}

	engine := a.ds.Engine()
	out := make([]float64, 0, a.ds.ChunkLen(i))
	switch a.elemType {
	case container.Float64:
		for off := 0; off+8 <= len(raw); off += 8 {
			out = append(out, math.Float64frombits(engine.Uint64(raw[off:off+8])))
		}
	case container.Float32:
		for off := 0; off+4 <= len(raw); off += 4 {
			out = append(out, float64(math.Float32frombits(engine.Uint32(raw[off:off+4]))))
		}
	case container.Int64:
		for off := 0; off+8 <= len(raw); off += 8 {
			out = append(out, float64(int64(engine.Uint64(raw[off:off+8]))))
		}
	case container.Int32:
		for off := 0; off+4 <= len(raw); off += 4 {
			out = append(out, float64(int32(engine.Uint32(raw[off:off+4]))))
		}
	default:
		return nil, fmt.Errorf("chunked: cannot decode %v as float64", a.elemType)
	}

	return out, nil
}
