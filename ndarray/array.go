// Package ndarray provides a numeric array value type that carries a
// key/value metadata map through derived-array operations.
//
// An Array couples an n-dimensional float64 buffer with a mutable metadata
// map. Every operation in ops.go that derives a new array from an existing
// one (elementwise apply, reduction, accumulation, windowed reduction, outer
// product, indexed update) unwraps the operands to bare buffers, runs the
// numeric kernel, and rewraps the result with the receiver's metadata map —
// the same map value, not a copy, so metadata written before or after the
// operation is visible on both arrays.
package ndarray

import (
	"fmt"
	"slices"
)

// Array is an n-dimensional float64 buffer plus a metadata map.
type Array struct {
	data  []float64
	shape []int
	attrs map[string]any
}

// New creates an array from a plain buffer. The metadata map starts empty.
// The product of shape must equal len(values); an empty shape denotes a
// scalar holding exactly one value.
func New(shape []int, values []float64) (*Array, error) {
	size := 1
	for _, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("ndarray: negative dimension %d in shape %v", dim, shape)
		}
		size *= dim
	}
	if size != len(values) {
		return nil, fmt.Errorf("ndarray: shape %v implies %d elements, got %d", shape, size, len(values))
	}

	return &Array{
		data:  slices.Clone(values),
		shape: slices.Clone(shape),
		attrs: make(map[string]any),
	}, nil
}

// Scalar creates a zero-dimensional array holding one value.
func Scalar(v float64) *Array {
	return &Array{
		data:  []float64{v},
		shape: []int{},
		attrs: make(map[string]any),
	}
}

// wrap builds a derived array over a raw kernel result, attaching attrs by
// reference.
func wrap(shape []int, values []float64, attrs map[string]any) *Array {
	return &Array{data: values, shape: shape, attrs: attrs}
}

// Shape returns a copy of the array's dimensions.
func (a *Array) Shape() []int {
	return slices.Clone(a.shape)
}

// Len returns the total element count.
func (a *Array) Len() int {
	return len(a.data)
}

// Values returns a copy of the buffer in flat order.
func (a *Array) Values() []float64 {
	return slices.Clone(a.data)
}

// At returns the element at flat index i.
func (a *Array) At(i int) (float64, error) {
	if i < 0 || i >= len(a.data) {
		return 0, fmt.Errorf("ndarray: index %d out of range [0, %d)", i, len(a.data))
	}

	return a.data[i], nil
}

// Attrs returns the metadata map itself. Mutations are visible on every
// array derived from this one and on the arrays it was derived from.
func (a *Array) Attrs() map[string]any {
	return a.attrs
}

// SetAttr sets one metadata entry.
func (a *Array) SetAttr(key string, value any) {
	a.attrs[key] = value
}
