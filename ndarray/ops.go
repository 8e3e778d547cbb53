package ndarray

import (
	"fmt"
	"slices"
)

// The functions below all follow the same discipline: strip the wrappers,
// run the kernel on bare float64 buffers, rewrap the raw result, and attach
// the receiver's metadata map. The receiver is always the first operand.

// Apply derives a new array by applying fn to every element.
func Apply(a *Array, fn func(float64) float64) *Array {
	out := applyKernel(a.data, fn)

	return wrap(slices.Clone(a.shape), out, a.attrs)
}

// Apply2 derives a new array by combining two arrays elementwise. The
// shapes must match; the result carries the receiver's (first operand's)
// metadata.
func Apply2(a, b *Array, fn func(x, y float64) float64) (*Array, error) {
	if !slices.Equal(a.shape, b.shape) {
		return nil, fmt.Errorf("ndarray: shape mismatch %v vs %v", a.shape, b.shape)
	}

	out := apply2Kernel(a.data, b.data, fn)

	return wrap(slices.Clone(a.shape), out, a.attrs), nil
}

// Reduce folds the whole array to a scalar array.
func Reduce(a *Array, init float64, fn func(acc, x float64) float64) *Array {
	out := reduceKernel(a.data, init, fn)

	return wrap([]int{}, []float64{out}, a.attrs)
}

// Accumulate derives an array of running partial reductions in flat order.
func Accumulate(a *Array, init float64, fn func(acc, x float64) float64) *Array {
	out := accumulateKernel(a.data, init, fn)

	return wrap(slices.Clone(a.shape), out, a.attrs)
}

// ReduceWindow folds consecutive non-overlapping windows of the given size
// (the final window may be shorter), producing a one-dimensional array of
// per-window results.
func ReduceWindow(a *Array, window int, init float64, fn func(acc, x float64) float64) (*Array, error) {
	if window <= 0 {
		return nil, fmt.Errorf("ndarray: window must be positive, got %d", window)
	}

	out := reduceWindowKernel(a.data, window, init, fn)

	return wrap([]int{len(out)}, out, a.attrs), nil
}

// Outer derives the generalized outer product of two arrays: every pairing
// of an element of a with an element of b. The result's shape is the
// concatenation of the operand shapes and it carries the receiver's
// metadata.
func Outer(a, b *Array, fn func(x, y float64) float64) *Array {
	out := outerKernel(a.data, b.data, fn)
	shape := append(slices.Clone(a.shape), b.shape...)

	return wrap(shape, out, a.attrs)
}

// UpdateAt derives a new array with fn applied at the given flat indices
// only. Duplicate indices apply fn once per occurrence.
func UpdateAt(a *Array, indices []int, fn func(x float64) float64) (*Array, error) {
	for _, i := range indices {
		if i < 0 || i >= len(a.data) {
			return nil, fmt.Errorf("ndarray: update index %d out of range [0, %d)", i, len(a.data))
		}
	}

	out := updateAtKernel(a.data, indices, fn)

	return wrap(slices.Clone(a.shape), out, a.attrs), nil
}

// Kernels: plain buffer in, plain buffer out. No metadata awareness here.

func applyKernel(data []float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = fn(v)
	}

	return out
}

func apply2Kernel(a, b []float64, fn func(x, y float64) float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = fn(a[i], b[i])
	}

	return out
}

func reduceKernel(data []float64, init float64, fn func(acc, x float64) float64) float64 {
	acc := init
	for _, v := range data {
		acc = fn(acc, v)
	}

	return acc
}

func accumulateKernel(data []float64, init float64, fn func(acc, x float64) float64) []float64 {
	out := make([]float64, len(data))
	acc := init
	for i, v := range data {
		acc = fn(acc, v)
		out[i] = acc
	}

	return out
}

func reduceWindowKernel(data []float64, window int, init float64, fn func(acc, x float64) float64) []float64 {
	out := make([]float64, 0, (len(data)+window-1)/window)
	for low := 0; low < len(data); low += window {
		high := min(low+window, len(data))
		out = append(out, reduceKernel(data[low:high], init, fn))
	}

	return out
}

func outerKernel(a, b []float64, fn func(x, y float64) float64) []float64 {
	out := make([]float64, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, fn(x, y))
		}
	}

	return out
}

func updateAtKernel(data []float64, indices []int, fn func(x float64) float64) []float64 {
	out := slices.Clone(data)
	for _, i := range indices {
		out[i] = fn(out[i])
	}

	return out
}
