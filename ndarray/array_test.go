package ndarray

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestArray(t *testing.T) *Array {
	t.Helper()

	a, err := New([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	a.SetAttr("unit", "eV")
	a.SetAttr("run", int64(7))

	return a
}

func TestNew(t *testing.T) {
	a := newTestArray(t)
	require.Equal(t, []int{2, 3}, a.Shape())
	require.Equal(t, 6, a.Len())
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.Values())

	v, err := a.At(4)
	require.NoError(t, err)
	require.Equal(t, 5.0, v)
	_, err = a.At(6)
	require.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	_, err := New([]int{2, 2}, []float64{1})
	require.Error(t, err)
	_, err = New([]int{-1}, nil)
	require.Error(t, err)
}

func TestNewStartsWithEmptyMetadata(t *testing.T) {
	a, err := New([]int{1}, []float64{0})
	require.NoError(t, err)
	require.NotNil(t, a.Attrs())
	require.Empty(t, a.Attrs())
}

func TestScalar(t *testing.T) {
	s := Scalar(3.5)
	require.Equal(t, []int{}, s.Shape())
	require.Equal(t, []float64{3.5}, s.Values())
}

// Metadata-preservation law: every derived array carries the receiver's
// metadata map, by reference.
func TestDerivedArraysShareMetadata(t *testing.T) {
	a := newTestArray(t)
	add := func(acc, x float64) float64 { return acc + x }

	derived := []*Array{
		Apply(a, func(x float64) float64 { return -x }),
		Reduce(a, 0, add),
		Accumulate(a, 0, add),
	}

	win, err := ReduceWindow(a, 2, 0, add)
	require.NoError(t, err)
	derived = append(derived, win)

	other, err := New([]int{2}, []float64{10, 20})
	require.NoError(t, err)
	derived = append(derived, Outer(a, other, func(x, y float64) float64 { return x * y }))

	upd, err := UpdateAt(a, []int{0}, func(x float64) float64 { return x + 100 })
	require.NoError(t, err)
	derived = append(derived, upd)

	for _, d := range derived {
		require.Equal(t, "eV", d.Attrs()["unit"])
		require.Equal(t, int64(7), d.Attrs()["run"])
	}

	// Same map, not a copy: a later write on the receiver shows through.
	a.SetAttr("late", true)
	for _, d := range derived {
		require.Equal(t, true, d.Attrs()["late"])
	}
}

func TestApply(t *testing.T) {
	a := newTestArray(t)
	neg := Apply(a, func(x float64) float64 { return -x })
	require.Equal(t, []float64{-1, -2, -3, -4, -5, -6}, neg.Values())
	// The receiver is untouched.
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.Values())
}

func TestApply2(t *testing.T) {
	a := newTestArray(t)
	b, err := New([]int{2, 3}, []float64{10, 10, 10, 10, 10, 10})
	require.NoError(t, err)
	b.SetAttr("unit", "counts")

	sum, err := Apply2(a, b, func(x, y float64) float64 { return x + y })
	require.NoError(t, err)
	require.Equal(t, []float64{11, 12, 13, 14, 15, 16}, sum.Values())
	// Receiver's metadata wins.
	require.Equal(t, "eV", sum.Attrs()["unit"])

	mismatched, err := New([]int{6}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	_, err = Apply2(a, mismatched, func(x, y float64) float64 { return x })
	require.Error(t, err)
}

func TestReduce(t *testing.T) {
	a := newTestArray(t)
	total := Reduce(a, 0, func(acc, x float64) float64 { return acc + x })
	require.Equal(t, []int{}, total.Shape())
	require.Equal(t, []float64{21}, total.Values())
}

func TestAccumulate(t *testing.T) {
	a := newTestArray(t)
	running := Accumulate(a, 0, func(acc, x float64) float64 { return acc + x })
	require.Equal(t, []float64{1, 3, 6, 10, 15, 21}, running.Values())
	require.Equal(t, a.Shape(), running.Shape())
}

func TestReduceWindow(t *testing.T) {
	a := newTestArray(t)
	sums, err := ReduceWindow(a, 4, 0, func(acc, x float64) float64 { return acc + x })
	require.NoError(t, err)
	// 1+2+3+4, then the short tail 5+6.
	require.Equal(t, []float64{10, 11}, sums.Values())
	require.Equal(t, []int{2}, sums.Shape())

	_, err = ReduceWindow(a, 0, 0, func(acc, x float64) float64 { return acc })
	require.Error(t, err)
}

func TestOuter(t *testing.T) {
	a, err := New([]int{2}, []float64{1, 2})
	require.NoError(t, err)
	a.SetAttr("k", "v")
	b, err := New([]int{3}, []float64{10, 20, 30})
	require.NoError(t, err)

	prod := Outer(a, b, func(x, y float64) float64 { return x * y })
	require.Equal(t, []int{2, 3}, prod.Shape())
	require.Equal(t, []float64{10, 20, 30, 20, 40, 60}, prod.Values())
	require.Equal(t, "v", prod.Attrs()["k"])
}

func TestUpdateAt(t *testing.T) {
	a := newTestArray(t)
	upd, err := UpdateAt(a, []int{0, 5}, func(x float64) float64 { return x * 10 })
	require.NoError(t, err)
	require.Equal(t, []float64{10, 2, 3, 4, 5, 60}, upd.Values())
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.Values())

	_, err = UpdateAt(a, []int{6}, func(x float64) float64 { return x })
	require.Error(t, err)
}
