package array

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveExtent(t *testing.T) {
	data := make([]float32, 8)
	for _, extents := range [][]int{{0}, {-3}, {2, 0}, {4, -1, 1}} {
		_, err := New(data, extents...)
		assert.ErrorIs(t, err, ErrInvalidShape, "extents %v", extents)
	}
}

func TestNewRejectsBadRank(t *testing.T) {
	_, err := New([]float64{1})
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = New(make([]float64, 1), 1, 1, 1, 1, 1, 1, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = NewWithBases(make([]float64, 4), []int{2, 2}, []int{0})
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestNewRejectsShortStorage(t *testing.T) {
	_, err := New(make([]int32, 5), 2, 3)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestFromPointer(t *testing.T) {
	_, err := FromPointer[float32](nil, 4, []int{4}, nil)
	require.ErrorIs(t, err, ErrInvalidShape)

	buf := []float32{1, 2, 3, 4}
	v, err := FromPointer[float32](unsafe.Pointer(&buf[0]), len(buf), []int{4}, nil)
	require.NoError(t, err)
	*v.At1(4) = 40
	assert.Equal(t, float32(40), buf[3], "view must alias caller memory")
}

func TestSize(t *testing.T) {
	v, err := New(make([]float64, 24), 2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Rank())
	assert.Equal(t, 24, v.Len())

	for d, want := range []int{2, 3, 4} {
		got, err := v.Size(d + 1)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = v.Size(4)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = v.Size(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBounds(t *testing.T) {
	v, err := NewWithBases(make([]int64, 12), []int{3, 4}, []int{0, -2})
	require.NoError(t, err)

	lo, err := v.Lbound(2)
	require.NoError(t, err)
	hi, err := v.Ubound(2)
	require.NoError(t, err)
	assert.Equal(t, -2, lo)
	assert.Equal(t, 1, hi)

	_, err = v.Ubound(3)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, []int{3, 4}, v.Shape())
	assert.Equal(t, []int{0, -2}, v.Bases())
}

func TestColumnMajorLayout(t *testing.T) {
	data := make([]int32, 6)
	v, err := New(data, 2, 3)
	require.NoError(t, err)

	n := int32(0)
	for j := 1; j <= 3; j++ {
		for i := 1; i <= 2; i++ {
			*v.At2(i, j) = n
			n++
		}
	}
	assert.Equal(t, []int32{0, 1, 2, 3, 4, 5}, data, "first index must vary fastest")
	assert.Equal(t, int32(3), v.Get(2, 2))
	assert.Equal(t, v.At(2, 3), v.At2(2, 3))
}

func TestArbitraryBases(t *testing.T) {
	data := make([]float32, 24)
	v, err := NewWithBases(data, []int{2, 3, 4}, []int{0, 5, -1})
	require.NoError(t, err)

	assert.Equal(t, 0, v.Offset(0, 5, -1))
	assert.Equal(t, 23, v.Offset(1, 7, 2))
	v.Set(7, 1, 6, 0)
	assert.Equal(t, float32(7), data[1+1*2+1*6])
	assert.Equal(t, v.At(1, 6, 0), v.At3(1, 6, 0))
}

func TestAtCheckedReportsBounds(t *testing.T) {
	v, err := New(make([]float32, 3), 3)
	require.NoError(t, err)

	p, err := v.AtChecked(3)
	require.NoError(t, err)
	*p = 1

	_, err = v.AtChecked(4)
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
	var be *BoundsError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 1, be.Dim)
	assert.Equal(t, 4, be.Index)
	assert.Equal(t, 1, be.Lower)
	assert.Equal(t, 3, be.Upper)

	_, err = v.AtChecked(0)
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	_, err = v.AtChecked(1, 1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestCopyDoesNotCopyData(t *testing.T) {
	data := []float64{1, 2, 3}
	v := Must(New(data, 3))
	w := v
	*w.At1(2) = 20
	assert.Equal(t, float64(20), *v.At1(2))
	assert.Equal(t, "View[float64][3]@[1]", v.String())
}

func TestMustPanicsOnError(t *testing.T) {
	assert.Panics(t, func() { Must(New([]float32{}, 0)) })
}
