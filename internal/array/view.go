// Package array provides View, a non-owning N-dimensional window onto
// contiguous memory that is allocated and freed by someone else.
//
// Indexing is column-major (the first index varies fastest) with a
// per-dimension base that defaults to 1, so a rank-1 view of n elements is
// addressed as v(1)..v(n).
//
// Element access through At, At1, At2 and At3 is unchecked in the default
// build. Building with -tags checked turns every access into a bounds
// check that panics with a *BoundsError. AtChecked always checks.
package array

import (
	"fmt"
	"math"
	"unsafe"
)

// MaxRank is the largest rank a View can have.
const MaxRank = 7

// Element is the set of element types a View can carry.
type Element interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// View describes external memory as an indexable array. It is a value type:
// copying a View copies the shape description, never the data.
type View[T Element] struct {
	data   []T
	rank   int
	extent [MaxRank]int
	base   [MaxRank]int
	stride [MaxRank]int
	offset int // -sum(base[d]*stride[d])
}

// New builds a one-based view over data.
func New[T Element](data []T, extents ...int) (View[T], error) {
	return NewWithBases(data, extents, nil)
}

// NewWithBases builds a view with explicit per-dimension bases. A nil bases
// slice means every dimension starts at 1.
func NewWithBases[T Element](data []T, extents, bases []int) (View[T], error) {
	var v View[T]
	if len(extents) == 0 || len(extents) > MaxRank {
		return View[T]{}, fmt.Errorf("%w: rank %d not in 1..%d", ErrInvalidShape, len(extents), MaxRank)
	}
	if bases != nil && len(bases) != len(extents) {
		return View[T]{}, fmt.Errorf("%w: %d bases for rank %d", ErrInvalidShape, len(bases), len(extents))
	}
	stride := 1
	for d, e := range extents {
		if e <= 0 {
			return View[T]{}, fmt.Errorf("%w: extent %d in dimension %d", ErrInvalidShape, e, d+1)
		}
		if stride > math.MaxInt/e {
			return View[T]{}, fmt.Errorf("%w: element count overflows int", ErrInvalidShape)
		}
		b := 1
		if bases != nil {
			b = bases[d]
		}
		v.extent[d] = e
		v.base[d] = b
		v.stride[d] = stride
		v.offset -= b * stride
		stride *= e
	}
	if len(data) < stride {
		return View[T]{}, fmt.Errorf("%w: storage holds %d elements, shape %v needs %d", ErrInvalidShape, len(data), extents, stride)
	}
	v.rank = len(extents)
	v.data = data[:stride:stride]
	return v, nil
}

// FromPointer wraps n elements of type T starting at p. The caller keeps
// ownership of the memory and must keep it alive while the view is in use.
func FromPointer[T Element](p unsafe.Pointer, n int, extents, bases []int) (View[T], error) {
	if p == nil || n <= 0 {
		return View[T]{}, fmt.Errorf("%w: nil or empty storage", ErrInvalidShape)
	}
	return NewWithBases(unsafe.Slice((*T)(p), n), extents, bases)
}

// Must panics if err is non-nil. It is meant for kernel-side code where the
// shape is a precondition established by the host.
func Must[T Element](v View[T], err error) View[T] {
	if err != nil {
		panic(err)
	}
	return v
}

// Rank returns the number of dimensions.
func (v View[T]) Rank() int { return v.rank }

// Len returns the total number of elements described by the view.
func (v View[T]) Len() int { return len(v.data) }

// Data returns the underlying storage in column-major order.
func (v View[T]) Data() []T { return v.data }

// Size returns the extent along the 1-based dimension d.
func (v View[T]) Size(d int) (int, error) {
	if d < 1 || d > v.rank {
		return 0, fmt.Errorf("%w: dimension %d of rank %d", ErrOutOfRange, d, v.rank)
	}
	return v.extent[d-1], nil
}

// Extent is Size without the dimension check, for use inside kernels.
func (v View[T]) Extent(d int) int { return v.extent[d-1] }

// Lbound returns the lowest valid index along dimension d.
func (v View[T]) Lbound(d int) (int, error) {
	if d < 1 || d > v.rank {
		return 0, fmt.Errorf("%w: dimension %d of rank %d", ErrOutOfRange, d, v.rank)
	}
	return v.base[d-1], nil
}

// Ubound returns the highest valid index along dimension d.
func (v View[T]) Ubound(d int) (int, error) {
	if d < 1 || d > v.rank {
		return 0, fmt.Errorf("%w: dimension %d of rank %d", ErrOutOfRange, d, v.rank)
	}
	return v.base[d-1] + v.extent[d-1] - 1, nil
}

// Shape returns a copy of the extents.
func (v View[T]) Shape() []int { return append([]int(nil), v.extent[:v.rank]...) }

// Bases returns a copy of the per-dimension bases.
func (v View[T]) Bases() []int { return append([]int(nil), v.base[:v.rank]...) }

// Offset returns the flat column-major position of idx in Data.
func (v View[T]) Offset(idx ...int) int {
	off := v.offset
	for d, i := range idx {
		off += i * v.stride[d]
	}
	return off
}

// At returns a reference to the element at idx, one index per dimension.
func (v View[T]) At(idx ...int) *T {
	if boundsChecked {
		if err := v.check(idx); err != nil {
			panic(err)
		}
	}
	return &v.data[v.Offset(idx...)]
}

// At1 is At for rank-1 views.
func (v View[T]) At1(i int) *T {
	if boundsChecked {
		if err := v.check([]int{i}); err != nil {
			panic(err)
		}
	}
	return &v.data[i-v.base[0]]
}

// At2 is At for rank-2 views.
func (v View[T]) At2(i, j int) *T {
	if boundsChecked {
		if err := v.check([]int{i, j}); err != nil {
			panic(err)
		}
	}
	return &v.data[v.offset+i+j*v.stride[1]]
}

// At3 is At for rank-3 views.
func (v View[T]) At3(i, j, k int) *T {
	if boundsChecked {
		if err := v.check([]int{i, j, k}); err != nil {
			panic(err)
		}
	}
	return &v.data[v.offset+i+j*v.stride[1]+k*v.stride[2]]
}

// AtChecked is At with bounds checking in every build mode.
func (v View[T]) AtChecked(idx ...int) (*T, error) {
	if err := v.check(idx); err != nil {
		return nil, err
	}
	return &v.data[v.Offset(idx...)], nil
}

// Get reads the element at idx.
func (v View[T]) Get(idx ...int) T { return *v.At(idx...) }

// Set writes x at idx.
func (v View[T]) Set(x T, idx ...int) { *v.At(idx...) = x }

func (v View[T]) check(idx []int) error {
	if len(idx) != v.rank {
		return fmt.Errorf("%w: %d indices for rank %d", ErrOutOfRange, len(idx), v.rank)
	}
	for d, i := range idx {
		lo, hi := v.base[d], v.base[d]+v.extent[d]-1
		if i < lo || i > hi {
			return &BoundsError{Dim: d + 1, Index: i, Lower: lo, Upper: hi}
		}
	}
	return nil
}

func (v View[T]) String() string {
	var zero T
	return fmt.Sprintf("View[%T]%v@%v", zero, v.extent[:v.rank], v.base[:v.rank])
}

// Checked reports whether this binary was built with bounds-checked access.
func Checked() bool { return boundsChecked }
