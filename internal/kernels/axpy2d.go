package kernels

import (
	"context"
	"fmt"
	"slices"

	"github.com/qrv0/devarray/internal/array"
	"github.com/qrv0/devarray/internal/launch"
)

// Axpy2D returns the body of y(i,j) += a*x(i,j) driven by a collapsed
// (j, i) nest, so consecutive threads touch consecutive elements.
func Axpy2D[T Float](nest launch.Nest, y array.View[T], a T, x array.View[T]) launch.Kernel {
	return func(t launch.Thread) {
		var ji [2]int
		if nest.Indices(t.GlobalX(), ji[:]) {
			*y.At2(ji[1], ji[0]) += a * *x.At2(ji[1], ji[0])
		}
	}
}

// LaunchAxpy2D updates every element of the rank-2 view y. x must have the
// same shape and bases.
func LaunchAxpy2D[T Float](ctx context.Context, dev *launch.Device, stream *launch.Stream, y array.View[T], a T, x array.View[T]) error {
	if y.Rank() != 2 || !slices.Equal(y.Shape(), x.Shape()) || !slices.Equal(y.Bases(), x.Bases()) {
		return fmt.Errorf("%w: axpy2d needs matching rank-2 views, got %v and %v", ErrShapeMismatch, y, x)
	}
	var nest launch.Nest
	for _, d := range []int{2, 1} {
		lo, _ := y.Lbound(d)
		hi, _ := y.Ubound(d)
		nest = append(nest, launch.Loop{First: lo, Last: hi, Step: 1})
	}
	cfg, err := nest.Grid(VecAddBlockX)
	if err != nil {
		return err
	}
	return launch.Launch(ctx, dev, stream, "axpy2d", cfg, Axpy2D(nest, y, a, x))
}
