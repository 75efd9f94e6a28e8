// Package kernels holds the data-parallel kernels that operate on array
// views, their launchers, and host reference paths used to check them.
package kernels

import (
	"context"
	"errors"
	"fmt"

	"github.com/qrv0/devarray/internal/array"
	"github.com/qrv0/devarray/internal/launch"
)

// VecAddBlockX is the thread-block size used by the vector-update launchers.
const VecAddBlockX = 128

// ErrShapeMismatch is returned when operand views cannot be combined.
var ErrShapeMismatch = errors.New("kernels: shape mismatch")

// Float is the set of element types the update kernels accept.
type Float interface {
	~float32 | ~float64
}

// Axpy returns the per-thread body of y(i) = y(i) + a*x(i) for i walking
// loop. Thread g owns loop.Index(g); threads past the end of the loop are
// masked by the guard.
func Axpy[T Float](loop launch.Loop, y array.View[T], a T, x array.View[T]) launch.Kernel {
	return func(t launch.Thread) {
		i := loop.Index(t.GlobalX())
		if loop.Cond(i) {
			*y.At1(i) += a * *x.At1(i)
		}
	}
}

// VecAdd is Axpy over the whole first dimension of y, starting at its
// lower bound.
func VecAdd[T Float](y array.View[T], a T, x array.View[T]) launch.Kernel {
	return Axpy(fullLoop(y), y, a, x)
}

// LaunchVecAdd launches VecAdd with VecAddBlockX threads per block and
// ceil(size(y,1)/VecAddBlockX) blocks. The stream only orders the launch
// relative to other work; a nil stream runs it synchronously.
func LaunchVecAdd(ctx context.Context, dev *launch.Device, sharedMem int, stream *launch.Stream, y array.View[float32], a float32, x array.View[float32]) error {
	if y.Rank() != 1 {
		return fmt.Errorf("%w: vecadd needs rank-1 views, y is %v", ErrShapeMismatch, y)
	}
	return launchAxpy(ctx, dev, sharedMem, stream, "vecadd", fullLoop(y), y, a, x)
}

// LaunchAxpyLoop applies the update over an arbitrary counted loop, which
// may be strided or descending. Every index the loop visits must be valid
// in both views.
func LaunchAxpyLoop[T Float](ctx context.Context, dev *launch.Device, stream *launch.Stream, loop launch.Loop, y array.View[T], a T, x array.View[T]) error {
	return launchAxpy(ctx, dev, 0, stream, "axpy", loop, y, a, x)
}

func launchAxpy[T Float](ctx context.Context, dev *launch.Device, sharedMem int, stream *launch.Stream, name string, loop launch.Loop, y array.View[T], a T, x array.View[T]) error {
	if y.Rank() != 1 || x.Rank() != 1 {
		return fmt.Errorf("%w: %s needs rank-1 views, got %v and %v", ErrShapeMismatch, name, y, x)
	}
	if n := loop.Len(); n > 0 {
		lo, hi := loop.First, loop.Index(n-1)
		if !covers(y, lo, hi) || !covers(x, lo, hi) {
			return fmt.Errorf("%w: %s over [%d..%d] exceeds %v or %v", ErrShapeMismatch, name, lo, hi, y, x)
		}
	}
	cfg, err := loop.Grid(VecAddBlockX)
	if err != nil {
		return err
	}
	cfg.SharedMem = sharedMem
	return launch.Launch(ctx, dev, stream, name, cfg, Axpy(loop, y, a, x))
}

func fullLoop[T array.Element](v array.View[T]) launch.Loop {
	lo, _ := v.Lbound(1)
	hi, _ := v.Ubound(1)
	return launch.Loop{First: lo, Last: hi, Step: 1}
}

// covers reports whether both a and b lie inside the first dimension of v.
func covers[T array.Element](v array.View[T], a, b int) bool {
	lo, _ := v.Lbound(1)
	hi, _ := v.Ubound(1)
	return a >= lo && a <= hi && b >= lo && b <= hi
}
