// Package launch runs data-parallel kernels on the host: it derives launch
// configurations from problem sizes, maps threads to loop indices, and
// executes blocks on a pool of goroutines, optionally ordered by a Stream.
package launch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned for a launch configuration that cannot run.
	ErrInvalidConfig = errors.New("launch: invalid configuration")
	// ErrStreamClosed is returned when work is submitted to a closed stream.
	ErrStreamClosed = errors.New("launch: stream closed")
)

// Dim3 is a three-component launch extent or coordinate.
type Dim3 struct {
	X, Y, Z int
}

// Count is the number of points in the extent.
func (d Dim3) Count() int { return d.X * d.Y * d.Z }

// Config is the transient launch configuration of a single kernel call.
type Config struct {
	Grid      Dim3
	Block     Dim3
	SharedMem int // bytes per block, zero for none
}

// Threads is the total number of threads started by the configuration.
func (c Config) Threads() int { return c.Grid.Count() * c.Block.Count() }

// Validate checks that the configuration is runnable.
func (c Config) Validate() error {
	if c.Block.X < 1 || c.Block.Y < 1 || c.Block.Z < 1 {
		return fmt.Errorf("%w: block %+v", ErrInvalidConfig, c.Block)
	}
	if c.Grid.X < 0 || c.Grid.Y < 0 || c.Grid.Z < 0 {
		return fmt.Errorf("%w: grid %+v", ErrInvalidConfig, c.Grid)
	}
	if c.SharedMem < 0 {
		return fmt.Errorf("%w: shared memory %d", ErrInvalidConfig, c.SharedMem)
	}
	return nil
}

// DivideAndRoundUp returns ceil(n/b) for positive b.
func DivideAndRoundUp(n, b int) int { return (n + b - 1) / b }

// Grid1D covers n work items with blocks of the given size.
func Grid1D(n, block int) (Config, error) {
	if block < 1 {
		return Config{}, fmt.Errorf("%w: block size %d", ErrInvalidConfig, block)
	}
	if n < 0 {
		return Config{}, fmt.Errorf("%w: problem size %d", ErrInvalidConfig, n)
	}
	return Config{
		Grid:  Dim3{X: DivideAndRoundUp(n, block), Y: 1, Z: 1},
		Block: Dim3{X: block, Y: 1, Z: 1},
	}, nil
}

// Thread is what a kernel sees of its place in the launch.
type Thread struct {
	ThreadIdx Dim3
	BlockIdx  Dim3
	BlockDim  Dim3
	GridDim   Dim3
	Shared    []byte // per-block scratch, nil when Config.SharedMem is zero
}

// GlobalX is threadIdx.x + blockIdx.x*blockDim.x.
func (t Thread) GlobalX() int { return t.ThreadIdx.X + t.BlockIdx.X*t.BlockDim.X }

// Kernel is the body run once per thread.
type Kernel func(t Thread)
