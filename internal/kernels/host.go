package kernels

import (
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/floats"
)

// HostAxpy32 computes y += a*x on the host with BLAS. If the lengths differ
// the shorter one is used.
func HostAxpy32(y []float32, a float32, x []float32) {
	n := min(len(x), len(y))
	if n == 0 {
		return
	}
	blas32.Axpy(a,
		blas32.Vector{N: n, Data: x, Inc: 1},
		blas32.Vector{N: n, Data: y, Inc: 1},
	)
}

// HostAxpy64 is HostAxpy32 for float64.
func HostAxpy64(y []float64, a float64, x []float64) {
	n := min(len(x), len(y))
	if n == 0 {
		return
	}
	floats.AddScaled(y[:n], a, x[:n])
}
