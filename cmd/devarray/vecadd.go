package main

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qrv0/devarray/internal/array"
	"github.com/qrv0/devarray/internal/kernels"
	"github.com/qrv0/devarray/internal/launch"
	"github.com/qrv0/devarray/internal/snapshot"
)

type vecAddOptions struct {
	n         int
	a         float32
	x, y      string
	sharedMem int
	stream    bool
	out       string
	compress  string
}

func newVecAddCommand(a *app) *cobra.Command {
	o := &vecAddOptions{}
	cmd := &cobra.Command{
		Use:   "vecadd",
		Short: "run y(i) = y(i) + a*x(i) as a data-parallel launch",
		Long: "Runs the vector update over rank-1 views in blocks of 128 threads.\n" +
			"Without --x/--y, x(i)=1 and y(i)=i for i=1..n.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVecAdd(cmd, o)
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.n, "n", 300, "vector length when --x/--y are not given")
	f.Float32Var(&o.a, "a", 2, "scalar a")
	f.StringVar(&o.x, "x", "", "comma-separated x values")
	f.StringVar(&o.y, "y", "", "comma-separated y values")
	f.IntVar(&o.sharedMem, "shared-mem", 0, "shared memory bytes per block")
	f.BoolVar(&o.stream, "stream", false, "enqueue on a stream and synchronize")
	f.StringVar(&o.out, "out", "", "write the resulting y as a snapshot")
	f.StringVar(&o.compress, "compress", "", "snapshot compression: none|zstd|lz4 (default from config)")
	return cmd
}

func (a *app) runVecAdd(cmd *cobra.Command, o *vecAddOptions) error {
	xd, yd, err := o.operands()
	if err != nil {
		return err
	}
	y, err := array.New(yd, len(yd))
	if err != nil {
		return err
	}
	x, err := array.New(xd, len(xd))
	if err != nil {
		return err
	}

	want := append([]float32(nil), yd...)
	kernels.HostAxpy32(want, o.a, xd)

	ctx := cmd.Context()
	var s *launch.Stream
	if o.stream {
		s = launch.NewStream(a.dev, a.log)
	}
	err = kernels.LaunchVecAdd(ctx, a.dev, o.sharedMem, s, y, o.a, x)
	if err = finishStream(ctx, s, err); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "launch grid=%d block=%d n=%d\n", launch.DivideAndRoundUp(len(yd), kernels.VecAddBlockX), kernels.VecAddBlockX, len(yd))
	n := min(16, len(yd))
	for i := 1; i <= n; i++ {
		fmt.Fprintf(w, "  y(%d)=%g\n", i, *y.At1(i))
	}
	if n < len(yd) {
		fmt.Fprintf(w, "  ... %d more\n", len(yd)-n)
	}
	var maxDiff float64
	for i := range yd {
		maxDiff = math.Max(maxDiff, math.Abs(float64(yd[i]-want[i])))
	}
	fmt.Fprintf(w, "host check: max|diff|=%g\n", maxDiff)

	if o.out != "" {
		comp := o.compress
		if comp == "" {
			comp = a.cfg.Compression
		}
		flags, err := snapshot.ParseCompression(comp)
		if err != nil {
			return err
		}
		if err := snapshot.Save(o.out, y, snapshot.Options{Compression: flags}); err != nil {
			return err
		}
		a.log.Info("snapshot written", "path", o.out, "compression", snapshot.CompressionName(flags))
	}
	return nil
}

// finishStream synchronizes s unless launching already failed, then closes
// it. The first error wins. A nil stream passes err through.
func finishStream(ctx context.Context, s *launch.Stream, err error) error {
	if s == nil {
		return err
	}
	if err == nil {
		err = s.Synchronize(ctx)
	}
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	return err
}

func (o *vecAddOptions) operands() (x, y []float32, err error) {
	if o.x == "" && o.y == "" {
		if o.n <= 0 {
			return nil, nil, fmt.Errorf("vecadd: --n must be positive, got %d", o.n)
		}
		x = make([]float32, o.n)
		y = make([]float32, o.n)
		for i := range x {
			x[i] = 1
			y[i] = float32(i + 1)
		}
		return x, y, nil
	}
	if x, err = parseFloats(o.x); err != nil {
		return nil, nil, fmt.Errorf("vecadd: --x: %w", err)
	}
	if y, err = parseFloats(o.y); err != nil {
		return nil, nil, fmt.Errorf("vecadd: --y: %w", err)
	}
	if len(x) != len(y) || len(y) == 0 {
		return nil, nil, fmt.Errorf("vecadd: --x has %d values, --y has %d", len(x), len(y))
	}
	return x, y, nil
}

func parseFloats(s string) ([]float32, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}
