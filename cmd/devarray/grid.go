package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrv0/devarray/internal/launch"
)

func newGridCommand(a *app) *cobra.Command {
	var (
		n, block, first, step, tile int
	)
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "derive a launch configuration for a counted loop and check its coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 0 {
				return fmt.Errorf("grid: --n must not be negative, got %d", n)
			}
			if step == 0 {
				return fmt.Errorf("grid: --step must not be zero")
			}
			if !cmd.Flags().Changed("block") {
				block = a.cfg.BlockSize
			}
			l := launch.Loop{First: first, Last: first + step*(n-1), Step: step}
			cfg, err := l.Grid(block)
			if err != nil {
				return err
			}
			r := launch.Coverage(l, cfg)
			a.log.Debug("coverage", "loop", l, "report", r)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "loop     first=%d last=%d step=%d len=%d\n", l.First, l.Last, l.Step, l.Len())
			fmt.Fprintf(w, "launch   grid=%d block=%d threads=%d\n", cfg.Grid.X, cfg.Block.X, cfg.Threads())
			fmt.Fprintf(w, "coverage hit=%d masked=%d duplicates=%d stray=%d missing=%d\n",
				r.Hit, r.Masked, r.Duplicates, r.Stray, r.Missing)
			if !r.Ok() {
				return fmt.Errorf("grid: launch does not cover the loop exactly once")
			}
			if tile > 0 && l.Len() > 0 {
				tl, err := l.Tile(tile)
				if err != nil {
					return err
				}
				last, _ := tl.Index(tl.NumTiles()-1, (l.Len()-1)%tile)
				fmt.Fprintf(w, "tiles    size=%d count=%d last=%d\n", tile, tl.NumTiles(), last)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&n, "n", 300, "trip count")
	f.IntVar(&block, "block", 128, "threads per block (default from config)")
	f.IntVar(&first, "first", 1, "first loop index")
	f.IntVar(&step, "step", 1, "loop step, negative for descending loops")
	f.IntVar(&tile, "tile", 0, "also split the loop into tiles of this size")
	return cmd
}
