package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrv0/devarray/internal/array"
)

func newDeviceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "describe the host executor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "name:         ", a.dev.Name)
			fmt.Fprintln(w, "logical cores:", a.dev.LogicalCores)
			fmt.Fprintln(w, "cache line:   ", a.dev.CacheLine)
			fmt.Fprintln(w, "avx2:         ", a.dev.AVX2)
			fmt.Fprintln(w, "workers:      ", a.dev.Workers)
			fmt.Fprintln(w, "block size:   ", a.cfg.BlockSize)
			fmt.Fprintln(w, "checked build:", array.Checked())
			return nil
		},
	}
}
