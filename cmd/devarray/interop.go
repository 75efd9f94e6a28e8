package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrv0/devarray/internal/interop"
)

func newInteropCommand(a *app) *cobra.Command {
	var av, bv int32
	cmd := &cobra.Command{
		Use:   "interop",
		Short: "call the scalar entry points directly and through a forwarder and compare",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tab := interop.NewTable()
			if err := tab.Bind("direct_", interop.Accumulator{}); err != nil {
				return err
			}
			fwd := interop.Forwarder{Target: interop.Accumulator{}, Logger: a.log}
			if err := tab.Bind("forwarded_", fwd); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			var got [2][3]int32
			for k, prefix := range []string{"direct_", "forwarded_"} {
				sub, err := tab.Subroutine(prefix + "subroutine")
				if err != nil {
					return err
				}
				fn, err := tab.Function(prefix + "function")
				if err != nil {
					return err
				}
				b := bv
				sub(av, &b)
				afterSub := b
				r := fn(av, &b)
				got[k] = [3]int32{afterSub, b, r}
				fmt.Fprintf(w, "%-10s subroutine b=%d function b=%d result=%d\n", prefix[:len(prefix)-1], afterSub, b, r)
			}
			if got[0] != got[1] {
				return fmt.Errorf("interop: forwarded call diverged from direct call")
			}
			fmt.Fprintln(w, "pass-through: ok")
			return nil
		},
	}
	cmd.Flags().Int32Var(&av, "a", 5, "value argument")
	cmd.Flags().Int32Var(&bv, "b", 0, "initial value of the reference argument")
	return cmd
}
