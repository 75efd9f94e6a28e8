package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrv0/devarray/internal/snapshot"
)

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "print the metadata of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := snapshot.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			meta, err := r.SectionUncompressed(snapshot.TypeMeta)
			if err != nil {
				return err
			}
			var pretty map[string]any
			if err := json.Unmarshal(meta, &pretty); err != nil {
				return fmt.Errorf("inspect: meta: %w", err)
			}
			// the hash list is long and says nothing to a reader
			if c, ok := pretty["checksum"].(map[string]any); ok {
				delete(c, "hashes_hex")
			}
			b, err := json.MarshalIndent(pretty, "", "  ")
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "META:")
			fmt.Fprintln(w, string(b))
			data, err := r.Section(snapshot.TypeData)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "DATA:", len(data), "bytes stored")
			return nil
		},
	}
}

func newVerifyCommand(a *app) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "verify the checksums of a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				return fmt.Errorf("verify: --in is required")
			}
			if err := snapshot.Verify(in); err != nil {
				a.log.Error("checksum verify failed", "path", in, "err", err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "checksum verify: OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "snapshot file")
	return cmd
}
