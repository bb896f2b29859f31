package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowreader/pkg/codec"
	"github.com/ssargent/rowreader/pkg/query"
)

func newGetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Decode a stored dataset",
		Long: `Decode a stored dataset and print its rows, optionally reduced with the
map, filter, resolution and range flags.

Examples:
  rowreader get 2ZWbt0Zn5vmSKyDsTHOcLVtx3Xm
  rowreader get 2ZWbt0Zn5vmSKyDsTHOcLVtx3Xm --filter top-5 --resolution 60
  rowreader get 2ZWbt0Zn5vmSKyDsTHOcLVtx3Xm --raw -o copy.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := queryFlags(cmd)
			if err != nil {
				return err
			}
			format, err := formatFlag(cmd)
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			meta, payload, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if raw, _ := cmd.Flags().GetBool("raw"); raw {
				output, _ := cmd.Flags().GetString("output")
				if output == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(payload)
					return err
				}
				if err := os.WriteFile(output, payload, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				return nil
			}

			rows, err := codec.Decode(payload, meta.Type, len(meta.Variants))
			if err != nil {
				return err
			}
			a.logger.WithDataset(meta.ID).LogDecode(cmd.Context(), meta.Type.String(),
				len(meta.Variants), meta.Layout.Rows, meta.Layout.DroppedBytes, nil)

			series, err := query.Apply(query.Series{Variants: meta.Variants, Rows: rows}, req)
			if err != nil {
				return err
			}
			return outputSeries(cmd.OutOrStdout(), format, series, meta.Layout)
		},
	}

	addQueryFlags(cmd)
	addFormatFlag(cmd)
	cmd.Flags().Bool("raw", false, "Write the stored bytes instead of decoded rows")
	cmd.Flags().StringP("output", "o", "", "Output file for --raw (default stdout)")
	return cmd
}
