package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowreader/pkg/codec"
	"github.com/ssargent/rowreader/pkg/query"
)

func newDecodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <file>...",
		Short: "Decode binary row buffers",
		Long: `Decode one or more binary row buffers and print their rows.

Every row is a 32-bit index followed by one value per variant. Trailing bytes
that do not fill a whole row are ignored. Several files are decoded in parallel.

Examples:
  rowreader decode iops.bin --type I32 --variants read,write
  rowreader decode iops.bin --type F32 --variants a,b,c --map sum --format csv
  rowreader decode index.bin --variants ""`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			et, variants, err := a.layoutFlags(cmd)
			if err != nil {
				return err
			}
			req, err := queryFlags(cmd)
			if err != nil {
				return err
			}
			format, err := formatFlag(cmd)
			if err != nil {
				return err
			}

			batches := make([]codec.Batch, len(args))
			for i, path := range args {
				buf, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				batches[i] = codec.Batch{Buf: buf, Type: et, FieldCount: len(variants)}
			}

			results, err := codec.DecodeBatch(cmd.Context(), batches, a.cfg.Decoder.Parallelism)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, rows := range results {
				layout, _ := codec.ComputeLayout(len(batches[i].Buf), len(variants))
				a.logger.LogDecode(cmd.Context(), et.String(), len(variants), layout.Rows, layout.DroppedBytes, nil)

				series, err := query.Apply(query.Series{Variants: variants, Rows: rows}, req)
				if err != nil {
					return err
				}
				if len(args) > 1 && format == formatTable {
					fmt.Fprintf(out, "==> %s <==\n", args[i])
				}
				if err := outputSeries(out, format, series, layout); err != nil {
					return err
				}
			}
			return nil
		},
	}

	addLayoutFlags(cmd)
	addQueryFlags(cmd)
	addFormatFlag(cmd)
	return cmd
}
