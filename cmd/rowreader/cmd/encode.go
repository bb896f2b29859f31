package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowreader/pkg/codec"
)

func newEncodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <json-file>",
		Short: "Encode JSON rows into a binary row buffer",
		Long: `Encode rows given as a JSON array of records into the binary row format.
Every record is the row index followed by one value per variant, e.g.

  [[28488270, 1.5, 2], [28488271, 3, 4.25]]

Examples:
  rowreader encode rows.json --type F32 --variants read,write -o rows.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			et, variants, err := a.layoutFlags(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			var records []codec.Record
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			rows, err := codec.RowsFromRecords(records, len(variants))
			if err != nil {
				return err
			}
			buf, err := codec.Encode(rows, et, len(variants))
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(buf)
				return err
			}
			if err := os.WriteFile(output, buf, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			a.logger.Info("encoded rows", "rows", len(rows), "bytes", len(buf), "output", output)
			return nil
		},
	}

	addLayoutFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	return cmd
}
