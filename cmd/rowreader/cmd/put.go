package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowreader/pkg/storage"
)

func newPutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Store a row buffer as a dataset",
		Long: `Store a binary row buffer in the local dataset store together with its
element type and variant names.

Example:
  rowreader put iops.bin --name HG_IOPS --type I32 --variants read,write --units ops`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			et, variants, err := a.layoutFlags(cmd)
			if err != nil {
				return err
			}
			format, err := formatFlag(cmd)
			if err != nil {
				return err
			}

			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			units, _ := cmd.Flags().GetString("units")

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			meta, err := store.Put(cmd.Context(), storage.DatasetMeta{
				Name:     name,
				Type:     et,
				Variants: variants,
				Units:    units,
			}, payload)
			if err != nil {
				a.logger.LogPut(cmd.Context(), "", 0, len(payload), 0, err)
				return err
			}
			a.logger.LogPut(cmd.Context(), meta.ID, meta.Layout.Rows, meta.Size, meta.StoredSize, nil)

			return outputMeta(cmd.OutOrStdout(), format, meta)
		},
	}

	addLayoutFlags(cmd)
	addFormatFlag(cmd)
	cmd.Flags().String("name", "", "Dataset name (default file name)")
	cmd.Flags().String("units", "", "Units of the values")
	return cmd
}
