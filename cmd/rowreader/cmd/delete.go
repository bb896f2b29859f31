package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored dataset",
		Long: `Delete a dataset from the local dataset store.

Example:
  rowreader delete 2ZWbt0Zn5vmSKyDsTHOcLVtx3Xm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			err = store.Delete(cmd.Context(), args[0])
			a.logger.LogDelete(cmd.Context(), args[0], err)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted dataset %s\n", args[0])
			return nil
		},
	}
}
