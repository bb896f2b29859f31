package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/rowreader/pkg/storage"
)

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatFlag(cmd)
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			name, _ := cmd.Flags().GetString("name")
			var metas []storage.DatasetMeta
			if name != "" {
				metas, err = store.FindByName(cmd.Context(), name)
			} else {
				metas, err = store.List(cmd.Context())
			}
			if err != nil {
				return err
			}
			return outputMetas(cmd.OutOrStdout(), format, metas)
		},
	}

	cmd.Flags().String("name", "", "Only list datasets with this name")
	addFormatFlag(cmd)
	return cmd
}
