/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/rowreader/pkg/config"
)

func newInitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with a generated API key",
		Long: `Create the rowreader configuration file with secure defaults and a
generated API key for the REST API.

Examples:
  rowreader init
  rowreader init --config ./rowreader.yaml --data-dir ./data
  rowreader init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}
			dataDir, _ := cmd.Flags().GetString("data-dir")
			force, _ := cmd.Flags().GetBool("force")
			cmd.SetOut(cmd.OutOrStdout())

			if config.ConfigExists(configPath) && !force {
				cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
				return nil
			}

			cfg, err := config.BootstrapConfig(configPath, dataDir)
			if err != nil {
				return err
			}
			a.logger.Info("configuration created", "path", configPath)

			cmd.Printf("✅ Configuration created at %s\n", configPath)
			cmd.Printf("Data directory: %s\n", cfg.DataDir)
			cmd.Printf("API key: %s\n", cfg.Security.APIKey)
			cmd.Printf("\nYou can now start the server with:\n")
			cmd.Printf("  rowreader serve --config %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	return cmd
}
