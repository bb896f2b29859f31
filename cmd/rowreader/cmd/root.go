/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowreader/pkg/api"
	"github.com/ssargent/rowreader/pkg/config"
	"github.com/ssargent/rowreader/pkg/di"
	"github.com/ssargent/rowreader/pkg/logging"
	"github.com/ssargent/rowreader/pkg/storage"
)

var container *di.Container

// SetContainer injects the dependency container used by all commands
func SetContainer(c *di.Container) {
	container = c
}

// app carries the settings resolved by the root command
type app struct {
	cfg    *config.Config
	logger *logging.Logger
}

// NewRootCmd builds the rowreader command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "rowreader",
		Short: "Rowreader - decoder and store for binary row buffers",
		Long: `Rowreader decodes flat little-endian buffers of fixed-width rows. Every row
holds a 32-bit index followed by one 4-byte value (I32 or F32) per variant.

Buffers can be decoded directly, stored in a local dataset store and served
over a REST API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file (default "+config.GetDefaultConfigPath()+")")
	flags.StringP("data-dir", "d", "", "Data directory for the dataset store")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(
		newDecodeCmd(a),
		newEncodeCmd(a),
		newPutCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newInitCmd(a),
		newServeCmd(a),
	)

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// load resolves the configuration (file, then flags) and creates the logger
func (a *app) load(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else if explicit && cmd.Name() != "init" {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// openStore opens the dataset store through the dependency container
func (a *app) openStore() (api.ClosableStore, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	store, err := container.GetStorageFactory().CreateStorage(a.cfg.DataDir, storage.Compression(a.cfg.Storage.Compression))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}
