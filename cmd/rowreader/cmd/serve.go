/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowreader/pkg/api"
	"github.com/ssargent/rowreader/pkg/codec"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the rowreader REST API server. Settings come from the configuration
file and can be overridden with flags.

Examples:
  rowreader serve
  rowreader serve --port 9000 --bind 0.0.0.0
  rowreader serve --api-key mysecretkey --data-dir ./data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("bind") {
				cfg.Bind, _ = cmd.Flags().GetString("bind")
			}
			if cmd.Flags().Changed("api-key") {
				cfg.Security.APIKey, _ = cmd.Flags().GetString("api-key")
			}
			if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
				return fmt.Errorf("no API key configured (run 'rowreader init' or pass --api-key)")
			}

			defaultType, err := codec.ParseElementType(cfg.Decoder.DefaultType)
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("starting server", "bind", cfg.Bind, "port", cfg.Port, "data_dir", cfg.DataDir)

			starter := container.GetServerFactory().CreateServerStarter()
			return starter.StartServer(ctx, store, api.ServerConfig{
				Port:         cfg.Port,
				Bind:         cfg.Bind,
				APIKey:       cfg.Security.APIKey,
				DefaultType:  defaultType,
				MaxBodyBytes: cfg.Decoder.MaxBodyBytes,
				CacheBytes:   cfg.Cache.MaxBytes,
			}, a.logger)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	cmd.Flags().String("api-key", "", "API key for client authentication")
	return cmd
}
