package main

import (
	"github.com/openmined/healthview/internal/viewer"
	"github.com/openmined/healthview/internal/webview"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the health status as a web page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, closeLog, err := setupLogging(cmd, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			v := viewer.New(client, viewer.WithLogger(logger))
			logger.Info("serving health status", "target", cfg.HealthURL())

			return webview.New(&webview.Config{Addr: addr}, v, logger).Start(cmd.Context())
		},
	}

	serveCmd.Flags().StringVarP(&addr, "addr", "a", webview.DefaultAddr, "address to listen on")

	return serveCmd
}
