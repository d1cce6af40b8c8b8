package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumenstudy/lumen/internal/config"
	"github.com/lumenstudy/lumen/internal/home"
	"github.com/lumenstudy/lumen/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Lumen server",
	Long: `Start the Lumen HTTP server.

The server provides:
  - /health                  - Server health check
  - /api/documents/*         - Upload, list and process documents
  - /api/progress/*          - Per-user processing progress

Examples:
  lumen serve                    # Start on default port 8080
  lumen serve --port 3000        # Start on custom port
  lumen serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Load configuration with hot reload
		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()

		c := cfgMgr.Get()
		host := serveHost
		if !cmd.Flags().Changed("host") && c.Server.Host != "" {
			host = c.Server.Host
		}
		port := servePort
		if !cmd.Flags().Changed("port") && c.Server.Port != "" {
			port = c.Server.Port
		}

		// Create server
		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			ConfigManager: cfgMgr,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
