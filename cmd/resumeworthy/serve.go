package main

import (
	"github.com/spf13/cobra"

	"github.com/Julien-ser/ResumeWorthy/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ResumeWorthy server",
	Long: `Start the ResumeWorthy HTTP server.

The block store is chosen by store.driver in the config. With the defra
driver and no store.defra.url, a DefraDB container is started first and
stopped again when the server shuts down (Ctrl+C or SIGTERM).

The config file is watched: provider changes take effect without a restart.

Examples:
  resumeworthy serve
  resumeworthy serve --config ./config.yaml
  RESUMEWORTHY_SERVER_PORT=3001 resumeworthy serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		h, err := getHome()
		if err != nil {
			return err
		}
		cm, err := loadConfig(h)
		if err != nil {
			return err
		}
		if f := cm.ConfigFile(); f != "" {
			logger.Info("using config file", "path", f)
			cm.WatchConfig()
		}

		srv, err := server.New(server.Config{
			ConfigManager: cm,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
