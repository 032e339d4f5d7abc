package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"hirepath/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local dashboard bridge",
	Long: `Serve the local HTTP bridge for a dashboard front end. The bridge exposes
the cached stores under /api/v1 and pushes notifications over the
websocket at /ws/notifications. It listens on 127.0.0.1 unless HTTP_PORT
names an explicit host.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "override HTTP_PORT")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.App.HTTPPort = port
	}
	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	bootstrap, cleanup, err := app.Bootstrap(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Printf("[App] cleanup error: %v", err)
		}
	}()

	logger.Printf("[App] %s (%s) session=%s", cfg.App.AppName, cfg.App.Environment, bootstrap.Container.Session.State())
	return bootstrap.Serve(cmd.Context(), addr)
}
