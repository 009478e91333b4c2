package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/zoneorder/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve extraction over HTTP",
	Long: `Serve runs an HTTP server exposing the extraction pipeline.

Endpoints:
  GET  /health          liveness probe
  GET  /ready           readiness probe
  GET  /status          request counters as JSON
  POST /v1/structure    body is a PDF or a JSON/YAML dump; returns the structure
                        query: format, footer_margin, header_margin, no_image_text
  POST /v1/paragraphs   same input; returns the paragraphs as HTML

The server shuts down gracefully on SIGINT or SIGTERM.

Examples:
  zoneorder serve --listen-addr :9000
  curl --data-binary @report.pdf 'localhost:9000/v1/structure?format=yaml'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen-addr", ":8080", "HTTP listen address")
	serveCmd.Flags().Int("max-upload-mb", 64, "request body limit in MiB")
	serveCmd.Flags().Float64("footer-margin", 0, "default height excluded at the bottom of each page")
	serveCmd.Flags().Float64("header-margin", 0, "default height excluded at the top of each page")
	serveCmd.Flags().Bool("no-image-text", false, "ignore text lying on images by default")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	srv, err := server.New(&server.Config{
		Logger:         log,
		Addr:           cfg.ListenAddr,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Zones:          cfg.ZoneOptions(),
		Order:          cfg.OrderOptions(),
		HTMLLang:       cfg.HTMLLang,
	})
	if err != nil {
		return err
	}

	return srv.Run(context.Background())
}
