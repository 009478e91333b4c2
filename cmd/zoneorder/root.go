package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/zoneorder/internal/config"
	"github.com/platinummonkey/zoneorder/internal/logger"
	"github.com/platinummonkey/zoneorder/internal/textsrc"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "zoneorder",
	Short: "Recover the reading order of PDF pages",
	Long: `zoneorder splits each page of a document into rectangular zones,
orders the zones for reading (headings first, then their columns
interleaved) and assigns every text block to the zone that contains it.

Input is a PDF or a JSON/YAML page dump. The result is a structure file
that lists, per page, the numbered zones with their blocks, lines and
spans. Blocks that fit no zone are collected in zone 0.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags; names match the configuration keys
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.zoneorder.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file")
}

// setup loads configuration for cmd (flags > env > file > defaults) and
// returns a logger tagged with a fresh run id
func setup(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.Get().WithRunID(uuid.NewString()).WithOperation(cmd.Name())

	if err := textsrc.SetLicenseKey(cfg.UnidocLicenseKey); err != nil {
		return nil, nil, err
	}

	log.Debug(cfg.String())
	return cfg, log, nil
}
