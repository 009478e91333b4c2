// Package config provides configuration management for zoneorder.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/platinummonkey/zoneorder/internal/logger"
	"github.com/platinummonkey/zoneorder/internal/readingorder"
	"github.com/platinummonkey/zoneorder/internal/zones"
)

// EnvPrefix is the prefix of environment variables read by Load
const EnvPrefix = "ZONEORDER"

// Config holds all configuration settings for zoneorder.
// Configuration precedence: CLI flags > Environment variables > Config file > Defaults
type Config struct {
	// FooterMargin is the page height excluded at the bottom during zone detection
	FooterMargin float64

	// HeaderMargin is the page height excluded at the top during zone detection
	HeaderMargin float64

	// NoImageText ignores text lying on images during zone detection
	NoImageText bool

	// WideRatio is the width/page-width ratio above which a zone is a heading
	WideRatio float64

	// ColumnGap is the left-edge distance that separates two columns
	ColumnGap float64

	// Format is the structure encoding (json or yaml)
	Format string

	// LogLevel controls logging verbosity (debug, info, warn, error)
	LogLevel string

	// LogFormat selects the log encoder (console or json)
	LogFormat string

	// LogFile optionally copies every log entry to a file
	LogFile string

	// ListenAddr is the HTTP service address
	ListenAddr string

	// MaxUploadMB limits HTTP request bodies
	MaxUploadMB int

	// HTMLLang is the lang attribute of generated paragraph pages
	HTMLLang string

	// UnidocLicenseKey is the metered unipdf key used for PDF text extraction
	UnidocLicenseKey string
}

// Load reads configuration from multiple sources and returns a Config instance.
// Flags in the given set (may be nil) override every other source when set.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set up config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Look for config in home directory
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
			v.SetConfigName(".zoneorder")
			v.SetConfigType("yaml")
		}
	}

	// Read config file if it exists (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	config := &Config{
		FooterMargin:     v.GetFloat64("footer-margin"),
		HeaderMargin:     v.GetFloat64("header-margin"),
		NoImageText:      v.GetBool("no-image-text"),
		WideRatio:        v.GetFloat64("wide-ratio"),
		ColumnGap:        v.GetFloat64("column-gap"),
		Format:           v.GetString("format"),
		LogLevel:         v.GetString("log-level"),
		LogFormat:        v.GetString("log-format"),
		LogFile:          v.GetString("log-file"),
		ListenAddr:       v.GetString("listen-addr"),
		MaxUploadMB:      v.GetInt("max-upload-mb"),
		HTMLLang:         v.GetString("html-lang"),
		UnidocLicenseKey: v.GetString("unidoc-license-key"),
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("footer-margin", 0.0)
	v.SetDefault("header-margin", 0.0)
	v.SetDefault("no-image-text", false)
	v.SetDefault("wide-ratio", readingorder.DefaultWideRatio)
	v.SetDefault("column-gap", readingorder.DefaultColumnGap)
	v.SetDefault("format", "json")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "console")
	v.SetDefault("log-file", "")
	v.SetDefault("listen-addr", ":8080")
	v.SetDefault("max-upload-mb", 64)
	v.SetDefault("html-lang", "")
	v.SetDefault("unidoc-license-key", "")
}

// Validate checks that the configuration is valid and internally consistent
func (c *Config) Validate() error {
	if c.FooterMargin < 0 {
		return fmt.Errorf("footer-margin must be non-negative, got %g", c.FooterMargin)
	}
	if c.HeaderMargin < 0 {
		return fmt.Errorf("header-margin must be non-negative, got %g", c.HeaderMargin)
	}

	if c.WideRatio <= 0 || c.WideRatio > 1 {
		return fmt.Errorf("wide-ratio must be in (0, 1], got %g", c.WideRatio)
	}
	if c.ColumnGap < 0 {
		return fmt.Errorf("column-gap must be non-negative, got %g", c.ColumnGap)
	}

	switch strings.ToLower(c.Format) {
	case "json":
		c.Format = "json"
	case "yaml", "yml":
		c.Format = "yaml"
	default:
		return fmt.Errorf("invalid format %q, must be one of: json, yaml", c.Format)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log-level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log-format %q, must be one of: console, json", c.LogFormat)
	}

	if c.ListenAddr == "" {
		return fmt.Errorf("listen-addr cannot be empty")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max-upload-mb must be positive, got %d", c.MaxUploadMB)
	}

	return nil
}

// ZoneOptions returns the zone detector options
func (c *Config) ZoneOptions() zones.Options {
	return zones.Options{
		FooterMargin: c.FooterMargin,
		HeaderMargin: c.HeaderMargin,
		NoImageText:  c.NoImageText,
	}
}

// OrderOptions returns the reading order options
func (c *Config) OrderOptions() readingorder.Options {
	return readingorder.Options{
		WideRatio: c.WideRatio,
		ColumnGap: c.ColumnGap,
	}
}

// LoggerConfig returns the logger settings
func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		OutputPath: c.LogFile,
	}
}

// MaxUploadBytes returns the request body limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// String returns a string representation of the configuration (with sensitive data redacted)
func (c *Config) String() string {
	licenseKey := "not set"
	if c.UnidocLicenseKey != "" {
		if len(c.UnidocLicenseKey) > 8 {
			licenseKey = "***" + c.UnidocLicenseKey[len(c.UnidocLicenseKey)-4:]
		} else {
			licenseKey = "***"
		}
	}

	return fmt.Sprintf(`Configuration:
  FooterMargin: %g
  HeaderMargin: %g
  NoImageText: %t
  WideRatio: %g
  ColumnGap: %g
  Format: %s
  LogLevel: %s
  LogFormat: %s
  LogFile: %s
  ListenAddr: %s
  MaxUploadMB: %d
  HTMLLang: %s
  UnidocLicenseKey: %s`,
		c.FooterMargin,
		c.HeaderMargin,
		c.NoImageText,
		c.WideRatio,
		c.ColumnGap,
		c.Format,
		c.LogLevel,
		c.LogFormat,
		c.LogFile,
		c.ListenAddr,
		c.MaxUploadMB,
		c.HTMLLang,
		licenseKey,
	)
}
