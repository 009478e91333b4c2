// Package logger provides structured logging functionality using zap.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger to provide structured logging throughout the application
type Logger struct {
	*zap.SugaredLogger
	config *Config
}

// Config holds logger configuration options
type Config struct {
	// Level is the minimum log level to output (debug, info, warn, error)
	Level string

	// Format determines output format: "console" (human-readable) or "json" (machine-parseable)
	Format string

	// OutputPath is an additional file that receives every log entry (empty = stderr only)
	OutputPath string

	// EnableCaller adds caller information to log entries
	EnableCaller bool

	// EnableStacktrace adds stack traces to error-level logs
	EnableStacktrace bool

	// Writer overrides stderr as the primary destination (used by tests)
	Writer io.Writer
}

var (
	// defaultLogger is the global logger instance
	defaultLogger *Logger
)

// New creates a new logger instance with the provided configuration
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = &Config{
			Level:            "info",
			Format:           "console",
			EnableStacktrace: true,
		}
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	sink, err := sinks(cfg)
	if err != nil {
		return nil, err
	}

	opts := []zap.Option{}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), sink, level)
	return &Logger{
		SugaredLogger: zap.New(core, opts...).Sugar(),
		config:        cfg,
	}, nil
}

// newEncoder returns the JSON encoder for "json" and a colored console encoder otherwise
func newEncoder(format string) zapcore.Encoder {
	if format == "json" {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// sinks combines the primary writer (stderr unless overridden) with the
// optional log file. Stdout is never written, it may carry a document.
func sinks(cfg *Config) (zapcore.WriteSyncer, error) {
	var primary io.Writer = os.Stderr
	if cfg.Writer != nil {
		primary = cfg.Writer
	}
	out := []zapcore.WriteSyncer{zapcore.AddSync(primary)}

	if cfg.OutputPath != "" {
		file, err := os.OpenFile(cfg.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.OutputPath, err)
		}
		out = append(out, zapcore.AddSync(file))
	}

	return zapcore.NewMultiWriteSyncer(out...), nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{
		SugaredLogger: zap.NewNop().Sugar(),
		config:        &Config{Level: "error", Format: "console"},
	}
}

// Init initializes the global logger instance
func Init(cfg *Config) error {
	logger, err := New(cfg)
	if err != nil {
		return err
	}
	defaultLogger = logger
	return nil
}

// Get returns the global logger instance
func Get() *Logger {
	if defaultLogger == nil {
		logger, _ := New(nil)
		defaultLogger = logger
	}
	return defaultLogger
}

// WithFields returns a logger with the specified fields attached for structured logging
func (l *Logger) WithFields(fields ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.With(fields...),
		config:        l.config,
	}
}

// WithRunID returns a logger with run_id field attached
func (l *Logger) WithRunID(runID string) *Logger {
	return l.WithFields("run_id", runID)
}

// WithPage returns a logger with page field attached
func (l *Logger) WithPage(page int) *Logger {
	return l.WithFields("page", page)
}

// WithRequestID returns a logger with request_id field attached
func (l *Logger) WithRequestID(id string) *Logger {
	return l.WithFields("request_id", id)
}

// WithInput returns a logger with input field attached
func (l *Logger) WithInput(path string) *Logger {
	return l.WithFields("input", path)
}

// WithOperation returns a logger with operation field attached
func (l *Logger) WithOperation(operation string) *Logger {
	return l.WithFields("operation", operation)
}

// WithError returns a logger with error field attached
func (l *Logger) WithError(err error) *Logger {
	return l.WithFields("error", err)
}

// parseLevel converts a string log level to zapcore.Level
func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", level)
	}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.SugaredLogger.Sync()
}
