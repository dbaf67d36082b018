// Package logger configures the process-wide zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FormatConsole selects the human-readable encoder; any other format is JSON.
const FormatConsole = "console"

// Options selects the level and encoding of the process logger.
type Options struct {
	Level  string
	Format string
}

// New builds a logger writing to stderr, leaving stdout to CSV and JSON
// output. Unknown levels fall back to info.
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var cfg zap.Config
	if opts.Format == FormatConsole {
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
		cfg.DisableStacktrace = true
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build(zap.Fields(zap.String("app", "eod-ledger")))
}

// Setup installs a logger built from opts as zap's global logger. The
// returned func flushes it.
func Setup(opts Options) (func(), error) {
	l, err := New(opts)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return func() { _ = l.Sync() }, nil
}

// Get returns the global logger, a no-op logger until Setup runs.
func Get() *zap.Logger {
	return zap.L()
}
