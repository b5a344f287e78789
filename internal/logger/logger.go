// Package logger builds the zap logger shared by the loader, the sinks and
// the CLI. Progress rows own stdout, so logs default to stderr.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/snbloader/internal/config"
)

// Logger is a sugared zap logger with helpers for the loader's context keys.
type Logger struct {
	*zap.SugaredLogger
	base *zap.Logger
}

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// New builds a Logger from the logging section of the config. Output is
// "stdout", "stderr" or a file path; a file also mirrors to stderr.
func New(cfg *config.LoggingConfig) (*Logger, error) {
	sink, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(newEncoder(cfg.Format), sink, parseLevel(cfg.Level))
	return wrap(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))), nil
}

// NewDefault logs text at info level to stderr.
func NewDefault() *Logger {
	l, _ := New(&config.LoggingConfig{Level: "info", Format: "text", Output: "stderr"})
	return l
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return wrap(zap.NewNop())
}

func wrap(base *zap.Logger) *Logger {
	return &Logger{SugaredLogger: base.Sugar(), base: base}
}

// parseLevel falls back to info; config validation rejects unknown names.
func parseLevel(name string) zapcore.Level {
	if lvl, ok := levels[name]; ok {
		return lvl
	}
	return zapcore.InfoLevel
}

func newEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.SecondsDurationEncoder

	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

func openOutput(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "", "stderr":
		return zapcore.Lock(os.Stderr), nil
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return zapcore.NewMultiWriteSyncer(zapcore.AddSync(f), zapcore.Lock(os.Stderr)), nil
}

func (l *Logger) with(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...), base: l.base}
}

// WithRun tags entries with the load run id.
func (l *Logger) WithRun(runID string) *Logger { return l.with("run", runID) }

// WithWorker tags entries with a worker's global rank.
func (l *Logger) WithWorker(rank int) *Logger { return l.with("worker", rank) }

// WithFile tags entries with an input file path.
func (l *Logger) WithFile(path string) *Logger { return l.with("file", path) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
