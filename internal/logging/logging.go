// Package logging builds the file-backed logger shared by stockpulse
// components. The terminal belongs to the UI, so nothing is written to stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"
)

const (
	maxLogSize    = 10 * 1024 * 1024
	maxLogBackups = 3
)

// Options control logger construction.
type Options struct {
	Path  string
	Level string
}

// New returns a logger writing JSON lines to opts.Path.
func New(opts Options) (*log.Logger, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &log.Logger{
		Level:  ParseLevel(opts.Level),
		Writer: &log.FileWriter{
			Filename:   path,
			FileMode:   0o644,
			MaxSize:    maxLogSize,
			MaxBackups: maxLogBackups,
		},
	}, nil
}

// NewWriter returns a logger writing to w. Tests use it to capture output.
func NewWriter(w io.Writer, level string) *log.Logger {
	return &log.Logger{
		Level:  ParseLevel(level),
		Writer: log.IOWriter{Writer: w},
	}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: log.IOWriter{Writer: io.Discard},
	}
}

// OrDiscard returns logger, or a discarding logger when nil.
func OrDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}

// ParseLevel maps a config string to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
