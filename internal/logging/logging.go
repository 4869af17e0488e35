// Package logging builds deck's structured logger. Output goes to a file so
// the dashboard keeps the terminal to itself.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/baiirun/deck/internal/config"
)

// Logger is a slog.Logger plus the file it writes to.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New opens (or creates) cfg.File for appending and returns a text logger at
// cfg.Level. An empty file path discards everything.
func New(cfg config.LogConfig) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.File == "" {
		return &Logger{Logger: newLogger(io.Discard, level)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{Logger: newLogger(f, level), file: f}, nil
}

// Discard returns a logger that writes nowhere.
func Discard() *Logger {
	return &Logger{Logger: newLogger(io.Discard, slog.LevelError)}
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).With("app", "deck")
}
