// Package logging provides structured logging infrastructure for icecale.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level aliases for slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger wraps slog.Logger with icecale-specific configuration.
type Logger struct {
	*slog.Logger
	file     *os.File
	filePath string
}

// Config contains logger configuration options.
type Config struct {
	Level   slog.Level
	Output  io.Writer
	Enabled bool
}

// DefaultConfig returns a default logger configuration.
// Output is discarded: stderr is reserved for the CLI diagnostic line.
func DefaultConfig() Config {
	return Config{
		Level:   LevelInfo,
		Output:  io.Discard,
		Enabled: false,
	}
}

// New creates a new logger with the given configuration.
func New(cfg Config) *Logger {
	if !cfg.Enabled || cfg.Output == nil {
		return &Logger{
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		}
	}

	handler := slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{
		Level: cfg.Level,
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Setup creates a logger that writes to a timestamped log file in logDir.
// An empty logDir yields a logger that discards everything.
func Setup(logDir string, verbose bool) (*Logger, error) {
	if logDir == "" {
		return New(DefaultConfig()), nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filePath := filepath.Join(logDir, fmt.Sprintf("icecale_run_%s.log", timestamp))

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	l := New(Config{Level: level, Output: file, Enabled: true})
	l.file = file
	l.filePath = filePath

	l.Info("icecale starting", "log_file", filePath, "debug", verbose)
	return l, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FilePath returns the path to the log file.
func (l *Logger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// WithComponent returns a logger that tags every record with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.With("component", name), file: l.file, filePath: l.filePath}
}

// WithRun returns a logger that tags every record with the run id.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{Logger: l.With("run_id", id), file: l.file, filePath: l.filePath}
}

// Global logger instance.
var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Global returns the global logger instance.
func Global() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = New(DefaultConfig())
	}
	return globalLogger
}

// SetGlobal sets the global logger instance.
func SetGlobal(logger *Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// OrGlobal returns l, or the global logger when l is nil.
func OrGlobal(l *Logger) *Logger {
	if l != nil {
		return l
	}
	return Global()
}
