package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Verbosity levels
const (
	LevelQuiet = iota // Default: only errors and warnings
	LevelInfo         // -v: logins, cache hits, counts
	LevelDebug        // -vv: API calls, cache operations, timing
	LevelTrace        // -vvv: full details
)

// Custom slog levels mapped to our verbosity
const (
	slogLevelTrace = slog.Level(-8) // Below debug
)

var (
	mu        sync.RWMutex
	verbosity int
	logger    *slog.Logger
)

// Initialize sets up the global logger with a text handler at the specified verbosity level
func Initialize(level int, w io.Writer) {
	install(level, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel(level)}))
}

// InitializeJSON sets up the global logger with a JSON handler, for
// machine-readable logs.
func InitializeJSON(level int, w io.Writer) {
	install(level, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(level)}))
}

func install(level int, h slog.Handler) {
	mu.Lock()
	defer mu.Unlock()
	verbosity = level
	logger = slog.New(h)
}

// slogLevel maps our verbosity to slog levels
func slogLevel(level int) slog.Level {
	switch {
	case level >= LevelTrace:
		return slogLevelTrace
	case level >= LevelDebug:
		return slog.LevelDebug
	case level >= LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func current() (*slog.Logger, int) {
	mu.RLock()
	defer mu.RUnlock()
	return logger, verbosity
}

// Info logs at info level (-v)
func Info(msg string, args ...any) {
	if l, v := current(); v >= LevelInfo {
		l.Info(msg, args...)
	}
}

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) {
	if l, v := current(); v >= LevelDebug {
		l.Debug(msg, args...)
	}
}

// Trace logs at trace level (-vvv)
func Trace(msg string, args ...any) {
	if l, v := current(); v >= LevelTrace {
		l.Log(context.Background(), slogLevelTrace, msg, args...)
	}
}

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) {
	l, _ := current()
	l.Warn(msg, args...)
}

// Error logs at error level (always visible)
func Error(msg string, args ...any) {
	l, _ := current()
	l.Error(msg, args...)
}

// IsInfo returns true if info-level logging is enabled
func IsInfo() bool {
	return Verbosity() >= LevelInfo
}

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool {
	return Verbosity() >= LevelDebug
}

// IsTrace returns true if trace-level logging is enabled
func IsTrace() bool {
	return Verbosity() >= LevelTrace
}

// Verbosity returns the current verbosity level
func Verbosity() int {
	_, v := current()
	return v
}

func init() {
	// Default initialization with quiet mode to stderr
	Initialize(LevelQuiet, os.Stderr)
}
