// Package logger provides the leveled console and file logging used by the
// routedoc pipeline.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger writes INFO and above to the console, DEBUG as well when verbose,
// and every level to the optional log file. A nil *Logger discards.
type Logger struct {
	mu       sync.Mutex
	console  *log.Logger
	file     *log.Logger
	logFile  *os.File
	verbose  bool
	minLevel Level
}

// New returns a console-only logger.
func New(console io.Writer, verbose bool) *Logger {
	if console == nil {
		console = io.Discard
	}
	minLevel := LevelInfo
	if verbose {
		minLevel = LevelDebug
	}
	return &Logger{
		console:  log.New(console, "", 0),
		verbose:  verbose,
		minLevel: minLevel,
	}
}

// Open returns a logger that also appends to logFilePath, creating its
// directory when missing.
func Open(console io.Writer, logFilePath string, verbose bool) (*Logger, error) {
	l := New(console, verbose)
	if logFilePath == "" {
		return l, nil
	}
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l.logFile = f
	l.file = log.New(f, "", log.LstdFlags)
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger { return New(io.Discard, false) }

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.logFile == nil {
		return nil
	}
	return l.logFile.Close()
}

// Verbose reports whether DEBUG messages reach the console.
func (l *Logger) Verbose() bool { return l != nil && l.verbose }

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

func (l *Logger) log(level Level, format string, args ...any) {
	if l == nil {
		return
	}
	message := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Printf("[%s] %s", level, message)
	}
	if level < l.minLevel {
		return
	}
	switch level {
	case LevelDebug:
		l.console.Printf("[DEBUG] %s", message)
	case LevelInfo:
		l.console.Printf("%s", message)
	case LevelWarn:
		l.console.Printf("WARN: %s", message)
	case LevelError:
		l.console.Printf("ERROR: %s", message)
	}
}

var (
	defaultMu sync.RWMutex
	std       = Discard()
)

// SetDefault replaces the package default logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	std = l
}

// Default returns the package default logger, which discards until
// SetDefault is called.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return std
}
