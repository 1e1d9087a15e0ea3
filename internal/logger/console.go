// Package logger provides levelled loggers for target resolution.
//
// Resolution degrades branch by branch: a missing directory, a flowcell
// without metadata or an oddly named read file is reported as a warning and
// the walk continues. The loggers here are that reporting channel.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is the levelled logging interface consumed by the resolution packages.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// ConsoleLogger logs to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is enabled when writing to a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		mutex:       sync.Mutex{},
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a TTY that supports colors.
// NO_COLOR is honoured through color.NoColor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if ValidLevel(normalized) {
		return normalized
	}
	return "info"
}

// ValidLevel reports whether level is one of trace, debug, info, warn, error.
func ValidLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog checks if a message at the given level passes the configured level.
func shouldLog(configured, messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(configured)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !shouldLog(cl.logLevel, strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// NopLogger discards every message.
type NopLogger struct{}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (NopLogger) LogTrace(string) {}
func (NopLogger) LogDebug(string) {}
func (NopLogger) LogInfo(string)  {}
func (NopLogger) LogWarn(string)  {}
func (NopLogger) LogError(string) {}

// MultiLogger fans each message out to several loggers.
type MultiLogger []Logger

func (m MultiLogger) LogTrace(message string) {
	for _, l := range m {
		l.LogTrace(message)
	}
}

func (m MultiLogger) LogDebug(message string) {
	for _, l := range m {
		l.LogDebug(message)
	}
}

func (m MultiLogger) LogInfo(message string) {
	for _, l := range m {
		l.LogInfo(message)
	}
}

func (m MultiLogger) LogWarn(message string) {
	for _, l := range m {
		l.LogWarn(message)
	}
}

func (m MultiLogger) LogError(message string) {
	for _, l := range m {
		l.LogError(message)
	}
}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
