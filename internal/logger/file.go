package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileLogger writes resolution logs to timestamped files in a log directory
// and maintains a latest.log symlink pointing to the most recent run.
// It is thread-safe and satisfies Logger.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir with the given level.
// It creates the log directory if needed, opens run-YYYYMMDD-HHMMSS.log
// and points latest.log at it.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", stamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== seqtarget run log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// Path returns the run log file path
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) LogTrace(message string) { fl.logWithLevel("TRACE", message) }
func (fl *FileLogger) LogDebug(message string) { fl.logWithLevel("DEBUG", message) }
func (fl *FileLogger) LogInfo(message string)  { fl.logWithLevel("INFO", message) }
func (fl *FileLogger) LogWarn(message string)  { fl.logWithLevel("WARN", message) }
func (fl *FileLogger) LogError(message string) { fl.logWithLevel("ERROR", message) }

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !shouldLog(fl.logLevel, strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message))
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
	}
}
