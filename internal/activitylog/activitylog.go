// Package activitylog appends human-readable lines describing significant
// repository actions to a text file. It is a side channel: write failures are
// reported through slog and never returned to the caller.
package activitylog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

type Logger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// New returns a logger appending to path. An empty path disables the file
// and keeps only the slog mirror.
func New(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// WithClock replaces the timestamp source.
func (l *Logger) WithClock(now func() time.Time) *Logger {
	l.now = now
	return l
}

func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Write appends "[YYYY-MM-DD HH:MM:SS] message" to the log file.
func (l *Logger) Write(message string) {
	if l == nil {
		return
	}
	slog.Info("activity", "message", message)
	if l.path == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%s] %s\n", l.now().Format(timestampLayout), message)
	if err := l.appendLine(line); err != nil {
		slog.Error("activity log write failed", "path", l.path, "error", err)
	}
}

// Writef formats according to a format specifier and writes the result.
func (l *Logger) Writef(format string, args ...any) {
	l.Write(fmt.Sprintf(format, args...))
}

func (l *Logger) appendLine(line string) error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
