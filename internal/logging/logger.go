// Package logging provides the leveled logger used across vibescan.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Level represents a logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lowercase level name
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel converts a level name into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger writes leveled messages through a standard library logger.
// A nil *Logger discards everything.
type Logger struct {
	level Level
	out   *log.Logger
}

// New creates a logger writing to w at the given level
func New(w io.Writer, level Level, timestamps bool) *Logger {
	flags := 0
	if timestamps {
		flags = log.LstdFlags
	}
	return &Logger{
		level: level,
		out:   log.New(w, "", flags),
	}
}

// Discard returns a logger that writes nothing
func Discard() *Logger {
	return New(io.Discard, LevelError+1, false)
}

// Level returns the configured level
func (l *Logger) Level() Level {
	if l == nil {
		return LevelError + 1
	}
	return l.level
}

// Enabled reports whether messages at level would be written
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= l.level
}

// Debugf logs a debug message
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, "DEBUG", format, args...)
}

// Infof logs an info message
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, "INFO", format, args...)
}

// Warnf logs a warning message
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, "WARN", format, args...)
}

// Errorf logs an error message
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, "ERROR", format, args...)
}

func (l *Logger) logf(level Level, tag, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.out.Print("[" + tag + "] " + msg)
}
