package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel orders log lines by severity; lines below the configured level
// are dropped.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// parseLogLevel is case-insensitive and falls back to info
func parseLogLevel(level string) LogLevel {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	for i, name := range levelNames {
		if name == level {
			return LogLevel(i)
		}
	}
	return LogLevelInfo
}

// Logger writes "genelab: LEVEL message" lines through a standard library
// logger.
type Logger struct {
	min  LogLevel
	out  *log.Logger
	exit func(code int)
}

// NewLogger logs to stderr.
func NewLogger(level string) *Logger {
	return newLoggerTo(os.Stderr, level)
}

func newLoggerTo(w io.Writer, level string) *Logger {
	return &Logger{
		min:  parseLogLevel(level),
		out:  log.New(w, "genelab: ", log.LstdFlags|log.Lmsgprefix),
		exit: os.Exit,
	}
}

func (l *Logger) logf(level LogLevel, format string, v []any) {
	if level < l.min {
		return
	}
	_ = l.out.Output(3, strings.ToUpper(level.String())+" "+fmt.Sprintf(format, v...))
}

func (l *Logger) Debugf(format string, v ...any) { l.logf(LogLevelDebug, format, v) }

func (l *Logger) Infof(format string, v ...any) { l.logf(LogLevelInfo, format, v) }

func (l *Logger) Warnf(format string, v ...any) { l.logf(LogLevelWarn, format, v) }

func (l *Logger) Errorf(format string, v ...any) { l.logf(LogLevelError, format, v) }

// Fatalf always logs, whatever the level, then exits with status 1.
func (l *Logger) Fatalf(format string, v ...any) {
	_ = l.out.Output(2, "FATAL "+fmt.Sprintf(format, v...))
	l.exit(1)
}
