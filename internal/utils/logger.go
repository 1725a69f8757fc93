package utils

import (
	"io"
	"log"
	"os"
)

type Logger struct {
	*log.Logger
	level string
}

func NewLogger(level string) *Logger {
	return &Logger{Logger: log.New(os.Stderr, "", log.LstdFlags), level: level}
}

// NewLoggerTo writes to an explicit sink. The TUI redirects logs to a
// file so they don't fight the alternate screen.
func NewLoggerTo(w io.Writer, level string) *Logger {
	return &Logger{Logger: log.New(w, "", log.LstdFlags), level: level}
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.level == "debug" {
		l.Printf("DEBUG: "+format, args...)
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.Printf("INFO: "+format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.Printf("WARN: "+format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.Printf("ERROR: "+format, args...)
}
