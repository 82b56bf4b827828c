package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with a small key/value API shared by the whole service.
type Logger struct {
	l *logrus.Logger
}

// NewLogger creates a Logger writing to stdout at info level.
func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return &Logger{l: l}
}

// SetLevel adjusts the log level from its config string ("debug", "info",
// "warn", "error"). Unknown values leave the level unchanged.
func (l *Logger) SetLevel(level string) {
	if parsed, err := logrus.ParseLevel(level); err == nil {
		l.l.SetLevel(parsed)
	}
}

// Debug logs a debug message with optional key/value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.l.WithFields(fields(args)).Debug(msg)
}

// Info logs an informational message with optional key/value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.l.WithFields(fields(args)).Info(msg)
}

// Warn logs a warning message with optional key/value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.l.WithFields(fields(args)).Warn(msg)
}

// Error logs an error message with optional key/value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.l.WithFields(fields(args)).Error(msg)
}

// fields converts alternating key/value args into logrus fields. A trailing
// key without a value is kept with a nil value rather than dropped.
func fields(args []any) logrus.Fields {
	f := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if i+1 < len(args) {
			f[key] = args[i+1]
		} else {
			f[key] = nil
		}
	}
	return f
}
