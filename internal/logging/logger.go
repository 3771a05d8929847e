// Package logging provides leveled, structured logging for fitaura.
//
// Initialize the logger once at startup:
//
//	logging.Initialize("info", map[string]string{"agent.*": "debug"})
//
// Then get a named logger per component:
//
//	logger := logging.GetLogger("orchestrator")
//	logger.Info("run finished in %s", elapsed)
//	logger.InfoWithFields("run finished",
//	    logging.Field("steps", 3),
//	    logging.Field("termination", "finished"),
//	)
//
// WithContext attaches a context; trace_id and span_id come from the active
// OpenTelemetry span (or the TraceIDKey/SpanIDKey values) and run_id from
// WithRunID.
//
// Per-package levels match logger names exactly ("agent.intent") or by
// prefix pattern ("agent.*"); the longest matching pattern wins. Reconfigure
// swaps the default level and the overrides at runtime; loggers obtained
// earlier pick up the change on their next call.
//
// Logger values are immutable and safe for concurrent use.
package logging

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
)

var (
	defaultLevel atomic.Int32
	// exitFunc is called by Fatal. Tests override it.
	exitFunc = os.Exit
)

func init() {
	defaultLevel.Store(int32(INFO))
}

// Initialize sets the default level and optional per-package overrides.
// An unrecognised default level falls back to INFO.
func Initialize(levelStr string, packageLevels ...map[string]string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		level = INFO
	}
	defaultLevel.Store(int32(level))

	if len(packageLevels) > 0 && packageLevels[0] != nil {
		return SetPackageLogLevels(packageLevels[0])
	}
	return nil
}

// Reconfigure validates and applies a new default level and override set in
// one step. Nothing changes if either is invalid.
func Reconfigure(levelStr string, packageLevels map[string]string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}
	if err := SetPackageLogLevels(packageLevels); err != nil {
		return err
	}
	defaultLevel.Store(int32(level))
	return nil
}

// DefaultLevel returns the current default level.
func DefaultLevel() LogLevel {
	return LogLevel(defaultLevel.Load())
}

// GetLogger returns a logger with the specified name
func GetLogger(name string) *Logger {
	return &Logger{
		name:   name,
		fields: make(map[string]interface{}),
	}
}

// Name returns the logger name.
func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) shouldLog(level LogLevel) bool {
	if pkgLevel := GetPackageLogLevel(l.name); pkgLevel != unset {
		return level >= pkgLevel
	}
	return level >= DefaultLevel()
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.logf(DEBUG, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.logf(INFO, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.logf(WARN, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.logf(ERROR, msg, args...)
}

// ErrorWithErr logs msg followed by err.
func (l *Logger) ErrorWithErr(msg string, err error, args ...interface{}) {
	l.logf(ERROR, msg+" - %v", append(args, err)...)
}

// Fatal logs a fatal message and exits the program with code 1
func (l *Logger) Fatal(msg string, args ...interface{}) {
	if l.shouldLog(FATAL) {
		l.logf(FATAL, msg, args...)
		exitFunc(1)
	}
}

// WithName returns a logger with a different name and no persistent fields.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{name: name, fields: make(map[string]interface{}), ctx: l.ctx}
}

// WithField adds a persistent field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(Field(key, value))
}

// WithFields adds persistent fields.
func (l *Logger) WithFields(fields ...LogField) *Logger {
	next := &Logger{name: l.name, fields: cloneFields(l.fields), ctx: l.ctx}
	for _, f := range fields {
		next.fields[f.Key] = f.Value
	}
	return next
}

// WithContext returns a logger that reads trace, span and run ids from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{name: l.name, fields: cloneFields(l.fields), ctx: ctx}
}

// DebugWithFields logs a debug message with structured fields
func (l *Logger) DebugWithFields(msg string, fields ...LogField) {
	l.logWithFields(DEBUG, msg, fields...)
}

// InfoWithFields logs an info message with structured fields
func (l *Logger) InfoWithFields(msg string, fields ...LogField) {
	l.logWithFields(INFO, msg, fields...)
}

// WarnWithFields logs a warning message with structured fields
func (l *Logger) WarnWithFields(msg string, fields ...LogField) {
	l.logWithFields(WARN, msg, fields...)
}

// ErrorWithFields logs an error message with structured fields
func (l *Logger) ErrorWithFields(msg string, fields ...LogField) {
	l.logWithFields(ERROR, msg, fields...)
}

func (l *Logger) logf(level LogLevel, msg string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.writeLog(level, msg, mergeFields(extractContextFields(l.ctx), l.fields, nil))
}

func (l *Logger) logWithFields(level LogLevel, msg string, fields ...LogField) {
	if !l.shouldLog(level) {
		return
	}
	l.writeLog(level, msg, mergeFields(extractContextFields(l.ctx), l.fields, fields))
}
