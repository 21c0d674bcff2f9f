// Package logging provides leveled console output for the review
// synchronization client. The review snapshot is the source of truth for
// state; this package only provides real-time visibility into fetches,
// mutations, and recovery actions.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ParseLevel maps a config string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides structured logging to a writer (default stdout).
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Review sync logging methods ---
// Called by the coordinator around fetches and mutations. Metrics fetch
// failures are logged here and nowhere else; they never reach the user.

// FetchStart logs the start of an asynchronous fetch.
func (l *Logger) FetchStart(kind string, fetchID uint64) {
	l.Debug("fetch_start", map[string]interface{}{
		"kind":     kind,
		"fetch_id": fetchID,
	})
}

// FetchComplete logs the outcome of an asynchronous fetch.
func (l *Logger) FetchComplete(kind string, fetchID uint64, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"kind":     kind,
		"fetch_id": fetchID,
		"duration": duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Warn("fetch_error", fields)
	} else {
		l.Debug("fetch_complete", fields)
	}
}

// Superseded logs a cluster response dropped by the fetch-id guard.
func (l *Logger) Superseded(fetchID, lastAccepted uint64) {
	l.Debug("fetch_superseded", map[string]interface{}{
		"fetch_id":      fetchID,
		"last_accepted": lastAccepted,
	})
}

// MetricsFailure logs a swallowed metrics fetch failure.
func (l *Logger) MetricsFailure(err error) {
	l.Warn("metrics_fetch_failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// MutationFailure logs a failed review status mutation and the recovery
// action taken.
func (l *Logger) MutationFailure(taskID int64, security bool, err error) {
	l.Error("review_update_failed", map[string]interface{}{
		"task":     taskID,
		"security": security,
		"error":    err.Error(),
		"recovery": "corrective_refetch",
	})
}

// RefetchFailure logs a corrective refetch that itself failed. The local
// value may remain inconsistent until the next successful fetch.
func (l *Logger) RefetchFailure(taskID int64, err error) {
	l.Warn("corrective_refetch_failed", map[string]interface{}{
		"task":  taskID,
		"error": err.Error(),
	})
}

// StaleBroadcast logs a staleness broadcast reaching the store.
func (l *Logger) StaleBroadcast(reason string) {
	l.Info("marked_stale", map[string]interface{}{
		"reason": reason,
	})
}
