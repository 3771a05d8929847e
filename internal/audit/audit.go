// Package audit records orchestration runs to a JSONL file for debugging,
// analysis and replay. Each line is one Record.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/moolen/fitaura/internal/agent"
	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/orchestrator"
)

// Record is a single audit log line.
type Record struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	RunID     string                 `json:"run_id"`
	UserID    string                 `json:"user_id,omitempty"`
	Step      int                    `json:"step,omitempty"`
	Agent     string                 `json:"agent,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Logger writes run events as JSONL. It implements orchestrator.Observer.
type Logger struct {
	closer io.Closer
	writer *bufio.Writer
	mutex  sync.Mutex
	redact bool
	logger *logging.Logger
}

// Option configures a Logger.
type Option func(*Logger)

// WithRedaction replaces message, specialist and answer text with their
// lengths.
func WithRedaction() Option {
	return func(l *Logger) { l.redact = true }
}

// NewLogger opens filePath for appending, creating parent directories.
func NewLogger(filePath string, opts ...Option) (*Logger, error) {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}
	// #nosec G304 -- Audit log path is intentionally configurable by user
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	return NewWriter(file, opts...), nil
}

// NewWriter writes records to w. If w is an io.Closer, Close closes it.
func NewWriter(w io.Writer, opts ...Option) *Logger {
	l := &Logger{
		writer: bufio.NewWriter(w),
		logger: logging.GetLogger("audit"),
	}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Write appends one record and flushes it.
func (l *Logger) Write(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, err := l.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	// Flush per record so a crash loses at most the line being written.
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush audit log: %w", err)
	}
	return nil
}

// OnEvent implements orchestrator.Observer.
func (l *Logger) OnEvent(ctx context.Context, ev orchestrator.Event) {
	if err := l.Write(l.record(ev)); err != nil {
		l.logger.WithContext(ctx).Warn("Dropping audit record %s: %v", ev.Type, err)
	}
}

func (l *Logger) record(ev orchestrator.Event) Record {
	rec := Record{
		Timestamp: ev.Time,
		Type:      string(ev.Type),
		RunID:     ev.RunID,
		UserID:    ev.UserID,
		Step:      ev.Step,
	}
	if ev.Agent != agent.Unknown {
		rec.Agent = ev.Agent.String()
	}

	data := map[string]interface{}{}
	switch ev.Type {
	case orchestrator.EventRunStarted:
		l.putText(data, "message", ev.Text)
	case orchestrator.EventIntentClassified:
		data["in_domain"] = ev.InDomain
		if ev.Category != "" {
			data["category"] = ev.Category
		}
	case orchestrator.EventSupervisorDecision:
		if ev.Agent == agent.Unknown {
			data["unknown_agent"] = ev.Text
		}
	case orchestrator.EventAgentCompleted:
		l.putText(data, "output", ev.Text)
		data["duration_ms"] = ev.Duration.Milliseconds()
	case orchestrator.EventRunCompleted:
		l.putText(data, "answer", ev.Text)
		data["termination"] = string(ev.Termination)
		data["agents_used"] = agent.Names(ev.AgentsUsed)
		data["in_domain"] = ev.InDomain
		data["duration_ms"] = ev.Duration.Milliseconds()
	case orchestrator.EventRunFailed:
		if ev.Err != nil {
			data["error"] = ev.Err.Error()
		}
		data["duration_ms"] = ev.Duration.Milliseconds()
	}
	if len(data) > 0 {
		rec.Data = data
	}
	return rec
}

func (l *Logger) putText(data map[string]interface{}, key, text string) {
	if l.redact {
		data[key+"_chars"] = len(text)
		return
	}
	data[key] = text
}

// Close flushes pending data and closes the underlying file.
func (l *Logger) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush audit log: %w", err)
	}
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// ReadRecords parses every record from a JSONL audit file.
func ReadRecords(filePath string) ([]Record, error) {
	// #nosec G304 -- reading back the configured audit log
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("failed to parse audit line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return records, nil
}
