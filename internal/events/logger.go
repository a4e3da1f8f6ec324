package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Dicklesworthstone/shellpool/internal/util"
)

const (
	// DefaultLogPath is the default location for the events log.
	DefaultLogPath = "~/.config/shellpool/events.jsonl"

	// DefaultRetentionDays is the number of days to retain log entries.
	DefaultRetentionDays = 14

	// rotationCheckInterval is how often to check for rotation (in events).
	rotationCheckInterval = 100
)

// logRecord is the on-disk shape of one event. Kind-specific fields are
// flattened into Data to keep the JSONL schema stable across event types.
type logRecord struct {
	Kind      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Session   int            `json:"session"`
	Data      map[string]any `json:"data,omitempty"`
}

// Logger writes events to a JSONL file with retention-based rotation.
type Logger struct {
	path          string
	retentionDays int
	enabled       bool

	mu           sync.Mutex
	file         *os.File
	eventCount   int
	lastRotation time.Time
}

// LoggerOptions configures the event logger.
type LoggerOptions struct {
	Path          string
	RetentionDays int
	Enabled       bool
}

// DefaultLoggerOptions returns the default logger options.
func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		Path:          util.ExpandPath(DefaultLogPath),
		RetentionDays: DefaultRetentionDays,
		Enabled:       true,
	}
}

// NewLogger creates an event logger. A disabled logger accepts and discards
// events.
func NewLogger(opts LoggerOptions) (*Logger, error) {
	if opts.Path == "" {
		opts.Path = util.ExpandPath(DefaultLogPath)
	}
	if opts.RetentionDays == 0 {
		opts.RetentionDays = DefaultRetentionDays
	}

	l := &Logger{
		path:          opts.Path,
		retentionDays: opts.RetentionDays,
		enabled:       opts.Enabled,
		lastRotation:  time.Now(),
	}
	if !l.enabled {
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l.file = f
	return l, nil
}

// Log writes one event to the log file.
func (l *Logger) Log(event Event) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}

	rec := logRecord{
		Kind:      event.EventKind(),
		Timestamp: event.EventTime(),
		Session:   event.EventSession(),
		Data:      flatten(event),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	l.eventCount++
	if l.eventCount%rotationCheckInterval == 0 {
		go l.maybeRotate()
	}
	return nil
}

// Attach subscribes the logger to every event on the bus and returns the
// unsubscribe function.
func (l *Logger) Attach(bus *Bus) UnsubscribeFunc {
	return bus.SubscribeAll(func(e Event) {
		if err := l.Log(e); err != nil {
			fmt.Fprintf(os.Stderr, "event log write error: %v\n", err)
		}
	})
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// flatten marshals the event and strips the Base fields already carried by
// the record envelope.
func flatten(event Event) map[string]any {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	delete(m, "type")
	delete(m, "timestamp")
	delete(m, "session")
	if len(m) == 0 {
		return nil
	}
	return m
}

// maybeRotate checks if rotation is needed and performs it.
func (l *Logger) maybeRotate() {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Rotate once per day at most.
	if time.Since(l.lastRotation) < 24*time.Hour {
		return
	}
	l.lastRotation = time.Now()

	if err := l.rotateOldEntries(); err != nil {
		fmt.Fprintf(os.Stderr, "event log rotation error: %v\n", err)
	}
}

// rotateOldEntries rewrites the log keeping entries inside the retention
// window. Caller holds l.mu.
func (l *Logger) rotateOldEntries() error {
	tmpFile, err := os.CreateTemp(filepath.Dir(l.path), "events-rotate-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	src, err := os.Open(l.path)
	if err != nil {
		tmpFile.Close()
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	cutoff := time.Now().AddDate(0, 0, -l.retentionDays)
	scanner := bufio.NewScanner(src)
	writer := bufio.NewWriter(tmpFile)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec logRecord
		if err := json.Unmarshal(line, &rec); err != nil || rec.Timestamp.After(cutoff) {
			// Keep malformed entries rather than silently losing data.
			if _, werr := writer.Write(line); werr != nil {
				tmpFile.Close()
				return werr
			}
			writer.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("scanning log file: %w", err)
	}
	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("flushing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		if f, openErr := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); openErr == nil {
			l.file = f
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("reopening log file: %w", err)
	}
	l.file = f
	return nil
}
