// Package auditlog keeps an append-only JSON log of every workflow action.
// Entries are written and fsynced before the action they describe completes,
// so the audit trail survives a crash mid-workflow.
package auditlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EntryType defines the type of audit entry.
type EntryType string

const (
	EntryIsolating       EntryType = "isolating"
	EntryIsolated        EntryType = "isolated"
	EntryRestoring       EntryType = "restoring"
	EntryRestored        EntryType = "restored"
	EntrySnapshotCreated EntryType = "snapshot_created"
	EntrySnapshotSkipped EntryType = "snapshot_skipped"
	EntryDeleting        EntryType = "deleting"
	EntryDeleted         EntryType = "deleted"
	EntryFailed          EntryType = "failed"
	EntryCancelled       EntryType = "cancelled"
)

// Entry is a single audit log entry.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Sequence  int64           `json:"sequence"`
	Type      EntryType       `json:"type"`
	SubjectID string          `json:"subject_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Log is an append-only audit log backed by a file per run.
type Log struct {
	mu       sync.Mutex
	file     *os.File
	writer   *bufio.Writer
	sequence int64
}

// Open creates an audit log file in the given directory.
func Open(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	filename := fmt.Sprintf("custody-%s.audit", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, filename)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) // #nosec G304 -- path built from config
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &Log{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// Close flushes and closes the log.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.writer.Flush(); err != nil {
		return err
	}
	return l.file.Close()
}

// Append adds an entry to the log.
func (l *Log) Append(entryType EntryType, subjectID string, data any) error {
	return l.append(entryType, subjectID, data, nil)
}

// AppendError adds an entry carrying a failure.
func (l *Log) AppendError(entryType EntryType, subjectID string, data any, cause error) error {
	return l.append(entryType, subjectID, data, cause)
}

func (l *Log) append(entryType EntryType, subjectID string, data any, cause error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sequence++

	entry := Entry{
		Timestamp: time.Now(),
		Sequence:  l.sequence,
		Type:      entryType,
		SubjectID: subjectID,
	}
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal audit data: %w", err)
		}
		entry.Data = jsonData
	}
	if cause != nil {
		entry.Error = cause.Error()
	}

	return l.writeEntry(entry)
}

// writeEntry writes one entry as a JSON line and syncs it to disk.
func (l *Log) writeEntry(entry Entry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	if _, err := l.writer.Write(line); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	if _, err := l.writer.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush audit log: %w", err)
	}
	return l.file.Sync()
}

// Reader replays an audit log file entry by entry.
type Reader struct {
	scanner *bufio.Scanner
	file    *os.File
}

// NewReader opens an audit log file for replay.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path) // #nosec G304 -- path is operator input
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &Reader{
		scanner: bufio.NewScanner(file),
		file:    file,
	}, nil
}

// Next reads the next entry, returning io.EOF at the end.
func (r *Reader) Next() (*Entry, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	var entry Entry
	if err := json.Unmarshal(r.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit entry: %w", err)
	}
	return &entry, nil
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Replay visits every entry in every audit log under dir, newest file last.
func Replay(dir string, handler func(*Entry) error) error {
	files, err := filepath.Glob(filepath.Join(dir, "custody-*.audit"))
	if err != nil {
		return fmt.Errorf("failed to list audit logs: %w", err)
	}

	for _, file := range files {
		reader, err := NewReader(file)
		if err != nil {
			return err
		}

		for {
			entry, err := reader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				_ = reader.Close()
				return err
			}
			if err := handler(entry); err != nil {
				_ = reader.Close()
				return err
			}
		}
		if err := reader.Close(); err != nil {
			return err
		}
	}

	return nil
}
