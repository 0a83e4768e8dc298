// Package wal journals acceptance actions for audit and replay.
// Entries are append-only JSON lines; a new file is started per
// process using a timestamped name.
package wal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is a single journal record.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Sequence  int64           `json:"sequence"`
	Type      string          `json:"type"`
	AssetID   string          `json:"asset_id,omitempty"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error,omitempty"`
}

// WAL is an append-only action journal.
type WAL struct {
	mu       sync.Mutex
	file     *os.File
	writer   *bufio.Writer
	sequence int64
	dir      string
}

// Open creates or opens a journal in the given directory.
func Open(dir string) (*WAL, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	filename := fmt.Sprintf("karsi-%s.wal", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, filename)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) // #nosec G304 -- path is built from config
	if err != nil {
		return nil, fmt.Errorf("open journal file: %w", err)
	}

	w := &WAL{
		file:   file,
		writer: bufio.NewWriter(file),
		dir:    dir,
	}
	w.loadSequence()
	return w, nil
}

// Close flushes and closes the journal.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		return err
	}
	return w.file.Close()
}

// Append adds an entry.
func (w *WAL) Append(entryType string, assetID string, data any) error {
	return w.append(entryType, assetID, data, nil)
}

// AppendError adds an entry carrying a failure.
func (w *WAL) AppendError(entryType string, assetID string, data any, cause error) error {
	return w.append(entryType, assetID, data, cause)
}

func (w *WAL) append(entryType, assetID string, data any, cause error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal journal data: %w", err)
	}

	w.sequence++
	entry := Entry{
		Timestamp: time.Now(),
		Sequence:  w.sequence,
		Type:      entryType,
		AssetID:   assetID,
		Data:      jsonData,
	}
	if cause != nil {
		entry.Error = cause.Error()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	if _, err := w.writer.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	// Flush per entry: the journal exists for post-incident audit, so
	// losing buffered entries on crash would defeat it.
	return w.writer.Flush()
}

// loadSequence resumes numbering after the highest sequence across
// existing journal files in the directory.
func (w *WAL) loadSequence() {
	entries, err := ReadDir(w.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.Sequence > w.sequence {
			w.sequence = e.Sequence
		}
	}
}

// ReadDir loads every entry from every journal file in a directory,
// oldest file first. Unparseable lines are skipped.
func ReadDir(dir string) ([]Entry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "karsi-*.wal"))
	if err != nil {
		return nil, err
	}

	var all []Entry
	for _, path := range paths {
		entries, err := readFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}

func readFile(path string) ([]Entry, error) {
	file, err := os.Open(path) // #nosec G304 -- path comes from our own glob
	if err != nil {
		return nil, fmt.Errorf("open journal file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}
