// Package sessionlog keeps the append-only record of executed steno
// commands: one JSON object per line, plus a bookmark index in a sidecar
// file. It implements steno.ReferenceResolver so the mapper can expand
// ^-references into the outputs of earlier nodes. Branching, undo and
// transcript generation live elsewhere; this is the minimal store the
// core's reference grammar needs.
package sessionlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome recorded for one command.
type Status string

const (
	StatusExecuted  Status = "executed"
	StatusDelegated Status = "delegated"
	StatusClarified Status = "clarified"
	StatusFailed    Status = "failed"
)

// Record is one session-log entry.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Input     string    `json:"input"`
	Status    Status    `json:"status"`
	Inputs    []string  `json:"inputs,omitempty"`
	Outputs   []string  `json:"outputs,omitempty"`
	Summary   string    `json:"summary,omitempty"`
}

// Log is an append-only JSON-lines session log. Safe for concurrent use.
type Log struct {
	mu        sync.Mutex
	path      string
	records   []Record
	bookmarks map[string]string
}

// Open loads the log at path, creating it on first append if absent.
func Open(path string) (*Log, error) {
	l := &Log{path: path, bookmarks: make(map[string]string)}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Log) load() error {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("corrupt session log line: %w", err)
		}
		l.records = append(l.records, rec)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read session log: %w", err)
	}

	data, err := os.ReadFile(l.bookmarkPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read bookmarks: %w", err)
	}
	if err := json.Unmarshal(data, &l.bookmarks); err != nil {
		return fmt.Errorf("corrupt bookmark index: %w", err)
	}
	return nil
}

func (l *Log) bookmarkPath() string {
	return l.path + ".bookmarks"
}

// Append writes a record to the log. A missing ID gets a fresh UUID and a
// zero timestamp gets the current time; the stored record is returned.
func (l *Log) Append(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encode record: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Record{}, fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return Record{}, fmt.Errorf("append record: %w", err)
	}

	l.records = append(l.records, rec)
	return rec, nil
}

// Get returns the record with the given id.
func (l *Log) Get(id string) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.records) - 1; i >= 0; i-- {
		if l.records[i].ID == id {
			return l.records[i], true
		}
	}
	return Record{}, false
}

// Last returns up to n most recent records, newest first.
func (l *Log) Last(n int) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.records) {
		n = len(l.records)
	}
	out := make([]Record, 0, n)
	for i := len(l.records) - 1; i >= len(l.records)-n; i-- {
		out = append(out, l.records[i])
	}
	return out
}

// SetBookmark names a record so ^name references can find its outputs.
func (l *Log) SetBookmark(name, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	found := false
	for _, rec := range l.records {
		if rec.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("bookmark %q: no record %s", name, id)
	}
	l.bookmarks[name] = id

	data, err := json.MarshalIndent(l.bookmarks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bookmarks: %w", err)
	}
	if err := os.WriteFile(l.bookmarkPath(), data, 0o644); err != nil {
		return fmt.Errorf("write bookmarks: %w", err)
	}
	return nil
}

// Previous implements steno.ReferenceResolver: outputs of the record
// `back` entries from the end (1 = most recent).
func (l *Log) Previous(back int) ([]string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if back < 1 || back > len(l.records) {
		return nil, false
	}
	rec := l.records[len(l.records)-back]
	if len(rec.Outputs) == 0 {
		return nil, false
	}
	return rec.Outputs, true
}

// Bookmark implements steno.ReferenceResolver: outputs of the bookmarked
// record.
func (l *Log) Bookmark(name string) ([]string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.bookmarks[name]
	if !ok {
		return nil, false
	}
	for i := len(l.records) - 1; i >= 0; i-- {
		if l.records[i].ID == id {
			if len(l.records[i].Outputs) == 0 {
				return nil, false
			}
			return l.records[i].Outputs, true
		}
	}
	return nil, false
}
