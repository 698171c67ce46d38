// Package history keeps an append-only, in-memory log of the replies and
// calculations produced during one session.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind labels what produced an entry.
type Kind string

const (
	KindReply     Kind = "reply"
	KindReconcile Kind = "reconcile"
	KindProject   Kind = "project"
	KindAggregate Kind = "aggregate"
)

// Entry is one recorded event. Entries are never modified once appended.
type Entry struct {
	ID     string            `json:"id"`
	Kind   Kind              `json:"kind"`
	At     time.Time         `json:"at"`
	Input  string            `json:"input"`
	Output string            `json:"output,omitempty"`
	Error  string            `json:"error,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// Log is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// New returns an empty log.
func New() *Log {
	return &Log{now: time.Now}
}

// Append stores e, assigning an ID and timestamp when they are unset, and
// returns the stored entry.
func (l *Log) Append(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if e.At.IsZero() {
		e.At = l.now()
	}
	if e.Meta != nil {
		e.Meta = maps.Clone(e.Meta)
	}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns a snapshot in append order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Filter returns the entries of one kind in append order.
func (l *Log) Filter(kind Kind) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// WriteJSON writes the log as an indented JSON array.
func (l *Log) WriteJSON(w io.Writer) error {
	entries := l.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("history.WriteJSON: %w", err)
	}
	return nil
}
