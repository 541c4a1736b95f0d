package store

import (
	"sync"
	"time"
)

// Memory is an in-memory store for testing and for runs without a database.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int64
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// Append records an entry.
func (m *Memory) Append(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.ID = m.nextID
	m.nextID++
	m.entries = append(m.entries, e)
	return nil
}

// History returns entries newest first.
func (m *Memory) History(limit int) ([]Entry, error) {
	return m.filter("", limit), nil
}

// SessionHistory returns the entries of one session, newest first.
func (m *Memory) SessionHistory(session string, limit int) ([]Entry, error) {
	return m.filter(session, limit), nil
}

func (m *Memory) filter(session string, limit int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if session != "" && m.entries[i].Session != session {
			continue
		}
		out = append(out, m.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}
