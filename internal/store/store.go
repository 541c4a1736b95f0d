// Package store records evaluated bigcalc expressions.
package store

import "time"

// Entry is one evaluated expression. Exactly one of Result and Err is set.
type Entry struct {
	ID      int64
	Session string
	Expr    string
	Result  string
	Err     string
	Time    time.Time
}

// OK reports whether the expression evaluated successfully.
func (e Entry) OK() bool {
	return e.Err == ""
}

// Store is the interface for expression history.
type Store interface {
	// Append records an entry. ID is assigned by the store.
	Append(e Entry) error
	// History returns up to limit entries, newest first. limit <= 0 returns all.
	History(limit int) ([]Entry, error)
	// Close releases resources.
	Close() error
}

// SessionStore narrows history to one session.
type SessionStore interface {
	SessionHistory(session string, limit int) ([]Entry, error)
}
