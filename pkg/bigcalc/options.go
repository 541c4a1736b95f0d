// Package bigcalc provides the public API for the bigcalc evaluator.
package bigcalc

import (
	"github.com/rs/zerolog"

	"nickandperla.net/bigcalc/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSQLiteStore records history in a SQLite database at the given path.
// If the database cannot be opened the runtime logs a warning and keeps
// history in memory.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path)
		if err != nil {
			r.storeErr = err
			return
		}
		r.store = s
	}
}

// WithMemoryStore keeps history in memory (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithStore sets a custom history store.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithNoHistory disables history recording.
func WithNoHistory() Option {
	return func(r *Runtime) {
		r.noHistory = true
	}
}

// WithLogger sets the logger for evaluation tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithSession sets the session id recorded with each history entry.
// If not set, a random UUID is used.
func WithSession(id string) Option {
	return func(r *Runtime) {
		r.session = id
	}
}

// Store interface for custom history stores.
type Store = store.Store

// Entry is one recorded evaluation.
type Entry = store.Entry
