package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	// Create tables if not exists
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL,
			expr TEXT NOT NULL,
			result TEXT NOT NULL,
			err TEXT NOT NULL,
			ts INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS history_session ON history (session, id);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}

	s := &SQLite{db: db}

	// Check/set schema version (use unlocked versions since we're in init)
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	switch version {
	case "":
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// Append records an entry.
func (s *SQLite) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO history (session, expr, result, err, ts) VALUES (?, ?, ?, ?, ?)
	`, e.Session, e.Expr, e.Result, e.Err, e.Time.UnixMilli())
	return errors.Wrap(err, "append history")
}

// History returns entries newest first.
func (s *SQLite) History(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query(`SELECT id, session, expr, result, err, ts FROM history ORDER BY id DESC LIMIT ?`, sqlLimit(limit))
}

// SessionHistory returns the entries of one session, newest first.
func (s *SQLite) SessionHistory(session string, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query(`SELECT id, session, expr, result, err, ts FROM history WHERE session = ? ORDER BY id DESC LIMIT ?`, session, sqlLimit(limit))
}

func (s *SQLite) query(q string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &e.Session, &e.Expr, &e.Result, &e.Err, &ts); err != nil {
			return nil, err
		}
		e.Time = time.UnixMilli(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// sqlLimit maps "no limit" onto SQLite's LIMIT -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
