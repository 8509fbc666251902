package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Compile-time interface satisfaction check
var _ Layer = (*Store)(nil)

// Store is the sqlite-backed cache layer, so ranked results survive
// process restarts. Entities and records round-trip through JSON.
// Thread-safety: all methods are safe for concurrent use via internal
// mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a Store at the given database path, creating the table
// if needed. Uses WAL mode for file-based databases.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return s, nil
}

func (s *Store) createTable() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache_entries(expires_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Get returns the entry for key regardless of freshness.
func (s *Store) Get(key Key) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRow(
		"SELECT payload FROM cache_entries WHERE key = ?", key.String(),
	).Scan(&payload)
	if err != nil {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return Entry{}, false
	}
	return entry, true
}

// Put upserts the entry for key.
func (s *Store) Put(key Key, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	entry.Key = key

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO cache_entries (key, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, key.String(), string(payload), entry.CreatedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}

// Invalidate removes the entry for key.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db.Exec("DELETE FROM cache_entries WHERE key = ?", key.String())
}

// Keys lists stored keys, newest first. Used by the CLI inspector.
func (s *Store) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT key FROM cache_entries ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Purge removes entries that expired before cutoff, returning the count.
func (s *Store) Purge(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM cache_entries WHERE expires_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge entries: %w", err)
	}
	return res.RowsAffected()
}
