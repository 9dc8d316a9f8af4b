// Package sqlitekv implements the core.KVStore contract on a SQLite
// database using the pure-Go modernc.org/sqlite driver. It keeps one blobs
// table of JSON-encoded values, giving the context store a durable backend
// that survives concurrent processes better than the flat-file stores.
package sqlitekv

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/skillmesh/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// Store is a SQLite-backed core.KVStore.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. SQLite tolerates a single writer, so the pool is capped at
// one open connection.
func Open(path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save upserts the JSON encoding of value under key.
func (s *Store) Save(key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("kv save failed", "key", key, "error", err)
		return false
	}
	_, err = s.db.Exec(
		`INSERT INTO kv_entries (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, raw)
	if err != nil {
		s.logger.Error("kv save failed", "key", key, "error", err)
		return false
	}
	return true
}

// Load decodes the stored value for key into out.
func (s *Store) Load(key string, out any) bool {
	var raw []byte
	err := s.db.QueryRow(`SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		return false
	case err != nil:
		s.logger.Error("kv load failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Error("kv load failed", "key", key, "error", err)
		return false
	}
	return true
}

// Delete removes the row for key.
func (s *Store) Delete(key string) bool {
	res, err := s.db.Exec(`DELETE FROM kv_entries WHERE key = ?`, key)
	if err != nil {
		s.logger.Error("kv delete failed", "key", key, "error", err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.logger.Error("kv delete failed", "key", key, "error", err)
		return false
	}
	return n > 0
}

// Exists reports whether a row is present for key.
func (s *Store) Exists(key string) bool {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM kv_entries WHERE key = ?`, key).Scan(&one)
	return err == nil
}

// ListKeys returns all keys in the table.
func (s *Store) ListKeys() []string {
	rows, err := s.db.Query(`SELECT key FROM kv_entries`)
	if err != nil {
		s.logger.Error("kv list failed", "error", err)
		return []string{}
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			s.logger.Error("kv list failed", "error", err)
			return keys
		}
		keys = append(keys, k)
	}
	return keys
}
