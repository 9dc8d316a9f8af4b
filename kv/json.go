package kv

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hupe1980/skillmesh/logging"
)

// JSON is a single-file aggregate core.KVStore: every key lives in one JSON
// document that is read fully at construction and rewritten fully on each
// mutation. Suited for small state like the context blobs; a database
// backend (sqlitekv) scales better for anything larger.
type JSON struct {
	path   string
	mu     sync.Mutex
	data   map[string]json.RawMessage
	logger logging.Logger
}

// NewJSON loads the aggregate file (a missing or unreadable file starts the
// store empty) and returns the store.
func NewJSON(path string, logger logging.Logger) (*JSON, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	s := &JSON{path: path, data: make(map[string]json.RawMessage), logger: logger}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		logger.Error("kv open failed, starting empty", "path", path, "error", err)
	default:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			logger.Error("kv decode failed, starting empty", "path", path, "error", err)
			s.data = make(map[string]json.RawMessage)
		}
	}
	return s, nil
}

// flushLocked rewrites the aggregate file; caller holds the mutex.
func (s *JSON) flushLocked() bool {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		s.logger.Error("kv flush failed", "path", s.path, "error", err)
		return false
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		s.logger.Error("kv flush failed", "path", s.path, "error", err)
		return false
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Error("kv flush failed", "path", s.path, "error", err)
		return false
	}
	return true
}

// Save encodes value under key and rewrites the aggregate file.
func (s *JSON) Save(key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("kv save failed", "key", key, "error", err)
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.data[key]
	s.data[key] = raw
	if !s.flushLocked() {
		// Flush failed: roll the in-memory entry back so memory matches
		// the last successfully persisted snapshot.
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return false
	}
	return true
}

// Load decodes the value for key into out.
func (s *JSON) Load(key string, out any) bool {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Error("kv load failed", "key", key, "error", err)
		return false
	}
	return true
}

// Delete removes key and rewrites the aggregate file.
func (s *JSON) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[key]
	if !ok {
		return false
	}
	delete(s.data, key)
	if !s.flushLocked() {
		s.data[key] = raw
		return false
	}
	return true
}

// Exists reports whether key holds a value.
func (s *JSON) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// ListKeys returns a snapshot of all keys.
func (s *JSON) ListKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
