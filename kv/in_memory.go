package kv

import (
	"encoding/json"
	"sync"

	"github.com/hupe1980/skillmesh/logging"
)

// InMemory is a volatile core.KVStore keeping values in a process-local map
// guarded by an RWMutex. Values round-trip through JSON exactly like the
// durable backends, so tests exercising it observe the same decoded shapes.
type InMemory struct {
	mu     sync.RWMutex
	data   map[string]json.RawMessage
	logger logging.Logger
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory(logger logging.Logger) *InMemory {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &InMemory{data: make(map[string]json.RawMessage), logger: logger}
}

// Save encodes value and stores it under key, overwriting any prior value.
func (s *InMemory) Save(key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("kv save failed", "key", key, "error", err)
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return true
}

// Load decodes the stored value for key into out.
func (s *InMemory) Load(key string, out any) bool {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Error("kv load failed", "key", key, "error", err)
		return false
	}
	return true
}

// Delete removes the value for key.
func (s *InMemory) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	return true
}

// Exists reports whether key holds a value.
func (s *InMemory) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// ListKeys returns a snapshot of all keys.
func (s *InMemory) ListKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
