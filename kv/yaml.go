package kv

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/skillmesh/logging"
)

// YAML is a file-per-key core.KVStore. Each key maps to <base>/<key>.yaml
// with path separators in the key sanitized to underscores. Writes go
// through a temp file rename so a crashed save never leaves a half-written
// blob behind.
type YAML struct {
	base   string
	mu     sync.Mutex
	logger logging.Logger
}

// NewYAML creates the base directory if needed and returns the store. A nil
// logger falls back to the no-op logger.
func NewYAML(base string, logger logging.Logger) (*YAML, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &YAML{base: base, logger: logger}, nil
}

func (s *YAML) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(key)
	return filepath.Join(s.base, safe+".yaml")
}

// Save marshals value to YAML and writes it under key.
func (s *YAML) Save(key string, value any) bool {
	data, err := yaml.Marshal(value)
	if err != nil {
		s.logger.Error("kv save failed", "key", key, "error", err)
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Error("kv save failed", "key", key, "error", err)
		return false
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		s.logger.Error("kv save failed", "key", key, "error", err)
		return false
	}
	return true
}

// Load reads and decodes the YAML file for key into out.
func (s *YAML) Load(key string, out any) bool {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("kv load failed", "key", key, "error", err)
		}
		return false
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		s.logger.Error("kv load failed", "key", key, "error", err)
		return false
	}
	return true
}

// Delete removes the file for key.
func (s *YAML) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("kv delete failed", "key", key, "error", err)
		}
		return false
	}
	return true
}

// Exists reports whether a file is present for key.
func (s *YAML) Exists(key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}

// ListKeys returns the stems of all YAML files in the base directory.
func (s *YAML) ListKeys() []string {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		s.logger.Error("kv list failed", "error", err)
		return []string{}
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".yaml"))
	}
	return keys
}
