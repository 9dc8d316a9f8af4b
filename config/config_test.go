package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "skillmesh.yaml"))
	// An explicit path that does not exist is an error; use discovery mode
	// from an empty directory instead.
	require.Error(t, err)

	t.Chdir(t.TempDir())
	cfg, err = Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendYAML, cfg.Storage.Backend)
	assert.Equal(t, 100, cfg.Context.MaxHistory)
	assert.Equal(t, 10, cfg.Context.ContextWindow)
	assert.Equal(t, 5, cfg.Engine.MaxConcurrentTasks)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  backend: sqlite
  path: /tmp/skillmesh-test
context:
  max_history: 20
  context_window: 4
engine:
  max_concurrent_tasks: 2
logging:
  level: debug
  format: json
model:
  provider: openai
  name: gpt-4o
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/skillmesh-test", cfg.Storage.Path)
	assert.Equal(t, 20, cfg.Context.MaxHistory)
	assert.Equal(t, 4, cfg.Context.ContextWindow)
	assert.Equal(t, 2, cfg.Engine.MaxConcurrentTasks)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "gpt-4o", cfg.Model.Name)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SKILLMESH_STORAGE_BACKEND", "memory")
	t.Setenv("SKILLMESH_ENGINE_MAX_CONCURRENT_TASKS", "9")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 9, cfg.Engine.MaxConcurrentTasks)
}

func TestLoad_Validation(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("SKILLMESH_STORAGE_BACKEND", "cassette-tape")
	_, err := Load("")
	assert.ErrorContains(t, err, "unknown storage backend")
	t.Setenv("SKILLMESH_STORAGE_BACKEND", "memory")

	t.Setenv("SKILLMESH_CONTEXT_MAX_HISTORY", "0")
	_, err = Load("")
	assert.ErrorContains(t, err, "max_history")
	t.Setenv("SKILLMESH_CONTEXT_MAX_HISTORY", "1")

	t.Setenv("SKILLMESH_ENGINE_MAX_CONCURRENT_TASKS", "-1")
	_, err = Load("")
	assert.ErrorContains(t, err, "max_concurrent_tasks")
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
