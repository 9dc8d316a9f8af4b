package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skillmesh/core"
	"github.com/hupe1980/skillmesh/logging"
)

// Interface compliance (compile-time assertions)
var (
	_ core.KVStore = (*InMemory)(nil)
	_ core.KVStore = (*YAML)(nil)
	_ core.KVStore = (*JSON)(nil)
)

// stores builds one instance of every backend against a fresh temp dir.
func stores(t *testing.T) map[string]core.KVStore {
	t.Helper()
	yamlStore, err := NewYAML(t.TempDir(), logging.NoOpLogger{})
	require.NoError(t, err)
	jsonStore, err := NewJSON(filepath.Join(t.TempDir(), "store.json"), logging.NoOpLogger{})
	require.NoError(t, err)
	return map[string]core.KVStore{
		"memory": NewInMemory(logging.NoOpLogger{}),
		"yaml":   yamlStore,
		"json":   jsonStore,
	}
}

func TestKVStore_SaveLoadDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.False(t, store.Exists("config"))

			var missing map[string]any
			assert.False(t, store.Load("config", &missing))

			ok := store.Save("config", map[string]any{"retries": 3, "verbose": true})
			assert.True(t, ok)
			assert.True(t, store.Exists("config"))

			var got map[string]any
			require.True(t, store.Load("config", &got))
			assert.Equal(t, true, got["verbose"])

			assert.True(t, store.Delete("config"))
			assert.False(t, store.Exists("config"))
			assert.False(t, store.Delete("config"))
		})
	}
}

func TestKVStore_ListKeys(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			store.Save("a", 1)
			store.Save("b", 2)
			assert.ElementsMatch(t, []string{"a", "b"}, store.ListKeys())
		})
	}
}

func TestKVStore_TypedRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			in := core.NewSession("s1")
			in.Context["key"] = "value"
			require.True(t, store.Save("sessions", map[string]*core.Session{"s1": in}))

			out := map[string]*core.Session{}
			require.True(t, store.Load("sessions", &out))
			require.Contains(t, out, "s1")
			assert.Equal(t, "s1", out["s1"].ID)
			assert.Equal(t, "value", out["s1"].Context["key"])
			assert.True(t, out["s1"].Active)
		})
	}
}

func TestYAML_SanitizesKeys(t *testing.T) {
	base := t.TempDir()
	store, err := NewYAML(base, nil)
	require.NoError(t, err)

	require.True(t, store.Save("nested/key", "v"))

	// The key must not escape the base directory.
	_, err = os.Stat(filepath.Join(base, "nested_key.yaml"))
	assert.NoError(t, err)

	var got string
	require.True(t, store.Load("nested/key", &got))
	assert.Equal(t, "v", got)
}

func TestJSON_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	first, err := NewJSON(path, nil)
	require.NoError(t, err)
	require.True(t, first.Save("count", 41))

	second, err := NewJSON(path, nil)
	require.NoError(t, err)
	var got int
	require.True(t, second.Load("count", &got))
	assert.Equal(t, 41, got)
}

func TestJSON_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := NewJSON(path, nil)
	require.NoError(t, err)
	assert.Empty(t, store.ListKeys())
}

func TestSave_UnencodableValue(t *testing.T) {
	store := NewInMemory(nil)
	assert.False(t, store.Save("bad", func() {}))
	assert.False(t, store.Exists("bad"))
}
