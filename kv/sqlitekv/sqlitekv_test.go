package sqlitekv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skillmesh/core"
)

var _ core.KVStore = (*Store)(nil)

func open(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := Open(filepath.Join(dir, "store.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveLoadDelete(t *testing.T) {
	store := open(t, t.TempDir())

	var missing string
	assert.False(t, store.Load("greeting", &missing))
	assert.False(t, store.Exists("greeting"))

	require.True(t, store.Save("greeting", "hello"))
	assert.True(t, store.Exists("greeting"))

	var got string
	require.True(t, store.Load("greeting", &got))
	assert.Equal(t, "hello", got)

	// Overwrite, same key.
	require.True(t, store.Save("greeting", "hi"))
	require.True(t, store.Load("greeting", &got))
	assert.Equal(t, "hi", got)

	assert.True(t, store.Delete("greeting"))
	assert.False(t, store.Delete("greeting"))
}

func TestStore_ListKeys(t *testing.T) {
	store := open(t, t.TempDir())
	require.True(t, store.Save("a", 1))
	require.True(t, store.Save("b", 2))
	assert.ElementsMatch(t, []string{"a", "b"}, store.ListKeys())
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first := open(t, dir)
	session := core.NewSession("s1")
	session.Context["k"] = "v"
	require.True(t, first.Save("sessions", map[string]*core.Session{"s1": session}))
	require.NoError(t, first.Close())

	second := open(t, dir)
	out := map[string]*core.Session{}
	require.True(t, second.Load("sessions", &out))
	require.Contains(t, out, "s1")
	assert.Equal(t, "v", out["s1"].Context["k"])
}
