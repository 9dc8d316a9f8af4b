package contextstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skillmesh/core"
	"github.com/hupe1980/skillmesh/internal/testutil"
	"github.com/hupe1980/skillmesh/kv"
)

// Interface compliance (compile-time assertion)
var _ core.SkillContext = (*Store)(nil)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(kv.NewInMemory(nil))
}

func TestStore_SessionLifecycle(t *testing.T) {
	store := newStore(t)

	_, ok := store.CurrentSessionID()
	assert.False(t, ok)

	sess, persisted := store.CreateSession("s1")
	assert.True(t, persisted)
	assert.Equal(t, "s1", sess.ID)

	id, ok := store.CurrentSessionID()
	require.True(t, ok)
	assert.Equal(t, "s1", id)

	// A generated id is assigned when none is given, and the new session
	// becomes current.
	generated, _ := store.CreateSession("")
	assert.NotEmpty(t, generated.ID)
	id, _ = store.CurrentSessionID()
	assert.Equal(t, generated.ID, id)

	assert.ElementsMatch(t, []string{"s1", generated.ID}, store.SessionIDs())

	assert.True(t, store.SetCurrentSession("s1"))
	assert.False(t, store.SetCurrentSession("nope"))
}

func TestStore_AddMessageRequiresSession(t *testing.T) {
	store := newStore(t)
	_, err := store.AddMessage(core.RoleUser, "hi", nil)
	assert.ErrorIs(t, err, core.ErrNoActiveSession)
}

func TestStore_ConversationFlow(t *testing.T) {
	store := newStore(t)
	store.CreateSession("chat")

	persisted, err := store.AddMessage(core.RoleUser, "hello", nil)
	require.NoError(t, err)
	assert.True(t, persisted)
	_, err = store.AddMessage(core.RoleAssistant, "hi there", map[string]any{"model": "mock"})
	require.NoError(t, err)

	msgs := store.RecentMessages(0)
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, "hi there", msgs[1].Content)

	// The returned slice is a snapshot.
	msgs[0].Content = "mutated"
	assert.Equal(t, "hello", store.RecentMessages(0)[0].Content)
}

func TestStore_HistoryTrimOldestFirst(t *testing.T) {
	store := New(kv.NewInMemory(nil), func(o *Options) {
		o.MaxHistory = 3
		o.ContextWindow = 2
	})
	store.CreateSession("s")

	for i := 0; i < 5; i++ {
		_, err := store.AddMessage(core.RoleUser, fmt.Sprintf("m%d", i), nil)
		require.NoError(t, err)
	}

	sess, ok := store.GetSession("s")
	require.True(t, ok)
	require.Len(t, sess.Messages, 3)
	assert.Equal(t, "m2", sess.Messages[0].Content)
	assert.Equal(t, "m4", sess.Messages[2].Content)

	// The default window is narrower than the kept history.
	recent := store.RecentMessages(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "m3", recent[0].Content)
}

func TestStore_ScopeIsolation(t *testing.T) {
	store := newStore(t)
	store.CreateSession("a")

	_, err := store.UpdateContext("shared", "global-value", core.ScopeGlobal)
	require.NoError(t, err)
	_, err = store.UpdateContext("shared", "session-value", core.ScopeSession)
	require.NoError(t, err)

	v, ok := store.GetContext("shared", core.ScopeGlobal)
	require.True(t, ok)
	assert.Equal(t, "global-value", v)

	// Session entries shadow global ones in the merged view.
	assert.Equal(t, "session-value", store.FullContext()["shared"])

	// A fresh session no longer sees the first session's entry.
	store.CreateSession("b")
	_, ok = store.GetContext("shared", core.ScopeSession)
	assert.False(t, ok)
	assert.Equal(t, "global-value", store.FullContext()["shared"])
}

func TestStore_InvalidScope(t *testing.T) {
	store := newStore(t)
	_, err := store.UpdateContext("k", "v", core.Scope("bogus"))
	assert.ErrorIs(t, err, core.ErrInvalidScope)

	_, ok := store.GetContext("k", core.Scope("bogus"))
	assert.False(t, ok)
}

func TestStore_SessionScopeRequiresSession(t *testing.T) {
	store := newStore(t)
	_, err := store.UpdateContext("k", "v", core.ScopeSession)
	assert.ErrorIs(t, err, core.ErrNoActiveSession)
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	backend := kv.NewInMemory(nil)

	first := New(backend)
	first.CreateSession("s1")
	_, err := first.AddMessage(core.RoleUser, "remember me", nil)
	require.NoError(t, err)
	_, err = first.UpdateContext("color", "green", core.ScopeGlobal)
	require.NoError(t, err)
	_, err = first.UpdateContext("mood", "curious", core.ScopeSession)
	require.NoError(t, err)

	// A second store over the same backend simulates a process restart.
	second := New(backend)
	v, ok := second.GetContext("color", core.ScopeGlobal)
	require.True(t, ok)
	assert.Equal(t, "green", v)

	sess, ok := second.GetSession("s1")
	require.True(t, ok)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "remember me", sess.Messages[0].Content)
	assert.Equal(t, "curious", sess.Context["mood"])

	// The current-session pointer is process state, not persisted state.
	_, ok = second.CurrentSessionID()
	assert.False(t, ok)
}

func TestStore_BestEffortPersistence(t *testing.T) {
	backend := testutil.NewFlakyKV()
	store := New(backend)

	backend.FailSave = true
	sess, persisted := store.CreateSession("s1")
	assert.False(t, persisted)
	assert.Equal(t, "s1", sess.ID)

	// In-memory state is retained even though the flush failed.
	persistedMsg, err := store.AddMessage(core.RoleUser, "hi", nil)
	require.NoError(t, err)
	assert.False(t, persistedMsg)
	assert.Len(t, store.RecentMessages(0), 1)

	backend.FailSave = false
	persistedMsg, err = store.AddMessage(core.RoleUser, "again", nil)
	require.NoError(t, err)
	assert.True(t, persistedMsg)
}

func TestStore_ClearSession(t *testing.T) {
	store := newStore(t)
	store.CreateSession("s1")
	_, err := store.AddMessage(core.RoleUser, "hi", nil)
	require.NoError(t, err)
	_, err = store.UpdateContext("k", "v", core.ScopeSession)
	require.NoError(t, err)

	require.True(t, store.ClearSession("s1"))
	assert.False(t, store.ClearSession("nope"))

	sess, _ := store.GetSession("s1")
	assert.Empty(t, sess.Messages)
	assert.Empty(t, sess.Context)
	assert.False(t, sess.Active)
}

func TestStore_Credential(t *testing.T) {
	store := newStore(t)
	store.CreateSession("s1")

	_, ok := store.Credential("api_token", "")
	assert.False(t, ok)

	t.Setenv("CRED_TEST_TOKEN", "from-env")
	v, ok := store.Credential("api_token", "CRED_TEST_TOKEN")
	require.True(t, ok)
	assert.Equal(t, "from-env", v)

	_, err := store.UpdateContext("api_token", "from-global", core.ScopeGlobal)
	require.NoError(t, err)
	v, _ = store.Credential("api_token", "CRED_TEST_TOKEN")
	assert.Equal(t, "from-global", v)

	_, err = store.UpdateContext("api_token", "from-session", core.ScopeSession)
	require.NoError(t, err)
	v, _ = store.Credential("api_token", "CRED_TEST_TOKEN")
	assert.Equal(t, "from-session", v)

	// Non-string context values are skipped, not returned.
	_, err = store.UpdateContext("numeric", 42, core.ScopeGlobal)
	require.NoError(t, err)
	_, ok = store.Credential("numeric", "")
	assert.False(t, ok)
}

func TestStore_LoadsPrePopulatedBackend(t *testing.T) {
	backend := kv.NewInMemory(nil)
	seeded := testutil.NewSessionBuilder("seeded").
		Context("k", "v").
		Message(core.RoleUser, "hello").
		Build()
	require.True(t, backend.Save("sessions", map[string]*core.Session{"seeded": seeded}))

	store := New(backend)
	sess, ok := store.GetSession("seeded")
	require.True(t, ok)
	assert.Equal(t, "v", sess.Context["k"])
	require.Len(t, sess.Messages, 1)
}
