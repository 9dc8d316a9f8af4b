// Package contextstore implements the session and global key/value state
// layer on top of a pluggable core.KVStore. It owns the single "current"
// session pointer for the process, the bounded message history, and the
// best-effort persistence semantics every skill observes through the
// core.SkillContext handle.
package contextstore

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/skillmesh/core"
	"github.com/hupe1980/skillmesh/logging"
)

func nowUTC() time.Time { return time.Now().UTC() }

// Persisted top-level keys: one aggregate blob for global context, one for
// the full session collection.
const (
	keyGlobalContext = "global_context"
	keySessions      = "sessions"
)

// Options configures a Store.
type Options struct {
	// MaxHistory caps a session's message history. Oldest messages are
	// evicted first on overflow, at append and persist time.
	MaxHistory int
	// ContextWindow is the default number of recent messages returned by
	// RecentMessages.
	ContextWindow int
	// Logger receives persistence failures; defaults to the no-op logger.
	Logger logging.Logger
}

// Store wraps a core.KVStore with session management, message history and
// scoped context. All mutation is serialized behind a single mutex; sessions
// handed out are clones so callers never observe live state.
//
// Persistence is best-effort: save failures are logged and swallowed, with
// the outcome reported as a bool that default call sites may ignore. Load
// failures at construction are logged and the store starts empty.
type Store struct {
	kv            core.KVStore
	maxHistory    int
	contextWindow int
	logger        logging.Logger

	mu       sync.RWMutex
	sessions map[string]*core.Session
	current  *core.Session
	global   map[string]any
}

// New builds a Store over the given key/value backend and loads any
// persisted state.
func New(kvs core.KVStore, optFns ...func(o *Options)) *Store {
	opts := Options{
		MaxHistory:    100,
		ContextWindow: 10,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Store{
		kv:            kvs,
		maxHistory:    opts.MaxHistory,
		contextWindow: opts.ContextWindow,
		logger:        opts.Logger,
		sessions:      map[string]*core.Session{},
		global:        map[string]any{},
	}
	s.load()
	return s
}

// load restores global context and sessions from the backend. Missing keys
// simply start empty.
func (s *Store) load() {
	if !s.kv.Load(keyGlobalContext, &s.global) {
		s.global = map[string]any{}
	}
	sessions := map[string]*core.Session{}
	if s.kv.Load(keySessions, &sessions) {
		for id, sess := range sessions {
			if sess == nil {
				continue
			}
			if sess.Context == nil {
				sess.Context = map[string]any{}
			}
			if sess.Messages == nil {
				sess.Messages = []core.Message{}
			}
			s.sessions[id] = sess
		}
	}
	s.logger.Debug("context loaded", "sessions", len(s.sessions), "global_keys", len(s.global))
}

// saveLocked flushes both blobs; caller holds at least a read lock. Message
// histories are trimmed to MaxHistory as they are serialized.
func (s *Store) saveLocked() bool {
	ok := s.kv.Save(keyGlobalContext, s.global)

	snapshot := make(map[string]*core.Session, len(s.sessions))
	for id, sess := range s.sessions {
		c := sess.Clone()
		c.Messages = trim(c.Messages, s.maxHistory)
		snapshot[id] = c
	}
	if !s.kv.Save(keySessions, snapshot) {
		ok = false
	}
	if !ok {
		s.logger.Warn("context persistence failed, in-memory state retained")
	}
	return ok
}

func trim(msgs []core.Message, max int) []core.Message {
	if max > 0 && len(msgs) > max {
		return msgs[len(msgs)-max:]
	}
	return msgs
}

// CreateSession builds a new session, registers it as current and persists
// immediately. An empty id gets a generated one; an existing session with
// the same id is overwritten. The returned session is a clone; the bool
// reports the persistence outcome.
func (s *Store) CreateSession(id string) (*core.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	sess := core.NewSession(id)
	s.sessions[id] = sess
	s.current = sess
	persisted := s.saveLocked()
	return sess.Clone(), persisted
}

// GetSession returns a clone of the session with the given id.
func (s *Store) GetSession(id string) (*core.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// SetCurrentSession switches the current pointer. False when id is unknown.
func (s *Store) SetCurrentSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	s.current = sess
	return true
}

// CurrentSessionID returns the id of the current session, if any.
func (s *Store) CurrentSessionID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return "", false
	}
	return s.current.ID, true
}

// SessionIDs returns the ids of all known sessions.
func (s *Store) SessionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// AddMessage appends a message to the current session, trims the history
// oldest-first and persists. It fails with core.ErrNoActiveSession when no
// session is current; the bool reports the persistence outcome.
func (s *Store) AddMessage(role, content string, metadata map[string]any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false, core.ErrNoActiveSession
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	s.current.Messages = append(s.current.Messages, core.Message{
		Role:      role,
		Content:   content,
		Timestamp: nowUTC(),
		Metadata:  metadata,
	})
	s.current.Messages = trim(s.current.Messages, s.maxHistory)
	return s.saveLocked(), nil
}

// RecentMessages returns a snapshot of the last count messages of the
// current session. count <= 0 selects the configured context window; no
// current session yields an empty slice.
func (s *Store) RecentMessages(count int) []core.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return []core.Message{}
	}
	if count <= 0 {
		count = s.contextWindow
	}
	msgs := s.current.Messages
	if count < len(msgs) {
		msgs = msgs[len(msgs)-count:]
	}
	out := make([]core.Message, len(msgs))
	copy(out, msgs)
	return out
}

// UpdateContext writes a key into the named scope and persists. Session
// scope requires a current session; an unknown scope is a validation error.
// The bool reports the persistence outcome.
func (s *Store) UpdateContext(key string, value any, scope core.Scope) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch scope {
	case core.ScopeGlobal:
		s.global[key] = value
	case core.ScopeSession:
		if s.current == nil {
			return false, core.ErrNoActiveSession
		}
		s.current.Context[key] = value
	default:
		return false, core.ErrInvalidScope
	}
	return s.saveLocked(), nil
}

// GetContext reads a key from the named scope. An unknown scope, a missing
// key, or session scope without a current session all yield (nil, false).
func (s *Store) GetContext(key string, scope core.Scope) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch scope {
	case core.ScopeGlobal:
		v, ok := s.global[key]
		return v, ok
	case core.ScopeSession:
		if s.current == nil {
			return nil, false
		}
		v, ok := s.current.Context[key]
		return v, ok
	default:
		return nil, false
	}
}

// FullContext returns the merged mapping: global entries overlaid by
// current-session entries where keys collide.
func (s *Store) FullContext() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	merged := make(map[string]any, len(s.global))
	for k, v := range s.global {
		merged[k] = v
	}
	if s.current != nil {
		for k, v := range s.current.Context {
			merged[k] = v
		}
	}
	return merged
}

// ClearSession wipes the session's messages and context and marks it
// inactive, then persists. The session itself is never hard-deleted here;
// removal is a store-level concern. False when id is unknown.
func (s *Store) ClearSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Messages = []core.Message{}
	sess.Context = map[string]any{}
	sess.Active = false
	s.saveLocked()
	return true
}

// Credential resolves a secret by precedence: current-session context,
// global context, then the named process environment variable. Only string
// values are considered.
func (s *Store) Credential(key, envVar string) (string, bool) {
	if v, ok := s.GetContext(key, core.ScopeSession); ok {
		if str, ok := v.(string); ok && str != "" {
			return str, true
		}
	}
	if v, ok := s.GetContext(key, core.ScopeGlobal); ok {
		if str, ok := v.(string); ok && str != "" {
			return str, true
		}
	}
	if envVar != "" {
		if str := os.Getenv(envVar); str != "" {
			return str, true
		}
	}
	return "", false
}
