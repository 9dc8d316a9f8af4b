// Package skillmesh provides a high-level façade over the skill registry,
// the context store and the task engine. Most applications interact with
// this package by:
//  1. Creating an Agent via New() (optionally overriding storage and limits)
//  2. Registering skills (built-ins from skills/, or ad-hoc via skill.NewFunc)
//  3. Running tasks one at a time (Run) or concurrently (RunBatch)
//
// The façade delegates execution to engine.Engine and session state to
// contextstore.Store while keeping setup concise. Defaults are safe for
// local use: in-memory storage and a no-op logger.
package skillmesh

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hupe1980/skillmesh/config"
	"github.com/hupe1980/skillmesh/contextstore"
	"github.com/hupe1980/skillmesh/core"
	"github.com/hupe1980/skillmesh/engine"
	"github.com/hupe1980/skillmesh/kv"
	"github.com/hupe1980/skillmesh/kv/sqlitekv"
	"github.com/hupe1980/skillmesh/logging"
	"github.com/hupe1980/skillmesh/skill"
)

// Options configures the Agent.
type Options struct {
	// KV is the persistence backend. Defaults to in-memory.
	KV core.KVStore

	// MaxHistory bounds per-session message history. Zero keeps the
	// context store default.
	MaxHistory int

	// ContextWindow bounds the recent-message view skills see. Zero keeps
	// the context store default.
	ContextWindow int

	// MaxConcurrentTasks caps simultaneous batch execution. Zero keeps the
	// engine default.
	MaxConcurrentTasks int

	// HotReload enables re-resolving skills from their sources.
	HotReload bool

	// Logger defaults to the no-op logger if nil.
	Logger logging.Logger
}

// Agent is the high-level façade aggregating storage, context, registry and
// engine.
type Agent struct {
	opts     Options
	kv       core.KVStore
	contexts *contextstore.Store
	registry *skill.Registry
	engine   *engine.Engine
}

// New creates an Agent with optional overrides. Unset services fall back to
// in-memory implementations.
func New(optFns ...func(o *Options)) *Agent {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.KV == nil {
		opts.KV = kv.NewInMemory(opts.Logger)
	}

	contexts := contextstore.New(opts.KV, func(o *contextstore.Options) {
		if opts.MaxHistory > 0 {
			o.MaxHistory = opts.MaxHistory
		}
		if opts.ContextWindow > 0 {
			o.ContextWindow = opts.ContextWindow
		}
		o.Logger = opts.Logger
	})

	registry := skill.NewRegistry(func(o *skill.Options) {
		o.HotReload = opts.HotReload
		o.Logger = opts.Logger
	})

	eng := engine.New(registry, contexts, func(o *engine.Options) {
		if opts.MaxConcurrentTasks > 0 {
			o.MaxConcurrentTasks = opts.MaxConcurrentTasks
		}
		o.Logger = opts.Logger
	})

	return &Agent{
		opts:     opts,
		kv:       opts.KV,
		contexts: contexts,
		registry: registry,
		engine:   eng,
	}
}

// NewFromConfig creates an Agent wired per the loaded configuration: the
// selected storage backend, history bounds and the concurrency ceiling.
func NewFromConfig(cfg config.Config, logger logging.Logger) (*Agent, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	kvs, err := openBackend(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	return New(func(o *Options) {
		o.KV = kvs
		o.MaxHistory = cfg.Context.MaxHistory
		o.ContextWindow = cfg.Context.ContextWindow
		o.MaxConcurrentTasks = cfg.Engine.MaxConcurrentTasks
		o.Logger = logger
	}), nil
}

func openBackend(sc config.StorageConfig, logger logging.Logger) (core.KVStore, error) {
	switch sc.Backend {
	case config.BackendMemory:
		return kv.NewInMemory(logger), nil
	case config.BackendYAML:
		return kv.NewYAML(sc.Path, logger)
	case config.BackendJSON:
		return kv.NewJSON(filepath.Join(sc.Path, "store.json"), logger)
	case config.BackendSQLite:
		return sqlitekv.Open(filepath.Join(sc.Path, "store.db"), logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}
}

// RegisterSkill adds a skill to the underlying registry.
func (a *Agent) RegisterSkill(s core.Skill) { a.registry.Register(s) }

// DiscoverSkills registers every skill the given sources expose.
func (a *Agent) DiscoverSkills(sources ...skill.Source) { a.registry.Discover(sources...) }

// Run creates a task for the named skill and executes it synchronously. The
// task is returned alongside the result so callers can inspect status and
// timing; it is recorded in the engine history either way.
func (a *Agent) Run(ctx context.Context, name, skillName string, params map[string]any) (*core.Task, any, error) {
	task := core.NewTask(name, skillName, params)
	result, err := a.engine.ExecuteTask(ctx, task)
	return task, result, err
}

// RunBatch executes the given tasks concurrently, bounded by the configured
// ceiling. Results align with the input order.
func (a *Agent) RunBatch(ctx context.Context, tasks []*core.Task) []engine.Result {
	return a.engine.RunBatch(ctx, tasks)
}

// StartSession creates a fresh session with a generated id and makes it
// current.
func (a *Agent) StartSession() *core.Session {
	session, _ := a.contexts.CreateSession("")
	return session
}

// Contexts exposes the context store for direct session and scope access.
func (a *Agent) Contexts() *contextstore.Store { return a.contexts }

// Registry exposes the skill registry.
func (a *Agent) Registry() *skill.Registry { return a.registry }

// Engine exposes the task engine for history and cancellation.
func (a *Agent) Engine() *engine.Engine { return a.engine }
