package skill

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/skillmesh/core"
	"github.com/hupe1980/skillmesh/logging"
)

// Options configures a Registry.
type Options struct {
	// HotReload enables Reload; when disabled, Reload always returns false.
	HotReload bool
	// Logger receives discovery warnings; defaults to the no-op logger.
	Logger logging.Logger
}

// Registry maps skill names to implementations. Registration is explicit at
// startup rather than scanned off the filesystem; Sources package up groups
// of skills so wiring stays a one-liner and Reload can re-acquire an
// implementation from wherever it came from.
//
// Name collisions are not errors: the last registration wins.
type Registry struct {
	hotReload bool
	logger    logging.Logger

	mu      sync.RWMutex
	skills  map[string]core.Skill
	origins map[string]Source
}

// NewRegistry constructs an empty registry.
func NewRegistry(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		hotReload: opts.HotReload,
		logger:    opts.Logger,
		skills:    map[string]core.Skill{},
		origins:   map[string]Source{},
	}
}

// vet checks the parts of the skill contract the type system cannot: the
// execution signature itself is enforced at compile time, so validation is
// reduced to metadata sanity.
func vet(s core.Skill) error {
	if s == nil {
		return fmt.Errorf("nil skill")
	}
	if s.Name() == "" {
		return fmt.Errorf("skill has empty name")
	}
	return nil
}

// Register adds a single skill, overwriting any previous entry with the
// same name. Invalid skills are skipped with a warning.
func (r *Registry) Register(s core.Skill) {
	if err := vet(s); err != nil {
		r.logger.Warn("skipping invalid skill", "error", err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.skills[s.Name()]; exists {
		r.logger.Warn("skill re-registered, previous entry replaced", "skill", s.Name())
	}
	r.skills[s.Name()] = s
	delete(r.origins, s.Name())
	r.logger.Info("registered skill", "skill", s.Name(), "version", s.Version())
}

// Discover registers every skill each source yields. A source or skill that
// fails validation is skipped with a warning; discovery never aborts on a
// single bad implementation.
func (r *Registry) Discover(sources ...Source) {
	for _, src := range sources {
		if src == nil {
			r.logger.Warn("skipping nil skill source")
			continue
		}
		for _, s := range src.Skills() {
			if err := vet(s); err != nil {
				r.logger.Warn("skipping invalid skill", "source", src.Name(), "error", err)
				continue
			}
			r.mu.Lock()
			r.skills[s.Name()] = s
			r.origins[s.Name()] = src
			r.mu.Unlock()
			r.logger.Info("discovered skill", "skill", s.Name(), "source", src.Name())
		}
	}
}

// Get returns the registered skill for name.
func (r *Registry) Get(name string) (core.Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[name]
	return s, ok
}

// List returns metadata snapshots for every registered skill, sorted by
// name. No bound context is needed: metadata is the pure half of the skill
// contract.
func (r *Registry) List() []core.SkillInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]core.SkillInfo, 0, len(r.skills))
	for _, s := range r.skills {
		infos = append(infos, core.InfoOf(s))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Reload re-acquires the implementation behind name from the source that
// provided it, replacing the registered entry. It returns false when hot
// reload is disabled, the skill was registered directly (no source), or the
// source can no longer resolve the name.
func (r *Registry) Reload(name string) bool {
	if !r.hotReload {
		r.logger.Warn("hot reload attempted while disabled", "skill", name)
		return false
	}
	r.mu.RLock()
	src, ok := r.origins[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	s, ok := src.Resolve(name)
	if !ok || vet(s) != nil {
		return false
	}
	r.mu.Lock()
	r.skills[name] = s
	r.mu.Unlock()
	r.logger.Info("reloaded skill", "skill", name, "source", src.Name())
	return true
}
