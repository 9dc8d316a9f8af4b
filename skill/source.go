package skill

import "github.com/hupe1980/skillmesh/core"

// Source is a configured origin of skill implementations. Discovery walks
// every source once at startup; Reload asks the recorded source to resolve
// a name again, which lets a source back skills with files, plugins or
// remote catalogs without the registry caring.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Skills returns every implementation the source currently provides.
	Skills() []core.Skill

	// Resolve re-acquires a single implementation by skill name.
	Resolve(name string) (core.Skill, bool)
}

// StaticSource is the compiled-in Source: a fixed set of skills named at
// construction. Resolve re-reads from the same set, so hot reload over a
// static source is effectively a no-op refresh.
type StaticSource struct {
	name   string
	skills []core.Skill
}

// NewStaticSource builds a static source with the given display name.
func NewStaticSource(name string, skills ...core.Skill) *StaticSource {
	return &StaticSource{name: name, skills: skills}
}

// Name implements Source.
func (s *StaticSource) Name() string { return s.name }

// Skills implements Source.
func (s *StaticSource) Skills() []core.Skill {
	out := make([]core.Skill, len(s.skills))
	copy(out, s.skills)
	return out
}

// Resolve implements Source.
func (s *StaticSource) Resolve(name string) (core.Skill, bool) {
	for _, sk := range s.skills {
		if sk != nil && sk.Name() == name {
			return sk, true
		}
	}
	return nil, false
}
