// Package core provides the foundational domain types and contracts used by
// skillmesh. It defines the core abstractions for:
//
//   - Tasks (single requests to execute a named skill, tracked through a
//     status lifecycle)
//   - Sessions and Messages (bounded conversational containers with
//     key/value context)
//   - Skills (pluggable capability units split into a pure metadata contract
//     and a context-bound execution contract)
//   - The key/value persistence contract backing the context store
//
// The package intentionally keeps implementation concerns (persistence
// backends, engine orchestration, concrete skills) out of scope, exposing
// small interfaces so higher layers can swap backends without touching
// calling code.
package core
