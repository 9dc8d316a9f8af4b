// Package kv houses concrete implementations of the core.KVStore contract.
// The interface itself lives in the core package to centralize domain
// contracts; keeping only implementations here prevents higher level
// packages (context store, engine) from depending on concrete storage.
//
// Shipped backends: InMemory (tests, demos), YAML (one file per key) and
// JSON (a single aggregate file). A SQLite backend lives in the sqlitekv
// sub-package so its driver dependency stays isolated. Additional backends
// (Redis, Postgres, ...) can be added the same way without changing any
// calling code.
package kv
