// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when constructing core model objects (sessions, tasks,
// messages) and simulating storage failures. These helpers are intentionally
// minimal and not intended for production usage.
package testutil
