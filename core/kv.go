package core

// KVStore is the pluggable persistence contract backing the context store.
// Implementations persist named blobs in whatever format they choose (YAML
// file per key, single aggregate JSON file, a database table, ...).
//
// Failure policy: mutating operations never panic or return errors. A true
// return from Save is a durability promise; a false return means the value
// may not have reached storage and the caller should treat the operation as
// not-happened. Implementations log the underlying cause themselves.
type KVStore interface {
	// Save persists value under key, overwriting any prior value.
	Save(key string, value any) bool

	// Load decodes the persisted value for key into out (a pointer). It
	// returns false, without error, when the key was never saved or has
	// been deleted.
	Load(key string, out any) bool

	// Delete removes the value. False when the key did not exist or the
	// removal failed.
	Delete(key string) bool

	// Exists reports whether a value is persisted under key.
	Exists(key string) bool

	// ListKeys returns all persisted keys in no significant order.
	ListKeys() []string
}
