package testutil

import (
	"encoding/json"
	"sync"

	"github.com/hupe1980/skillmesh/core"
)

// FlakyKV is a core.KVStore whose writes can be forced to fail, for
// exercising best-effort persistence paths. Reads always succeed against
// whatever was stored before failures were enabled.
type FlakyKV struct {
	mu       sync.Mutex
	data     map[string]json.RawMessage
	FailSave bool
	Saves    int
}

// NewFlakyKV constructs an empty FlakyKV with saves enabled.
func NewFlakyKV() *FlakyKV {
	return &FlakyKV{data: map[string]json.RawMessage{}}
}

// Save implements core.KVStore. It counts every attempt and rejects the
// write when FailSave is set.
func (f *FlakyKV) Save(key string, value any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Saves++
	if f.FailSave {
		return false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	f.data[key] = raw
	return true
}

// Load implements core.KVStore.
func (f *FlakyKV) Load(key string, out any) bool {
	f.mu.Lock()
	raw, ok := f.data[key]
	f.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// Delete implements core.KVStore.
func (f *FlakyKV) Delete(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return false
	}
	delete(f.data, key)
	return true
}

// Exists implements core.KVStore.
func (f *FlakyKV) Exists(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

// ListKeys implements core.KVStore.
func (f *FlakyKV) ListKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	return keys
}

var _ core.KVStore = (*FlakyKV)(nil)
