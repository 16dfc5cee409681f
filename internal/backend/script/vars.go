package script

import (
	"maps"
	"sort"
	"sync"
)

// Vars is the per-scenario world of the script backend: a set of named
// values shared by the scenario's steps.
type Vars struct {
	mu     sync.Mutex
	values map[string]any
}

// NewVars creates an empty Vars.
func NewVars() *Vars {
	return &Vars{values: make(map[string]any)}
}

// Set stores value under key.
func (v *Vars) Set(key string, value any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[key] = value
}

// Get returns the value under key, or nil.
func (v *Vars) Get(key string) any {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.values[key]
}

// Snapshot returns a copy of every value.
func (v *Vars) Snapshot() map[string]any {
	v.mu.Lock()
	defer v.mu.Unlock()
	return maps.Clone(v.values)
}

// Keys returns the stored keys in sorted order.
func (v *Vars) Keys() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
