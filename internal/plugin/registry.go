package plugin

import (
	"sort"
	"sync"
)

// Registry records the plugins whose declared dependencies have been verified
// or installed during this process. Membership is monotonic: names are added
// and never removed, so repeat resolutions of the same plugin skip the
// installer entirely. Safe for concurrent use.
//
// The registry is injected rather than owned by the resolver so tests and
// embedders can supply their own.
type Registry struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewRegistry returns an empty install registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Add marks name as installed and reports whether it was newly added.
func (r *Registry) Add(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[name]; ok {
		return false
	}
	r.names[name] = struct{}{}
	return true
}

// Contains reports whether name has completed dependency installation in
// this process.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.names[name]
	return ok
}

// Names returns the registered plugin names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
