package model

import (
	"fmt"
	"slices"
	"sync"
)

// Factory constructs a fresh model unit.
type Factory func() Unit

// Registry maps model names to constructors.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a model under name. It panics if name is empty or already
// registered, since registration happens from init functions.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" || f == nil {
		panic("model: Register called with empty name or nil factory")
	}
	if _, dup := r.factories[name]; dup {
		panic(fmt.Sprintf("model: Register called twice for %q", name))
	}
	r.factories[name] = f
}

// Lookup returns the constructor registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered model names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Default is the registry bundled models register into.
var Default = NewRegistry()

// Register adds a model to the Default registry.
func Register(name string, f Factory) {
	Default.Register(name, f)
}
