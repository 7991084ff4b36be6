package provider

import (
	"fmt"
	"sync"
)

// Registry maps provider names to their implementations.
// It is safe for concurrent reads; Register should only be called at startup,
// Swap on config hot-reload.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider. Panics on duplicate name to surface misconfiguration early.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[p.Name()]; exists {
		panic(fmt.Sprintf("provider registry: duplicate name %q", p.Name()))
	}
	r.providers[p.Name()] = p
}

// Swap replaces the full provider set (used on config hot-reload).
func (r *Registry) Swap(providers []Provider) {
	next := make(map[string]Provider, len(providers))
	for _, p := range providers {
		next[p.Name()] = p
	}
	r.mu.Lock()
	r.providers = next
	r.mu.Unlock()
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("no provider registered for %q", name)
	}
	return p, nil
}

// Names returns all registered provider names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for k := range r.providers {
		out = append(out, k)
	}
	return out
}
