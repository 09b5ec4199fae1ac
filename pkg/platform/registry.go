package platform

import (
	"sort"
	"sync"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/errors"
)

// Registry maps platform identifiers to adapter implementations. It is
// populated once at startup, so resolution cannot fail at runtime for a
// platform the build knows about.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Platform
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Platform)}
}

// Register adds an adapter. Registering an empty name or the same name
// twice is a wiring bug and is rejected.
func (r *Registry) Register(p Platform) error {
	if p == nil || p.Name() == "" {
		return errors.New(errors.ErrInvalidRequest, "adapter requires a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[p.Name()]; exists {
		return errors.New(errors.ErrInvalidRequest, "adapter already registered").WithPlatform(p.Name())
	}
	r.adapters[p.Name()] = p
	return nil
}

// Resolve returns the adapter for the platform identifier.
func (r *Registry) Resolve(name string) (Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[name]
	if !ok {
		return nil, errors.New(errors.ErrUnsupportedPlatform, "unsupported platform").WithPlatform(name)
	}
	return adapter, nil
}

// Names returns the registered platform identifiers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close shuts down every registered adapter, keeping the first error.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, adapter := range r.adapters {
		if err := adapter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
