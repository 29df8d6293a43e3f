package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrAdapterNotFound is returned when executing an unregistered adapter.
var ErrAdapterNotFound = errors.New("adapter not found")

// AdapterFunction defines the signature of a prop-source adapter.
// It receives a context and the resolved adapter inputs, and returns the
// adapted value or an error.
type AdapterFunction func(ctx context.Context, args map[string]any) (any, error)

// Registry manages the available adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]AdapterFunction
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]AdapterFunction),
	}
}

// Register adds an adapter to the registry.
// If an adapter with the same id exists, it is overwritten.
func (r *Registry) Register(id string, fn AdapterFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[id] = fn
}

// Has reports whether an adapter is registered under id.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.adapters[id]
	return ok
}

// IDs returns the registered adapter ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Execute looks up an adapter by id and executes it.
// Returns an error wrapping ErrAdapterNotFound if it is not registered.
func (r *Registry) Execute(ctx context.Context, id string, args map[string]any) (any, error) {
	r.mu.RLock()
	fn, ok := r.adapters[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, id)
	}

	return fn(ctx, args)
}
