package workflow

import (
	"fmt"
	"sync"
)

// Registry holds the set of registered workflow handlers.
//
// Registration happens once at startup; lookups happen on every turn. The
// registry preserves registration order so prompts, announcements, and the
// keyword fallback scan are deterministic run to run.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Handler
	ordered []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Handler)}
}

// Register adds h under its descriptor name. Returns ErrDuplicateWorkflow if
// the name is already taken and an error for an empty name.
func (r *Registry) Register(h Handler) error {
	desc := h.Describe()
	if desc.Name == "" {
		return fmt.Errorf("workflow: handler has empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[desc.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateWorkflow, desc.Name)
	}
	r.byName[desc.Name] = h
	r.ordered = append(r.ordered, desc.Name)
	return nil
}

// Get returns the handler registered under name, or ErrWorkflowNotFound.
func (r *Registry) Get(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWorkflowNotFound, name)
	}
	return h, nil
}

// List returns all handlers in registration order.
func (r *Registry) List() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Handler, 0, len(r.ordered))
	for _, name := range r.ordered {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns all registered workflow names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.ordered))
	for _, name := range r.ordered {
		out = append(out, r.byName[name].Describe())
	}
	return out
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}
