package route

import (
	"context"
	"sync"
)

// Registry maps stable route identities to their current handlers. It
// exists for live component swaps: installing a new handler under a
// route's ID changes what renders without recompiling the tree or
// comparing function pointers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[ID]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[ID]Handler)}
}

// Install replaces the handler rendered for a route ID. Installing nil
// removes the override.
func (r *Registry) Install(id ID, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		delete(r.handlers, id)
		return
	}
	r.handlers[id] = h
}

// Remove drops an installed override.
func (r *Registry) Remove(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, id)
}

// Lookup returns the installed override for id.
func (r *Registry) Lookup(id ID) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[id]
	return h, ok
}

// Has reports whether a handler would resolve for the route, without
// invoking its lazy loader.
func (r *Registry) Has(rt *Route) bool {
	if _, ok := r.Lookup(rt.id); ok {
		return true
	}
	return rt.lazy != nil || rt.handler != nil
}

// Resolve returns the effective handler for a route: an installed
// override first, then the route's lazy handler, then its static
// handler. Both returns are nil when the route renders nothing of
// its own.
func (r *Registry) Resolve(ctx context.Context, rt *Route) (Handler, error) {
	if h, ok := r.Lookup(rt.id); ok {
		return h, nil
	}
	if rt.lazy != nil {
		return rt.lazy.Resolve(ctx)
	}
	return rt.handler, nil
}
