// Package hook lets host events be routed to named handlers.
package hook

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoHandler is returned by Emit when no handler is hooked on the event.
var ErrNoHandler = errors.New("no handler for event")

// Handler receives the event argument and returns the event's result.
type Handler func(ctx context.Context, arg any) (any, error)

type entry struct {
	id      uint64
	owner   string
	handler Handler
}

// Registry maps event names to handlers in the order they were hooked.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	nextID uint64
	hooks  map[string][]entry
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string][]entry)}
}

// Hook attaches handler to event on behalf of owner. The returned function
// removes this hook; calling it more than once is a no-op.
func (r *Registry) Hook(event, owner string, handler Handler) (dispose func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.hooks[event] = append(r.hooks[event], entry{id: id, owner: owner, handler: handler})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(event, id) })
	}
}

func (r *Registry) remove(event string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hooks := r.hooks[event]
	for i, e := range hooks {
		if e.id == id {
			r.hooks[event] = append(hooks[:i:i], hooks[i+1:]...)
			break
		}
	}
	if len(r.hooks[event]) == 0 {
		delete(r.hooks, event)
	}
}

// Owners returns the owners hooked on event, in hook order.
func (r *Registry) Owners(event string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make([]string, 0, len(r.hooks[event]))
	for _, e := range r.hooks[event] {
		owners = append(owners, e.owner)
	}
	return owners
}

// Emit calls every handler hooked on event, in hook order, and returns
// their results. It stops at the first handler error.
func (r *Registry) Emit(ctx context.Context, event string, arg any) ([]any, error) {
	r.mu.RLock()
	hooks := make([]entry, len(r.hooks[event]))
	copy(hooks, r.hooks[event])
	r.mu.RUnlock()

	if len(hooks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, event)
	}

	results := make([]any, 0, len(hooks))
	for _, e := range hooks {
		res, err := e.handler(ctx, arg)
		if err != nil {
			return results, fmt.Errorf("%s handler %s: %w", event, e.owner, err)
		}
		results = append(results, res)
	}
	return results, nil
}
