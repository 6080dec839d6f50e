package dispatch

import (
	"sync"

	"github.com/goliatone/go-chatrelay/core"
)

// Registry maps event kinds to ordered handler lists. Registration is
// expected to complete before serving begins; reads take a snapshot so a
// concurrent registration can never affect an in-flight dispatch pass.
type Registry struct {
	mu       sync.RWMutex
	handlers map[core.EventKind][]core.Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: map[core.EventKind][]core.Handler{},
	}
}

// Register appends a handler to the kind's invocation order. The kind set
// is closed: anything outside it is a registration error, not a new key.
func (r *Registry) Register(kind core.EventKind, handler core.Handler) error {
	if r == nil {
		return core.Internal("dispatch: registry is nil", nil)
	}
	if handler == nil {
		return core.Internal("dispatch: handler is nil", map[string]any{"kind": string(kind)})
	}
	if err := kind.Validate(); err != nil {
		return core.Internal("dispatch: "+err.Error(), map[string]any{"kind": string(kind)})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = append(r.handlers[kind], handler)
	return nil
}

// Snapshot returns a copy of the kind's current handler list.
func (r *Registry) Snapshot(kind core.EventKind) []core.Handler {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	registered := r.handlers[kind]
	if len(registered) == 0 {
		return nil
	}
	return append([]core.Handler(nil), registered...)
}
