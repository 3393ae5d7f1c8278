package usecases

import (
	"sync"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

// HandlerRegistry maps node types to their handlers. The engine
// dispatches through it; custom handlers can be registered without
// touching the default set.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[flow.NodeType]NodeHandler
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[flow.NodeType]NodeHandler)}
}

// Register binds a handler to a node type, replacing any previous
// binding for that type.
func (r *HandlerRegistry) Register(nodeType flow.NodeType, h NodeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[nodeType] = h
}

// Get returns the handler for a node type.
func (r *HandlerRegistry) Get(nodeType flow.NodeType) (NodeHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[nodeType]
	return h, ok
}

// Has reports whether a handler is registered for the node type.
func (r *HandlerRegistry) Has(nodeType flow.NodeType) bool {
	_, ok := r.Get(nodeType)
	return ok
}

// Types returns the registered node types.
func (r *HandlerRegistry) Types() []flow.NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]flow.NodeType, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	return out
}
