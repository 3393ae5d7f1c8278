// Package memory provides in-memory store implementations, suitable for
// tests and local single-process usage.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

// FlowStore is a thread-safe in-memory flow repository.
type FlowStore struct {
	mu    sync.RWMutex
	flows map[string]*flow.Flow
}

// NewFlowStore creates an empty in-memory flow store.
func NewFlowStore() *FlowStore {
	return &FlowStore{flows: make(map[string]*flow.Flow)}
}

// Save validates and stores a flow, replacing any prior version.
func (s *FlowStore) Save(ctx context.Context, f *flow.Flow) error {
	if f == nil || f.ID == "" {
		return fmt.Errorf("flow must have an ID")
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid flow: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[f.ID] = f
	return nil
}

// Get returns the flow with the given ID.
func (s *FlowStore) Get(ctx context.Context, id string) (*flow.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flows[id]
	if !ok {
		return nil, flow.ErrFlowNotFound
	}
	return f, nil
}

// List returns every stored flow.
func (s *FlowStore) List(ctx context.Context) ([]*flow.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*flow.Flow, 0, len(s.flows))
	for _, f := range s.flows {
		out = append(out, f)
	}
	return out, nil
}

// Delete removes a flow by ID.
func (s *FlowStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flows[id]; !ok {
		return flow.ErrFlowNotFound
	}
	delete(s.flows, id)
	return nil
}
