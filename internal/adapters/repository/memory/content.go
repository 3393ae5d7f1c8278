package memory

import (
	"context"
	"sync"

	"github.com/sipsyai/agentflow/internal/app/dto"
	"github.com/sipsyai/agentflow/internal/app/usecases"
)

// ContentStore holds agent and skill definitions in memory. It stands
// in for the external content-management backend during tests and local
// runs.
type ContentStore struct {
	mu     sync.RWMutex
	agents map[string]usecases.Agent
	skills map[string]usecases.Skill
}

// NewContentStore creates an empty content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		agents: make(map[string]usecases.Agent),
		skills: make(map[string]usecases.Skill),
	}
}

// PutAgent registers an agent definition.
func (s *ContentStore) PutAgent(a usecases.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a.ID] = a
}

// PutSkill registers a skill definition.
func (s *ContentStore) PutSkill(sk usecases.Skill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skills[sk.ID] = sk
}

// GetAgent implements usecases.AgentStore.
func (s *ContentStore) GetAgent(ctx context.Context, id string) (*usecases.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[id]
	if !ok {
		return nil, &dto.NotFoundError{Kind: "agent", ID: id}
	}
	return &a, nil
}

// GetSkill implements usecases.SkillStore.
func (s *ContentStore) GetSkill(ctx context.Context, id string) (*usecases.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sk, ok := s.skills[id]
	if !ok {
		return nil, &dto.NotFoundError{Kind: "skill", ID: id}
	}
	return &sk, nil
}
