package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/sipsyai/agentflow/internal/app/dto"
	"github.com/sipsyai/agentflow/internal/core/flow"
)

// fakeSession replays a scripted event sequence. A zero delay emits
// events immediately; hang keeps the channel open forever to exercise
// timeouts.
type fakeSession struct {
	id      string
	events  chan SessionEvent
	stopped bool
	mu      sync.Mutex
}

func newFakeSession(id string, script []SessionEvent, delay time.Duration, hang bool) *fakeSession {
	s := &fakeSession{id: id, events: make(chan SessionEvent, len(script)+1)}
	go func() {
		for _, ev := range script {
			if delay > 0 {
				time.Sleep(delay)
			}
			s.events <- ev
		}
		if !hang {
			close(s.events)
		}
	}()
	return s
}

func (s *fakeSession) ID() string                   { return s.id }
func (s *fakeSession) Events() <-chan SessionEvent  { return s.events }
func (s *fakeSession) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *fakeSession) wasStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// fakeRuntime records the configs it was started with and hands out
// scripted sessions.
type fakeRuntime struct {
	mu       sync.Mutex
	configs  []SessionConfig
	script   []SessionEvent
	delay    time.Duration
	hang     bool
	startErr error
	sessions []*fakeSession
	// failures makes the first N sessions end with an error event.
	failures int
}

func (r *fakeRuntime) Start(ctx context.Context, cfg SessionConfig) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return nil, r.startErr
	}
	r.configs = append(r.configs, cfg)
	script := r.script
	if r.failures > 0 {
		r.failures--
		script = []SessionEvent{{Type: SessionEventError, Err: errScripted}}
	}
	s := newFakeSession("sess-1", script, r.delay, r.hang)
	r.sessions = append(r.sessions, s)
	return s, nil
}

func (r *fakeRuntime) startedConfigs() []SessionConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SessionConfig, len(r.configs))
	copy(out, r.configs)
	return out
}

var errScripted = &dto.ExecutionError{Reason: "scripted failure"}

// happyScript is a normal streamed completion.
func happyScript(text string, in, out int) []SessionEvent {
	return []SessionEvent{
		{Type: SessionEventText, Text: text},
		{Type: SessionEventResult, Usage: &Usage{InputTokens: in, OutputTokens: out}},
		{Type: SessionEventClosed},
	}
}

// fakeFlowStore is a minimal FlowRepository for engine tests.
type fakeFlowStore struct {
	mu    sync.Mutex
	flows map[string]*flow.Flow
}

func newFakeFlowStore(flows ...*flow.Flow) *fakeFlowStore {
	s := &fakeFlowStore{flows: make(map[string]*flow.Flow)}
	for _, f := range flows {
		s.flows[f.ID] = f
	}
	return s
}

func (s *fakeFlowStore) Save(ctx context.Context, f *flow.Flow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[f.ID] = f
	return nil
}

func (s *fakeFlowStore) Get(ctx context.Context, id string) (*flow.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flows[id]
	if !ok {
		return nil, flow.ErrFlowNotFound
	}
	return f, nil
}

func (s *fakeFlowStore) List(ctx context.Context) ([]*flow.Flow, error) { return nil, nil }
func (s *fakeFlowStore) Delete(ctx context.Context, id string) error    { return nil }

// fakeContent serves agents and skills from maps.
type fakeContent struct {
	agents map[string]Agent
	skills map[string]Skill
}

func (c *fakeContent) GetAgent(ctx context.Context, id string) (*Agent, error) {
	a, ok := c.agents[id]
	if !ok {
		return nil, &dto.NotFoundError{Kind: "agent", ID: id}
	}
	return &a, nil
}

func (c *fakeContent) GetSkill(ctx context.Context, id string) (*Skill, error) {
	s, ok := c.skills[id]
	if !ok {
		return nil, &dto.NotFoundError{Kind: "skill", ID: id}
	}
	return &s, nil
}

// captureSink records what was delivered and echoes the payload.
type captureSink struct {
	mu          sync.Mutex
	payloads    [][]byte
	contentType string
}

func (s *captureSink) Deliver(ctx context.Context, cfg *flow.OutputConfig, payload []byte, contentType string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	s.contentType = contentType
	return string(payload), nil
}
