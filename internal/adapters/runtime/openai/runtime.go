// Package openai adapts an OpenAI-compatible chat completion API to the
// engine's streaming agent runtime. Agent definitions map onto a system
// prompt plus one user message; skills are folded into the system
// prompt since chat completions carry no separate skill channel.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/sipsyai/agentflow/internal/app/usecases"
)

// Runtime implements usecases.AgentRuntime over the OpenAI API.
type Runtime struct {
	client       *openai.Client
	defaultModel string
	temperature  float32
}

// Option configures the runtime.
type Option func(*Runtime)

// WithTemperature sets the sampling temperature for all sessions.
func WithTemperature(t float32) Option {
	return func(r *Runtime) { r.temperature = t }
}

// NewRuntime creates a runtime against api.openai.com.
func NewRuntime(apiKey, defaultModel string, opts ...Option) *Runtime {
	return NewRuntimeWithClient(openai.NewClient(apiKey), defaultModel, opts...)
}

// NewRuntimeWithBaseURL creates a runtime against any OpenAI-compatible
// endpoint, such as a local proxy in front of another provider.
func NewRuntimeWithBaseURL(apiKey, baseURL, defaultModel string, opts ...Option) *Runtime {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return NewRuntimeWithClient(openai.NewClientWithConfig(cfg), defaultModel, opts...)
}

// NewRuntimeWithClient wires a preconfigured client, used by tests.
func NewRuntimeWithClient(client *openai.Client, defaultModel string, opts ...Option) *Runtime {
	r := &Runtime{client: client, defaultModel: defaultModel}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start opens a streaming chat completion and pumps its deltas onto the
// session channel until the stream ends or the session is stopped.
func (r *Runtime) Start(ctx context.Context, cfg usecases.SessionConfig) (usecases.Session, error) {
	model := cfg.Model
	if model == "" {
		model = r.defaultModel
	}

	req := openai.ChatCompletionRequest{
		Model:  model,
		Stream: true,
		StreamOptions: &openai.StreamOptions{
			IncludeUsage: true,
		},
		Temperature: r.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(cfg)},
			{Role: openai.ChatMessageRoleUser, Content: cfg.Prompt},
		},
	}
	if cfg.MaxTokens > 0 {
		req.MaxTokens = cfg.MaxTokens
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := r.client.CreateChatCompletionStream(streamCtx, req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open completion stream: %w", err)
	}

	sess := &session{
		id:     uuid.NewString(),
		events: make(chan usecases.SessionEvent, 16),
		ctx:    streamCtx,
		cancel: cancel,
	}
	go sess.pump(stream)
	return sess, nil
}

// systemPrompt appends each skill as an instruction block after the
// agent's own system prompt.
func systemPrompt(cfg usecases.SessionConfig) string {
	var b strings.Builder
	b.WriteString(cfg.SystemPrompt)
	for _, skill := range cfg.Skills {
		if skill.Content == "" {
			continue
		}
		fmt.Fprintf(&b, "\n\n## Skill: %s\n%s", skill.Name, skill.Content)
	}
	return b.String()
}

type session struct {
	id     string
	events chan usecases.SessionEvent
	ctx    context.Context
	cancel context.CancelFunc
}

// send delivers an event unless the session has been stopped; a stopped
// consumer no longer drains the channel.
func (s *session) send(ev usecases.SessionEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *session) ID() string { return s.id }

func (s *session) Events() <-chan usecases.SessionEvent { return s.events }

// Stop aborts the underlying stream. The pump goroutine observes the
// cancellation on its next Recv and closes the channel.
func (s *session) Stop(ctx context.Context) error {
	s.cancel()
	return nil
}

// pump translates stream chunks into session events. The final chunk
// carries usage when the API supports stream usage reporting.
func (s *session) pump(stream *openai.ChatCompletionStream) {
	defer close(s.events)
	defer stream.Close()
	defer s.cancel()

	var usage *usecases.Usage
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			if s.send(usecases.SessionEvent{Type: usecases.SessionEventResult, Usage: usage}) {
				s.send(usecases.SessionEvent{Type: usecases.SessionEventClosed})
			}
			return
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.send(usecases.SessionEvent{Type: usecases.SessionEventError, Err: err})
			return
		}

		if resp.Usage != nil {
			usage = &usecases.Usage{
				InputTokens:  resp.Usage.PromptTokens,
				OutputTokens: resp.Usage.CompletionTokens,
				TotalTokens:  resp.Usage.TotalTokens,
			}
		}
		for _, choice := range resp.Choices {
			if choice.Delta.Content != "" {
				if !s.send(usecases.SessionEvent{Type: usecases.SessionEventText, Text: choice.Delta.Content}) {
					return
				}
			}
		}
	}
}
