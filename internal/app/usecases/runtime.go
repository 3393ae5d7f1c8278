package usecases

import (
	"context"
)

// PermissionMode controls how the runtime resolves tool permission
// prompts during a session.
type PermissionMode string

const (
	// PermissionAutoAccept approves tool use without prompting,
	// appropriate for unattended flow runs.
	PermissionAutoAccept PermissionMode = "acceptEdits"
	PermissionPrompt     PermissionMode = "default"
)

// SessionConfig describes one agent execution session.
type SessionConfig struct {
	Prompt          string
	SystemPrompt    string
	Model           string
	MaxTokens       int
	WorkingDir      string
	AllowedTools    []string
	DisallowedTools []string
	Skills          []Skill
	PermissionMode  PermissionMode
}

// SessionEventType tags events emitted on a session's channel.
type SessionEventType string

const (
	// SessionEventText carries one streamed assistant text fragment.
	SessionEventText SessionEventType = "text"
	// SessionEventResult is the terminal usage-bearing event.
	SessionEventResult SessionEventType = "result"
	// SessionEventClosed signals a graceful close.
	SessionEventClosed SessionEventType = "closed"
	// SessionEventError signals a session-reported failure.
	SessionEventError SessionEventType = "error"
)

// Usage is the token accounting reported by the terminal result event.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// SessionEvent is one entry on a session's streaming channel.
type SessionEvent struct {
	Type  SessionEventType
	Text  string
	Usage *Usage
	Err   error
}

// Session is one live agent execution. Events delivers the stream;
// Stop asks the runtime to terminate the session and is safe to call
// more than once.
type Session interface {
	ID() string
	Events() <-chan SessionEvent
	Stop(ctx context.Context) error
}

// AgentRuntime starts agent execution sessions against the external
// long-running runtime.
type AgentRuntime interface {
	Start(ctx context.Context, cfg SessionConfig) (Session, error)
}
