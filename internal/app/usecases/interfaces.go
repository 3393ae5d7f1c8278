package usecases

import (
	"context"

	"github.com/sipsyai/agentflow/internal/app/dto"
	"github.com/sipsyai/agentflow/internal/core/flow"
)

// FlowRepository defines flow persistence. The engine only reads; the
// editor surface saves and deletes.
type FlowRepository interface {
	Save(ctx context.Context, f *flow.Flow) error
	Get(ctx context.Context, id string) (*flow.Flow, error)
	List(ctx context.Context) ([]*flow.Flow, error)
	Delete(ctx context.Context, id string) error
}

// Agent is an externally defined AI behavior referenced by agent nodes.
type Agent struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	SystemPrompt    string   `json:"systemPrompt,omitempty"`
	DefaultModel    string   `json:"defaultModel,omitempty"`
	AllowedTools    []string `json:"allowedTools,omitempty"`
	DisallowedTools []string `json:"disallowedTools,omitempty"`
	WorkingDir      string   `json:"workingDir,omitempty"`
}

// Skill is a named, reusable capability attachable to an invocation.
type Skill struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Content      string   `json:"content"`
	AllowedTools []string `json:"allowedTools,omitempty"`
}

// AgentStore fetches agent definitions from the external content store.
type AgentStore interface {
	GetAgent(ctx context.Context, id string) (*Agent, error)
}

// SkillStore fetches skill definitions from the external content store.
type SkillStore interface {
	GetSkill(ctx context.Context, id string) (*Skill, error)
}

// NodeHandler executes one node type. Handlers receive the node and the
// run's execution context and report their outcome as a NodeResult;
// the returned error is reserved for infrastructure faults that make
// the result itself meaningless.
type NodeHandler interface {
	Execute(ctx context.Context, node *flow.Node, execCtx *dto.ExecutionContext) (*dto.NodeResult, error)
}

// DeliverySink dispatches a formatted result for one output type. The
// returned value becomes the node's externally visible output.
type DeliverySink interface {
	Deliver(ctx context.Context, cfg *flow.OutputConfig, payload []byte, contentType string) (any, error)
}
