package agentflow

import (
	"context"
	"log/slog"

	"github.com/sipsyai/agentflow/internal/adapters/delivery"
	"github.com/sipsyai/agentflow/internal/adapters/repository/memory"
	"github.com/sipsyai/agentflow/internal/app/dto"
	"github.com/sipsyai/agentflow/internal/app/usecases"
	"github.com/sipsyai/agentflow/internal/core/cost"
	"github.com/sipsyai/agentflow/internal/core/flow"
)

// Re-export core flow types for convenience.
type (
	Flow            = flow.Flow
	Node            = flow.Node
	NodeType        = flow.NodeType
	InputConfig     = flow.InputConfig
	AgentConfig     = flow.AgentConfig
	OutputConfig    = flow.OutputConfig
	Field           = flow.Field
	Agent           = usecases.Agent
	Skill           = usecases.Skill
	ExecutionResult = dto.ExecutionResult
	ExecutionEvent  = dto.ExecutionEvent
)

const (
	NodeTypeInput  = flow.NodeTypeInput
	NodeTypeAgent  = flow.NodeTypeAgent
	NodeTypeOutput = flow.NodeTypeOutput
)

// Runtime wires the default in-memory engine around a caller-supplied
// agent runtime. Suitable for embedding and tests; the server binary
// assembles its own stack from configuration instead.
type Runtime struct {
	executor *usecases.FlowExecutor
	registry *usecases.HandlerRegistry
	flows    *memory.FlowStore
	content  *memory.ContentStore
}

// Options tunes the default runtime assembly.
type Options struct {
	// DefaultModel applies when neither node nor agent names a model.
	DefaultModel string
	// Rates overrides the built-in pricing table.
	Rates *cost.RateTable
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Sinks overrides the delivery sink set; by default only the
	// response sink is wired.
	Sinks map[flow.OutputType]usecases.DeliverySink
}

// NewRuntime assembles a flow engine with in-memory stores on top of
// the given agent runtime.
func NewRuntime(agentRuntime usecases.AgentRuntime, opts Options) *Runtime {
	rates := cost.DefaultRates()
	if opts.Rates != nil {
		rates = *opts.Rates
	}
	sinks := opts.Sinks
	if sinks == nil {
		sinks = delivery.DefaultSinks(nil, nil, nil, nil)
	}

	flows := memory.NewFlowStore()
	content := memory.NewContentStore()

	registry := usecases.NewHandlerRegistry()
	registry.Register(flow.NodeTypeInput, usecases.NewInputHandler())
	registry.Register(flow.NodeTypeAgent, usecases.NewAgentHandler(content, content, agentRuntime, rates, opts.DefaultModel))
	registry.Register(flow.NodeTypeOutput, usecases.NewOutputHandler(sinks))

	return &Runtime{
		executor: usecases.NewFlowExecutor(flows, registry, opts.Logger),
		registry: registry,
		flows:    flows,
		content:  content,
	}
}

// RegisterAgent makes an agent definition available to agent nodes.
func (rt *Runtime) RegisterAgent(a Agent) { rt.content.PutAgent(a) }

// RegisterSkill makes a skill definition available to agent nodes.
func (rt *Runtime) RegisterSkill(s Skill) { rt.content.PutSkill(s) }

// RegisterHandler binds a handler for a custom node type.
func (rt *Runtime) RegisterHandler(nodeType NodeType, h usecases.NodeHandler) {
	rt.registry.Register(nodeType, h)
}

// SaveFlow validates and stores a flow definition.
func (rt *Runtime) SaveFlow(ctx context.Context, f *Flow) error {
	return rt.flows.Save(ctx, f)
}

// Execute runs a stored flow to completion.
func (rt *Runtime) Execute(ctx context.Context, flowID string, input map[string]any) (*ExecutionResult, error) {
	return rt.executor.Execute(ctx, &dto.ExecutionRequest{FlowID: flowID, Input: input})
}

// ExecuteStream runs a stored flow, streaming node status events ahead
// of the terminal result.
func (rt *Runtime) ExecuteStream(ctx context.Context, flowID string, input map[string]any) (<-chan ExecutionEvent, error) {
	return rt.executor.ExecuteStream(ctx, &dto.ExecutionRequest{FlowID: flowID, Input: input})
}

// RunSimple saves the flow and executes it in one call.
func (rt *Runtime) RunSimple(ctx context.Context, f *Flow, input map[string]any) (*ExecutionResult, error) {
	if err := rt.flows.Save(ctx, f); err != nil {
		return nil, err
	}
	return rt.Execute(ctx, f.ID, input)
}

// Cancel aborts an in-flight execution.
func (rt *Runtime) Cancel(executionID string) error {
	return rt.executor.Cancel(executionID)
}

// Running lists in-flight execution IDs.
func (rt *Runtime) Running() []string {
	return rt.executor.Running()
}
