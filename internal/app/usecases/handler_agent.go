package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sipsyai/agentflow/internal/app/dto"
	"github.com/sipsyai/agentflow/internal/core/cost"
	"github.com/sipsyai/agentflow/internal/core/flow"
	"github.com/sipsyai/agentflow/internal/core/template"
)

// DefaultAgentTimeout applies when an agent node declares no timeout.
const DefaultAgentTimeout = 120 * time.Second

// AgentHandler invokes the external agent execution runtime for one
// node: it resolves the agent definition and skills, interpolates the
// prompt template, opens a streaming session, and prices the usage the
// session reports.
type AgentHandler struct {
	agents       AgentStore
	skills       SkillStore
	runtime      AgentRuntime
	rates        cost.RateTable
	defaultModel string
}

// NewAgentHandler wires the agent node handler. defaultModel is the
// global fallback applied when neither the node nor the agent names a
// model.
func NewAgentHandler(agents AgentStore, skills SkillStore, runtime AgentRuntime, rates cost.RateTable, defaultModel string) *AgentHandler {
	return &AgentHandler{
		agents:       agents,
		skills:       skills,
		runtime:      runtime,
		rates:        rates,
		defaultModel: defaultModel,
	}
}

// Execute runs one agent invocation end to end. Failures are reported
// on the NodeResult so the engine's retry policy can apply around the
// whole sequence.
func (h *AgentHandler) Execute(ctx context.Context, node *flow.Node, execCtx *dto.ExecutionContext) (*dto.NodeResult, error) {
	cfg := node.Agent
	if cfg == nil {
		return &dto.NodeResult{Success: false, Error: flow.ErrVariantMismatch.Error()}, nil
	}

	agent, err := h.agents.GetAgent(ctx, cfg.AgentID)
	if err != nil {
		nferr := &dto.NotFoundError{Kind: "agent", ID: cfg.AgentID}
		return &dto.NodeResult{Success: false, Error: nferr.Error()}, nil
	}

	// Variables win over accumulated data on path conflicts.
	prompt := template.Interpolate(cfg.PromptTemplate, execCtx.Data, execCtx.Variables)
	model := h.resolveModel(cfg, agent)
	skills := h.resolveSkills(ctx, node.NodeID, cfg.SkillIDs, execCtx)

	timeout := DefaultAgentTimeout
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}

	execCtx.Log(slog.LevelInfo, "starting agent session", node.NodeID, map[string]any{
		"agent_id": cfg.AgentID,
		"model":    model,
		"skills":   len(skills),
	})

	sess, err := h.runtime.Start(ctx, SessionConfig{
		Prompt:          prompt,
		SystemPrompt:    agent.SystemPrompt,
		Model:           model,
		MaxTokens:       cfg.MaxTokens,
		WorkingDir:      agent.WorkingDir,
		AllowedTools:    agent.AllowedTools,
		DisallowedTools: agent.DisallowedTools,
		Skills:          skills,
		PermissionMode:  PermissionAutoAccept,
	})
	if err != nil {
		exErr := &dto.ExecutionError{NodeID: node.NodeID, Reason: fmt.Sprintf("failed to start agent session: %v", err)}
		return &dto.NodeResult{Success: false, Error: exErr.Error()}, nil
	}

	outcome, err := collectSession(ctx, sess, timeout)
	if err != nil {
		var serr *sessionError
		if errors.As(err, &serr) && serr.state == stateTimedOut {
			terr := &dto.TimeoutError{NodeID: node.NodeID, Timeout: timeout.String()}
			execCtx.Log(slog.LevelError, "agent session timed out", node.NodeID, nil)
			return &dto.NodeResult{Success: false, Error: terr.Error()}, nil
		}
		exErr := &dto.ExecutionError{NodeID: node.NodeID, Reason: err.Error()}
		return &dto.NodeResult{Success: false, Error: exErr.Error()}, nil
	}

	runCost := h.rates.Calculate(model, outcome.Usage.InputTokens, outcome.Usage.OutputTokens)
	execCtx.Log(slog.LevelInfo, "agent session completed", node.NodeID, map[string]any{
		"tokens": outcome.Usage.TotalTokens,
		"cost":   runCost,
	})

	nodeData := map[string]any{
		"result":     outcome.Result,
		"prompt":     prompt,
		"model":      model,
		"tokensUsed": outcome.Usage.TotalTokens,
		"cost":       runCost,
	}
	return &dto.NodeResult{
		Success:    true,
		Output:     outcome.Result,
		TokensUsed: outcome.Usage.TotalTokens,
		Cost:       runCost,
		// The result lands under a generic key and the node's own ID
		// so downstream templates can reference either path.
		Data: map[string]any{
			"result":    outcome.Result,
			node.NodeID: nodeData,
		},
	}, nil
}

// resolveModel picks the effective model: explicit node override, the
// agent's configured default, then the global fallback.
func (h *AgentHandler) resolveModel(cfg *flow.AgentConfig, agent *Agent) string {
	if cfg.ModelOverride != "" && cfg.ModelOverride != "default" {
		return cfg.ModelOverride
	}
	if agent.DefaultModel != "" {
		return agent.DefaultModel
	}
	return h.defaultModel
}

// resolveSkills fetches the referenced skills. Individual fetch
// failures are logged and dropped rather than aborting the node.
func (h *AgentHandler) resolveSkills(ctx context.Context, nodeID string, ids []string, execCtx *dto.ExecutionContext) []Skill {
	var skills []Skill
	for _, id := range ids {
		s, err := h.skills.GetSkill(ctx, id)
		if err != nil {
			execCtx.Log(slog.LevelWarn, "skill unavailable, continuing without it", nodeID, map[string]any{
				"skill_id": id,
				"error":    err.Error(),
			})
			continue
		}
		skills = append(skills, *s)
	}
	return skills
}
