package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipsyai/agentflow/internal/core/cost"
	"github.com/sipsyai/agentflow/internal/core/flow"
)

func agentNode(cfg *flow.AgentConfig) *flow.Node {
	return &flow.Node{
		NodeID: "agent-1",
		Type:   flow.NodeTypeAgent,
		Name:   "Summarizer",
		Agent:  cfg,
	}
}

func testContent() *fakeContent {
	return &fakeContent{
		agents: map[string]Agent{
			"summarizer": {
				ID:           "summarizer",
				Name:         "Summarizer",
				SystemPrompt: "You summarize things.",
				DefaultModel: "claude-3-5-sonnet",
				AllowedTools: []string{"Read"},
			},
		},
		skills: map[string]Skill{
			"style": {ID: "style", Name: "House Style", Content: "Keep it short."},
		},
	}
}

func newAgentHandler(rt *fakeRuntime) *AgentHandler {
	content := testContent()
	return NewAgentHandler(content, content, rt, cost.DefaultRates(), "claude-3-5-haiku")
}

func TestAgentHandlerExecute(t *testing.T) {
	t.Run("streams text and prices usage", func(t *testing.T) {
		rt := &fakeRuntime{script: happyScript("Flows are chains of nodes.", 1000, 1000)}
		h := newAgentHandler(rt)
		execCtx := execContext(map[string]any{"topic": "flows"})

		node := agentNode(&flow.AgentConfig{
			AgentID:        "summarizer",
			PromptTemplate: "Summarize: {{topic}}",
			SkillIDs:       []string{"style"},
		})

		res, err := h.Execute(context.Background(), node, execCtx)
		require.NoError(t, err)
		require.True(t, res.Success, res.Error)

		assert.Equal(t, "Flows are chains of nodes.", res.Output)
		assert.Equal(t, 2000, res.TokensUsed)
		// claude-3-5-sonnet rates: 0.003 in, 0.015 out per 1K.
		assert.InDelta(t, 0.018, res.Cost, 1e-9)

		cfgs := rt.startedConfigs()
		require.Len(t, cfgs, 1)
		assert.Equal(t, "Summarize: flows", cfgs[0].Prompt)
		assert.Equal(t, "claude-3-5-sonnet", cfgs[0].Model)
		assert.Equal(t, "You summarize things.", cfgs[0].SystemPrompt)
		assert.Equal(t, PermissionAutoAccept, cfgs[0].PermissionMode)
		require.Len(t, cfgs[0].Skills, 1)
		assert.Equal(t, "style", cfgs[0].Skills[0].ID)

		assert.Equal(t, "Flows are chains of nodes.", res.Data["result"])
		nodeData, ok := res.Data["agent-1"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Summarize: flows", nodeData["prompt"])
	})

	t.Run("model override beats agent default", func(t *testing.T) {
		rt := &fakeRuntime{script: happyScript("ok", 10, 10)}
		h := newAgentHandler(rt)

		node := agentNode(&flow.AgentConfig{
			AgentID:        "summarizer",
			PromptTemplate: "hi",
			ModelOverride:  "claude-opus-4",
		})
		res, err := h.Execute(context.Background(), node, execContext(nil))
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, "claude-opus-4", rt.startedConfigs()[0].Model)
	})

	t.Run("override value default falls through", func(t *testing.T) {
		rt := &fakeRuntime{script: happyScript("ok", 10, 10)}
		h := newAgentHandler(rt)

		node := agentNode(&flow.AgentConfig{
			AgentID:        "summarizer",
			PromptTemplate: "hi",
			ModelOverride:  "default",
		})
		_, err := h.Execute(context.Background(), node, execContext(nil))
		require.NoError(t, err)
		assert.Equal(t, "claude-3-5-sonnet", rt.startedConfigs()[0].Model)
	})

	t.Run("unknown agent fails the node", func(t *testing.T) {
		rt := &fakeRuntime{script: happyScript("ok", 10, 10)}
		h := newAgentHandler(rt)

		node := agentNode(&flow.AgentConfig{AgentID: "nope", PromptTemplate: "hi"})
		res, err := h.Execute(context.Background(), node, execContext(nil))
		require.NoError(t, err)
		require.False(t, res.Success)
		assert.Contains(t, res.Error, "agent")
		assert.Contains(t, res.Error, "nope")
		assert.Empty(t, rt.startedConfigs())
	})

	t.Run("missing skill is tolerated", func(t *testing.T) {
		rt := &fakeRuntime{script: happyScript("ok", 10, 10)}
		h := newAgentHandler(rt)

		node := agentNode(&flow.AgentConfig{
			AgentID:        "summarizer",
			PromptTemplate: "hi",
			SkillIDs:       []string{"style", "missing"},
		})
		res, err := h.Execute(context.Background(), node, execContext(nil))
		require.NoError(t, err)
		require.True(t, res.Success, res.Error)
		require.Len(t, rt.startedConfigs()[0].Skills, 1)
		assert.Equal(t, "style", rt.startedConfigs()[0].Skills[0].ID)
	})

	t.Run("times out against a hung session", func(t *testing.T) {
		rt := &fakeRuntime{hang: true}
		h := newAgentHandler(rt)

		node := agentNode(&flow.AgentConfig{
			AgentID:        "summarizer",
			PromptTemplate: "hi",
			TimeoutMs:      50,
		})
		start := time.Now()
		res, err := h.Execute(context.Background(), node, execContext(nil))
		require.NoError(t, err)
		require.False(t, res.Success)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
		assert.Contains(t, res.Error, "timed out")
		assert.True(t, rt.sessions[0].wasStopped())
	})

	t.Run("session error fails the node", func(t *testing.T) {
		rt := &fakeRuntime{failures: 1}
		h := newAgentHandler(rt)

		node := agentNode(&flow.AgentConfig{AgentID: "summarizer", PromptTemplate: "hi"})
		res, err := h.Execute(context.Background(), node, execContext(nil))
		require.NoError(t, err)
		require.False(t, res.Success)
		assert.Contains(t, res.Error, "scripted failure")
	})

	t.Run("cancelled context stops the session", func(t *testing.T) {
		rt := &fakeRuntime{hang: true}
		h := newAgentHandler(rt)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		node := agentNode(&flow.AgentConfig{AgentID: "summarizer", PromptTemplate: "hi"})
		res, err := h.Execute(ctx, node, execContext(nil))
		require.NoError(t, err)
		require.False(t, res.Success)
		assert.True(t, rt.sessions[0].wasStopped())
	})
}

func TestAgentHandlerUsageTotals(t *testing.T) {
	// A runtime that reports only input/output counts still yields a
	// total.
	rt := &fakeRuntime{script: []SessionEvent{
		{Type: SessionEventText, Text: "partial "},
		{Type: SessionEventText, Text: "chunks"},
		{Type: SessionEventResult, Usage: &Usage{InputTokens: 7, OutputTokens: 5}},
		{Type: SessionEventClosed},
	}}
	h := newAgentHandler(rt)

	node := agentNode(&flow.AgentConfig{AgentID: "summarizer", PromptTemplate: "hi"})
	res, err := h.Execute(context.Background(), node, execContext(nil))
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "partial chunks", res.Output)
	assert.Equal(t, 12, res.TokensUsed)
}
