package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

func threeNodeFlow() *flow.Flow {
	return &flow.Flow{
		ID:     "f1",
		Name:   "summarize",
		Status: flow.StatusActive,
		Nodes: []flow.Node{
			{
				NodeID:     "n-input",
				Type:       flow.NodeTypeInput,
				Name:       "Collect topic",
				NextNodeID: "n-agent",
				Position:   flow.Position{X: 10, Y: 20},
				Input: &flow.InputConfig{
					Fields: []flow.Field{{Name: "topic", Type: flow.FieldTypeText, Required: true}},
				},
			},
			{
				NodeID:     "n-agent",
				Type:       flow.NodeTypeAgent,
				Name:       "Summarize",
				NextNodeID: "n-output",
				Agent: &flow.AgentConfig{
					AgentID:        "agent-1",
					PromptTemplate: "Summarize: {{topic}}",
				},
			},
			{
				NodeID: "n-output",
				Type:   flow.NodeTypeOutput,
				Name:   "Respond",
				Output: &flow.OutputConfig{OutputType: flow.OutputTypeResponse, Format: flow.FormatText},
			},
		},
	}
}

func TestToGraph(t *testing.T) {
	f := threeNodeFlow()
	nodes, edges := ToGraph(f)

	require.Len(t, nodes, 3)
	require.Len(t, edges, 2)

	assert.Equal(t, "n-input", nodes[0].ID)
	assert.Equal(t, flow.NodeTypeInput, nodes[0].Type)
	assert.Equal(t, flow.Position{X: 10, Y: 20}, nodes[0].Position)
	assert.Equal(t, "Collect topic", nodes[0].Data.Name)

	assert.Equal(t, "edge-n-input-n-agent", edges[0].ID)
	assert.Equal(t, "n-input", edges[0].Source)
	assert.Equal(t, "n-agent", edges[0].Target)
	assert.Equal(t, "edge-n-agent-n-output", edges[1].ID)
}

func TestRoundTrip(t *testing.T) {
	f := threeNodeFlow()
	nodes, edges := ToGraph(f)
	chain := ToChain(nodes, edges)

	require.Len(t, chain, len(f.Nodes))
	for i, n := range chain {
		orig := f.Nodes[i]
		assert.Equal(t, orig.NodeID, n.NodeID)
		assert.Equal(t, orig.Type, n.Type)
		assert.Equal(t, orig.Name, n.Name)
		assert.Equal(t, orig.NextNodeID, n.NextNodeID)
		assert.Equal(t, orig.Position, n.Position)
		assert.Equal(t, orig.Input, n.Input)
		assert.Equal(t, orig.Agent, n.Agent)
		assert.Equal(t, orig.Output, n.Output)
	}
}

func TestToChain_FirstEdgeWins(t *testing.T) {
	nodes := []Node{
		{ID: "a", Type: flow.NodeTypeInput, Data: flow.Node{Name: "a"}},
		{ID: "b", Type: flow.NodeTypeAgent, Data: flow.Node{Name: "b"}},
		{ID: "c", Type: flow.NodeTypeOutput, Data: flow.Node{Name: "c"}},
	}
	edges := []Edge{
		{ID: "e1", Source: "a", Target: "b"},
		{ID: "e2", Source: "a", Target: "c"},
	}
	chain := ToChain(nodes, edges)
	require.Len(t, chain, 3)
	assert.Equal(t, "b", chain[0].NextNodeID, "first encountered edge wins on fan-out")
	assert.Empty(t, chain[1].NextNodeID)
	assert.Empty(t, chain[2].NextNodeID)
}
