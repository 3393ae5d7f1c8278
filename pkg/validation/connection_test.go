package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sipsyai/agentflow/internal/core/graph"
)

func chainNodes(ids ...string) []graph.Node {
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = graph.Node{ID: id}
	}
	return nodes
}

func TestValidateConnection_MissingData(t *testing.T) {
	res := ValidateConnection(graph.Edge{Source: "a"}, chainNodes("a"), nil)
	assert.False(t, res.Valid)
	assert.Equal(t, CodeMissingData, res.Code)
}

func TestValidateConnection_NodeNotFound(t *testing.T) {
	nodes := chainNodes("a", "b")

	res := ValidateConnection(graph.Edge{Source: "ghost", Target: "b"}, nodes, nil)
	assert.Equal(t, CodeNodeNotFound, res.Code)

	res = ValidateConnection(graph.Edge{Source: "a", Target: "ghost"}, nodes, nil)
	assert.Equal(t, CodeNodeNotFound, res.Code)
}

func TestValidateConnection_SelfConnection(t *testing.T) {
	res := ValidateConnection(graph.Edge{Source: "a", Target: "a"}, chainNodes("a"), nil)
	assert.Equal(t, CodeSelfConnection, res.Code)

	// rejected regardless of the existing edge set
	edges := []graph.Edge{{Source: "a", Target: "b"}}
	res = ValidateConnection(graph.Edge{Source: "a", Target: "a"}, chainNodes("a", "b"), edges)
	assert.Equal(t, CodeSelfConnection, res.Code)
}

func TestValidateConnection_Duplicate(t *testing.T) {
	nodes := chainNodes("a", "b")
	edges := []graph.Edge{{Source: "a", Target: "b"}}

	res := ValidateConnection(graph.Edge{Source: "a", Target: "b"}, nodes, edges)
	assert.Equal(t, CodeDuplicateConnection, res.Code)

	// a different handle pair is a distinct connection
	res = ValidateConnection(graph.Edge{Source: "a", Target: "b", SourceHandle: "alt"}, nodes, edges)
	assert.True(t, res.Valid)
}

func TestValidateConnection_CreatesCycle(t *testing.T) {
	nodes := chainNodes("a", "b", "c", "d")
	edges := []graph.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
	}

	res := ValidateConnection(graph.Edge{Source: "c", Target: "a"}, nodes, edges)
	assert.False(t, res.Valid)
	assert.Equal(t, CodeCreatesCycle, res.Code)

	res = ValidateConnection(graph.Edge{Source: "c", Target: "d"}, nodes, edges)
	assert.True(t, res.Valid)
}

func TestHasPath(t *testing.T) {
	edges := []graph.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
	}
	assert.True(t, HasPath("a", "c", edges))
	assert.False(t, HasPath("c", "a", edges))
	assert.True(t, HasPath("a", "a", edges))
}

func TestAllPaths(t *testing.T) {
	edges := []graph.Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "c"},
		{Source: "b", Target: "d"},
		{Source: "c", Target: "d"},
	}
	paths := AllPaths("a", "d", edges)
	assert.ElementsMatch(t, [][]string{
		{"a", "b", "d"},
		{"a", "c", "d"},
	}, paths)
}
