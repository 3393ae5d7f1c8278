// Package validation provides graph-integrity checks for proposed edge
// connections and per-field input validation. Everything here is a pure
// function, safe to call concurrently from multiple editor sessions.
package validation

import (
	"fmt"

	"github.com/sipsyai/agentflow/internal/core/graph"
)

// ConnectionCode classifies why a proposed connection was rejected.
type ConnectionCode string

const (
	CodeMissingData         ConnectionCode = "MISSING_DATA"
	CodeNodeNotFound        ConnectionCode = "NODE_NOT_FOUND"
	CodeSelfConnection      ConnectionCode = "SELF_CONNECTION"
	CodeDuplicateConnection ConnectionCode = "DUPLICATE_CONNECTION"
	CodeCreatesCycle        ConnectionCode = "CREATES_CYCLE"
)

// ConnectionResult is the outcome of validating one proposed edge.
type ConnectionResult struct {
	Valid  bool           `json:"valid"`
	Reason string         `json:"reason,omitempty"`
	Code   ConnectionCode `json:"code,omitempty"`
}

func rejected(code ConnectionCode, reason string) ConnectionResult {
	return ConnectionResult{Valid: false, Reason: reason, Code: code}
}

// ValidateConnection accepts or rejects a proposed edge against the
// current node and edge set. Checks run in a fixed order and the first
// failure wins: missing endpoints, unknown endpoint nodes, self-loop,
// duplicate (source, target, sourceHandle, targetHandle) tuple, and a
// depth-first cycle check over edges plus the proposed edge. O(V+E) per
// call; intended for interactively proposed edges, not per execution.
func ValidateConnection(proposed graph.Edge, nodes []graph.Node, edges []graph.Edge) ConnectionResult {
	if proposed.Source == "" || proposed.Target == "" {
		return rejected(CodeMissingData, "connection is missing source or target")
	}

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}
	if !known[proposed.Source] {
		return rejected(CodeNodeNotFound, fmt.Sprintf("source node %q not found", proposed.Source))
	}
	if !known[proposed.Target] {
		return rejected(CodeNodeNotFound, fmt.Sprintf("target node %q not found", proposed.Target))
	}

	if proposed.Source == proposed.Target {
		return rejected(CodeSelfConnection, "a node cannot connect to itself")
	}

	for _, e := range edges {
		if e.Source == proposed.Source && e.Target == proposed.Target &&
			e.SourceHandle == proposed.SourceHandle && e.TargetHandle == proposed.TargetHandle {
			return rejected(CodeDuplicateConnection, "an identical connection already exists")
		}
	}

	if createsCycle(proposed, edges) {
		return rejected(CodeCreatesCycle, "connection would create a cycle")
	}

	return ConnectionResult{Valid: true}
}

// createsCycle reports whether adding the proposed edge closes a
// directed cycle. DFS from the proposed source with an explicit
// recursion stack: revisiting a node currently on the stack means a
// back-edge.
func createsCycle(proposed graph.Edge, edges []graph.Edge) bool {
	adj := graph.Adjacency(edges)
	adj[proposed.Source] = append(adj[proposed.Source], proposed.Target)

	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var dfs func(string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, next := range adj[id] {
			if onStack[next] {
				return true
			}
			if !visited[next] && dfs(next) {
				return true
			}
		}
		onStack[id] = false
		return false
	}
	return dfs(proposed.Source)
}
