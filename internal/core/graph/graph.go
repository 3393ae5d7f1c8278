// Package graph provides the editable graph representation of a flow:
// independent nodes and directed edges, the bidirectional conversion to
// the persisted linear chain, and a deterministic auto-layout. All
// functions are pure and safe to call concurrently from multiple editor
// sessions.
package graph

import (
	"fmt"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

// Node is the canvas view of a flow node. Data carries the node's own
// fields (the type-tagged payload); Position mirrors Data.Position so
// layout can move nodes without touching the payload until save.
type Node struct {
	ID       string        `json:"id"`
	Type     flow.NodeType `json:"type"`
	Position flow.Position `json:"position"`
	Data     flow.Node     `json:"data"`
}

// Edge is a directed connection between two nodes. Handles distinguish
// multiple connection points on a single node.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// EdgeID derives the deterministic edge identifier for a source/target
// pair.
func EdgeID(source, target string) string {
	return fmt.Sprintf("edge-%s-%s", source, target)
}

// Adjacency builds a source -> targets map over the given edges.
func Adjacency(edges []Edge) map[string][]string {
	adj := make(map[string][]string, len(edges))
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}
