package graph

import (
	"github.com/sipsyai/agentflow/internal/core/flow"
)

// ToGraph converts a persisted flow into its editable representation:
// one graph node per flow node, one edge per non-empty nextNodeId. The
// chain pointer is kept on the payload so ToChain can round-trip flows
// without loss.
func ToGraph(f *flow.Flow) ([]Node, []Edge) {
	nodes := make([]Node, 0, len(f.Nodes))
	var edges []Edge
	for _, n := range f.Nodes {
		nodes = append(nodes, Node{
			ID:       n.NodeID,
			Type:     n.Type,
			Position: n.Position,
			Data:     n,
		})
		if n.NextNodeID != "" {
			edges = append(edges, Edge{
				ID:     EdgeID(n.NodeID, n.NextNodeID),
				Source: n.NodeID,
				Target: n.NextNodeID,
			})
		}
	}
	return nodes, edges
}

// ToChain collapses an editable graph back into the linear chain model.
// Each node's nextNodeId is rewritten from the edge list; when a source
// has multiple outgoing edges the first encountered edge wins, since
// the chain supports a single successor per node. Node order and all
// payload fields are preserved.
func ToChain(nodes []Node, edges []Edge) []flow.Node {
	next := make(map[string]string, len(edges))
	for _, e := range edges {
		if _, seen := next[e.Source]; !seen {
			next[e.Source] = e.Target
		}
	}
	out := make([]flow.Node, 0, len(nodes))
	for _, n := range nodes {
		fn := n.Data
		fn.NodeID = n.ID
		fn.Type = n.Type
		fn.Position = n.Position
		fn.NextNodeID = next[n.ID]
		out = append(out, fn)
	}
	return out
}
