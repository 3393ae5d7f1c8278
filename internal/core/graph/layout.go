package graph

import (
	"github.com/sipsyai/agentflow/internal/core/flow"
)

// Layout spacing constants. Depth grows rightwards, rows within a depth
// grow downwards.
const (
	layoutBaseX    = 100.0
	layoutBaseY    = 100.0
	layoutSpacingX = 300.0
	layoutSpacingY = 150.0
)

// AutoLayout assigns canvas positions to nodes lacking meaningful ones.
// Depth is computed by breadth-first traversal from all root nodes
// (nodes with no incoming edge); x = baseX + depth*spacingX and
// y = baseY + rowWithinDepth*spacingY. Nodes unreachable from any root
// (only possible inside cycles) are appended in a trailing column. The
// result is deterministic for a fixed input ordering.
func AutoLayout(nodes []Node, edges []Edge) []Node {
	if len(nodes) == 0 {
		return nodes
	}
	adj := Adjacency(edges)
	incoming := make(map[string]int, len(nodes))
	for _, e := range edges {
		incoming[e.Target]++
	}

	depth := make(map[string]int, len(nodes))
	var queue []string
	for _, n := range nodes {
		if incoming[n.ID] == 0 {
			depth[n.ID] = 0
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = depth[id] + 1
			queue = append(queue, next)
		}
	}

	maxDepth := 0
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}

	out := make([]Node, len(nodes))
	rows := make(map[int]int)
	disconnectedCol := maxDepth + 1
	for i, n := range nodes {
		d, reachable := depth[n.ID]
		if !reachable {
			d = disconnectedCol
		}
		row := rows[d]
		rows[d]++
		n.Position = flow.Position{
			X: layoutBaseX + float64(d)*layoutSpacingX,
			Y: layoutBaseY + float64(row)*layoutSpacingY,
		}
		n.Data.Position = n.Position
		out[i] = n
	}
	return out
}
