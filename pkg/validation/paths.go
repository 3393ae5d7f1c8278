package validation

import (
	"github.com/sipsyai/agentflow/internal/core/graph"
)

// HasPath reports whether target is reachable from source over the
// given edges, using breadth-first traversal.
func HasPath(source, target string, edges []graph.Edge) bool {
	if source == target {
		return true
	}
	adj := graph.Adjacency(edges)
	visited := map[string]bool{source: true}
	queue := []string{source}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if next == target {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// AllPaths enumerates every simple path from source to target by
// depth-first search. Intended for diagnostics and tests; the result
// can be exponential on dense graphs.
func AllPaths(source, target string, edges []graph.Edge) [][]string {
	adj := graph.Adjacency(edges)
	var paths [][]string
	onPath := make(map[string]bool)

	var dfs func(id string, path []string)
	dfs = func(id string, path []string) {
		path = append(path, id)
		if id == target {
			out := make([]string, len(path))
			copy(out, path)
			paths = append(paths, out)
			return
		}
		onPath[id] = true
		for _, next := range adj[id] {
			if !onPath[next] {
				dfs(next, path)
			}
		}
		onPath[id] = false
	}
	dfs(source, nil)
	return paths
}
