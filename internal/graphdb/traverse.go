package graphdb

// Levels maps a 0-based distance from the start node to the nodes discovered
// at that distance. A level reached within the depth bound keeps its key even
// when the filter matched nothing there; levels beyond the bound are never
// explored.
type Levels map[int][]*Node

// MaxLevel returns the deepest level present in the result.
func (l Levels) MaxLevel() int {
	max := 0
	for level := range l {
		if level > max {
			max = level
		}
	}
	return max
}

// bfs walks the connection graph level by level starting at start. The start
// node is always present at level 0 regardless of the filter. A single
// visited set is shared across all levels, so cycles in the undirected graph
// can neither loop the traversal nor duplicate a node across levels.
func bfs(start *Node, filter *Clause, maxDepth int) Levels {
	result := Levels{0: {start}}
	visited := nodeSet{start: {}}
	frontier := []*Node{start}

	for depth := 1; depth <= maxDepth; depth++ {
		var next []*Node
		for _, node := range frontier {
			for peer := range node.connections {
				if visited.contains(peer) {
					continue
				}
				visited.add(peer)
				next = append(next, peer)
			}
		}
		if len(next) == 0 {
			break
		}

		matched := next
		if filter != nil {
			matched = make([]*Node, 0, len(next))
			for _, node := range next {
				if node.matches(*filter) {
					matched = append(matched, node)
				}
			}
		}
		result[depth] = matched
		frontier = next
	}
	return result
}
