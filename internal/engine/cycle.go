package engine

// HasCycle reports whether the graph contains a dependency cycle. The
// walk is an iterative depth-first search where every branch carries its
// own copy of the path set: two prompts sharing a dependency (a diamond)
// revisit the shared node on sibling branches, which is legal and must
// not be mistaken for a cycle.
func HasCycle(graph Graph) bool {
	type frame struct {
		field string
		path  map[string]struct{}
	}

	for start := range graph {
		stack := []frame{{field: start, path: map[string]struct{}{}}}

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if _, onPath := cur.path[cur.field]; onPath {
				return true
			}

			path := make(map[string]struct{}, len(cur.path)+1)
			for field := range cur.path {
				path[field] = struct{}{}
			}
			path[cur.field] = struct{}{}

			for out := range graph[cur.field].OutEdges {
				if _, ok := graph[out]; ok {
					stack = append(stack, frame{field: out, path: path})
				}
			}
		}
	}
	return false
}
