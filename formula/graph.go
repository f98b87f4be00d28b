package formula

// depGraph tracks which cells each formula reads (forward edges) and which
// formulas read each cell (reverse edges). The reverse map is always the
// exact transpose of the forward map.
type depGraph struct {
	forward map[string]map[string]struct{} // cell -> cells it reads from
	reverse map[string]map[string]struct{} // cell -> cells that read it
}

func newDepGraph() *depGraph {
	return &depGraph{
		forward: make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
	}
}

// setEdges replaces the full forward edge set for a cell. Old edges are
// purged first so stale edges never linger after a formula edit.
func (g *depGraph) setEdges(id string, refs map[string]struct{}) {
	g.clearEdges(id)

	if len(refs) == 0 {
		return
	}

	forward := make(map[string]struct{}, len(refs))

	for ref := range refs {
		forward[ref] = struct{}{}

		if g.reverse[ref] == nil {
			g.reverse[ref] = make(map[string]struct{})
		}

		g.reverse[ref][id] = struct{}{}
	}

	g.forward[id] = forward
}

// clearEdges drops all forward edges of a cell and their reverse mirrors.
func (g *depGraph) clearEdges(id string) {
	for ref := range g.forward[id] {
		delete(g.reverse[ref], id)

		if len(g.reverse[ref]) == 0 {
			delete(g.reverse, ref)
		}
	}

	delete(g.forward, id)
}

// remove drops a cell from both directions of the graph.
func (g *depGraph) remove(id string) {
	g.clearEdges(id)

	for dep := range g.reverse[id] {
		delete(g.forward[dep], id)

		if len(g.forward[dep]) == 0 {
			delete(g.forward, dep)
		}
	}

	delete(g.reverse, id)
}

// precedents returns a copy of the cells id reads from.
func (g *depGraph) precedents(id string) map[string]struct{} {
	out := make(map[string]struct{}, len(g.forward[id]))
	for ref := range g.forward[id] {
		out[ref] = struct{}{}
	}

	return out
}

// dependents returns a copy of the cells that read id directly.
func (g *depGraph) dependents(id string) map[string]struct{} {
	out := make(map[string]struct{}, len(g.reverse[id]))
	for dep := range g.reverse[id] {
		out[dep] = struct{}{}
	}

	return out
}

// transitiveDependents walks the reverse map breadth-first and returns every
// cell that directly or indirectly reads id.
func (g *depGraph) transitiveDependents(id string) map[string]struct{} {
	out := make(map[string]struct{})
	queue := []string{id}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		for dep := range g.reverse[next] {
			if _, seen := out[dep]; seen {
				continue
			}

			out[dep] = struct{}{}
			queue = append(queue, dep)
		}
	}

	return out
}

// hasCycleFrom runs a depth-first search over the forward edges starting at
// id. A node re-encountered while still on the recursion stack means the
// edge set contains a cycle. This scan is independent of the evaluator's
// call-stack reentrancy guard: it catches cycles introduced by an edge
// update itself (A reads B, then B is edited to read A) before the live
// call stack ever shows the loop.
func (g *depGraph) hasCycleFrom(id string) bool {
	visited := make(map[string]struct{})
	stack := make(map[string]struct{})

	var visit func(node string) bool

	visit = func(node string) bool {
		visited[node] = struct{}{}
		stack[node] = struct{}{}

		for ref := range g.forward[node] {
			if _, on := stack[ref]; on {
				return true
			}

			if _, seen := visited[ref]; !seen && visit(ref) {
				return true
			}
		}

		delete(stack, node)

		return false
	}

	return visit(id)
}

// edgeCount returns the number of forward edges in the graph.
func (g *depGraph) edgeCount() int {
	count := 0
	for _, refs := range g.forward {
		count += len(refs)
	}

	return count
}
