package graph

// SCCs returns the strongly connected components of the graph using
// Tarjan's algorithm. Every node appears in exactly one component; a node
// that is not part of any cycle forms a singleton component.
//
// The result is deterministic: the DFS visits nodes and successors in
// insertion order, so identical build sequences yield identical component
// lists. Components are emitted in reverse topological order of the
// condensation (callees before callers), which is Tarjan's natural output
// order.
func (g *Digraph[N]) SCCs() [][]N {
	type frame struct {
		index   int
		lowlink int
		onStack bool
		visited bool
	}

	state := make(map[N]*frame, len(g.nodes))
	var stack []N
	var comps [][]N
	next := 0

	var strongconnect func(n N)
	strongconnect = func(n N) {
		f := &frame{index: next, lowlink: next, onStack: true, visited: true}
		state[n] = f
		next++
		stack = append(stack, n)

		for _, m := range g.succ[n] {
			sf := state[m]
			if sf == nil || !sf.visited {
				strongconnect(m)
				if l := state[m].lowlink; l < f.lowlink {
					f.lowlink = l
				}
			} else if sf.onStack {
				if sf.index < f.lowlink {
					f.lowlink = sf.index
				}
			}
		}

		if f.lowlink == f.index {
			var comp []N
			for {
				m := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				state[m].onStack = false
				comp = append(comp, m)
				if m == n {
					break
				}
			}
			comps = append(comps, comp)
		}
	}

	for _, n := range g.nodes {
		if f := state[n]; f == nil || !f.visited {
			strongconnect(n)
		}
	}
	return comps
}

// TopoSort returns the nodes in a topological order using Kahn's
// algorithm, seeded and tie-broken by insertion order. Returns
// ErrGraphHasCycle if the graph is cyclic.
func (g *Digraph[N]) TopoSort() ([]N, error) {
	inDegree := make(map[N]int, len(g.nodes))
	var queue []N
	for _, n := range g.nodes {
		d := len(g.pred[n])
		inDegree[n] = d
		if d == 0 {
			queue = append(queue, n)
		}
	}

	sorted := make([]N, 0, len(g.nodes))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		sorted = append(sorted, curr)

		for _, child := range g.succ[curr] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(sorted) != len(g.nodes) {
		return nil, ErrGraphHasCycle
	}
	return sorted, nil
}
