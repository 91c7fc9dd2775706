package layout

import (
	"fmt"
	"slices"

	"github.com/flowgrid-dev/flowgrid/pkg/graph"
)

// quasiTopoOrder computes a total order over the nodes of an arbitrary
// directed graph such that for every edge (a, b) with no reverse edge
// (b, a), a precedes b. Order among mutually reachable nodes is policy:
// each strongly connected component is broken at a loop head and ordered
// recursively.
func quasiTopoOrder[N comparable](g *graph.Digraph[N]) ([]N, error) {
	// The recursion strictly shrinks the edge set of the subgraph it
	// descends into, so nodes+edges+1 levels can never be reached on a
	// well-formed graph.
	return quasiTopo(g, g.NodeCount()+g.EdgeCount()+1)
}

func quasiTopo[N comparable](g *graph.Digraph[N], depth int) ([]N, error) {
	if g.NodeCount() <= 1 || depth <= 0 {
		return g.Nodes(), nil
	}

	var sccs [][]N
	for _, comp := range g.SCCs() {
		if len(comp) > 1 {
			sccs = append(sccs, comp)
		}
	}

	sccOf := make(map[N]int)
	for i, comp := range sccs {
		for _, n := range comp {
			sccOf[n] = i + 1 // 1-based so the zero value means "no SCC"
		}
	}

	// Condense: one vertex per multi-node SCC, one per remaining node.
	// Every vertex is added up front so isolated nodes and nodes whose
	// only edges are self-loops survive the projection.
	cond := graph.New[int]()
	vertexOf := make(map[N]int, g.NodeCount())
	sccVertex := make([]int, len(sccs))
	nodeAt := make(map[int]N)
	sccAt := make(map[int]int)
	next := 0
	for _, n := range g.Nodes() {
		if s := sccOf[n]; s > 0 {
			if sccVertex[s-1] == 0 {
				next++
				sccVertex[s-1] = next
				sccAt[next] = s - 1
				cond.EnsureNode(next)
			}
			vertexOf[n] = sccVertex[s-1]
		} else {
			next++
			vertexOf[n] = next
			nodeAt[next] = n
			cond.EnsureNode(next)
		}
	}
	for _, e := range g.Edges() {
		u, v := vertexOf[e.From], vertexOf[e.To]
		if u == v {
			// Self-loops and intra-SCC edges do not constrain the order.
			continue
		}
		_ = cond.AddEdge(u, v)
	}

	sorted, err := cond.TopoSort()
	if err != nil {
		return nil, fmt.Errorf("%w: SCC condensation is cyclic", ErrInternal)
	}

	ordered := make([]N, 0, g.NodeCount())
	for _, v := range sorted {
		if s, ok := sccAt[v]; ok {
			if err := appendSCC(g, &ordered, sccs[s], depth-1); err != nil {
				return nil, err
			}
		} else {
			ordered = append(ordered, nodeAt[v])
		}
	}
	return ordered, nil
}

// appendSCC orders the members of a strongly connected component and
// appends them to ordered. The loop head is the first member, scanning
// already-emitted nodes in reverse, that is a direct successor of an
// emitted node; removing its in-edges from the induced subgraph breaks
// exactly one cycle point, after which the whole ordering recurses.
func appendSCC[N comparable](g *graph.Digraph[N], ordered *[]N, scc []N, depth int) error {
	member := make(map[N]bool, len(scc))
	for _, n := range scc {
		member[n] = true
	}

	var loopHead N
	found := false
	for i := len(*ordered) - 1; i >= 0 && !found; i-- {
		for _, succ := range g.Successors((*ordered)[i]) {
			if member[succ] {
				loopHead = succ
				found = true
				break
			}
		}
	}
	if !found {
		// No emitted node reaches into the component; fall back to the
		// member that entered the graph first.
		for _, n := range g.Nodes() {
			if member[n] {
				loopHead = n
				break
			}
		}
	}

	sub := g.Subgraph(member)
	for _, p := range slices.Clone(sub.Predecessors(loopHead)) {
		sub.RemoveEdge(p, loopHead)
	}

	rest, err := quasiTopo(sub, depth)
	if err != nil {
		return err
	}
	*ordered = append(*ordered, rest...)
	return nil
}

// acyclicProjection rebuilds a DAG consistent with the given order: for
// each node in order, only edges to not-yet-visited successors are kept.
// Back-edges and self-loops are dropped; they are still routed later
// against the original graph.
func acyclicProjection[N comparable](g *graph.Digraph[N], ordered []N) *graph.Digraph[N] {
	dag := graph.New[N]()
	visited := make(map[N]bool, len(ordered))
	for _, n := range ordered {
		visited[n] = true
		dag.EnsureNode(n)
		for _, succ := range g.Successors(n) {
			if !visited[succ] {
				dag.EnsureNode(succ)
				_ = dag.AddEdge(n, succ)
			}
		}
	}
	return dag
}
