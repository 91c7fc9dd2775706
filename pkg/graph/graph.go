// Package graph provides an insertion-ordered directed graph that permits
// cycles and self-loops.
//
// Digraph is the input type for the layout engine. Unlike a map-backed
// adjacency structure, it remembers the order in which nodes and edges were
// added and replays that order from every accessor. The layout engine
// depends on this: running the same build sequence twice must produce an
// identical layout, and Go map iteration would break that guarantee.
//
// Nodes are opaque comparable values owned by the caller; the graph only
// indexes them.
package graph

import (
	"errors"
	"slices"
)

var (
	// ErrDuplicateNode is returned by [Digraph.AddNode] when the node is
	// already present. Nodes must be unique.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownSourceNode is returned by [Digraph.AddEdge] when the From
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Digraph.AddEdge] when the To
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [Digraph.TopoSort] when the graph
	// contains a directed cycle.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Edge is a directed connection between two nodes. Parallel edges are not
// supported: at most one edge exists per (From, To) pair.
type Edge[N comparable] struct {
	From N
	To   N
}

// Digraph is a directed graph over comparable node values. Cycles and
// self-loops are allowed. All accessors replay insertion order, so two
// graphs built by the same sequence of calls behave identically.
//
// The zero value is not usable - use New. Digraph is not safe for
// concurrent mutation.
type Digraph[N comparable] struct {
	nodes   []N
	present map[N]struct{}
	succ    map[N][]N
	pred    map[N][]N
	edges   []Edge[N]
	edgeSet map[Edge[N]]struct{}
}

// New creates an empty Digraph.
func New[N comparable]() *Digraph[N] {
	return &Digraph[N]{
		present: make(map[N]struct{}),
		succ:    make(map[N][]N),
		pred:    make(map[N][]N),
		edgeSet: make(map[Edge[N]]struct{}),
	}
}

// AddNode adds a node to the graph. Returns ErrDuplicateNode if the node
// is already present.
func (g *Digraph[N]) AddNode(n N) error {
	if _, ok := g.present[n]; ok {
		return ErrDuplicateNode
	}
	g.present[n] = struct{}{}
	g.nodes = append(g.nodes, n)
	return nil
}

// EnsureNode adds the node if it is not already present.
func (g *Digraph[N]) EnsureNode(n N) {
	if _, ok := g.present[n]; !ok {
		g.present[n] = struct{}{}
		g.nodes = append(g.nodes, n)
	}
}

// AddEdge adds a directed edge between two existing nodes. Self-loops are
// allowed. Adding an edge that already exists is a no-op, keeping the
// graph free of parallel edges. Returns ErrUnknownSourceNode or
// ErrUnknownTargetNode if an endpoint is missing.
func (g *Digraph[N]) AddEdge(from, to N) error {
	if _, ok := g.present[from]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.present[to]; !ok {
		return ErrUnknownTargetNode
	}
	e := Edge[N]{From: from, To: to}
	if _, ok := g.edgeSet[e]; ok {
		return nil
	}
	g.edgeSet[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.succ[from] = append(g.succ[from], to)
	g.pred[to] = append(g.pred[to], from)
	return nil
}

// RemoveEdge removes the edge from→to if it exists. Removing a missing
// edge is a no-op.
func (g *Digraph[N]) RemoveEdge(from, to N) {
	e := Edge[N]{From: from, To: to}
	if _, ok := g.edgeSet[e]; !ok {
		return
	}
	delete(g.edgeSet, e)
	g.edges = slices.DeleteFunc(g.edges, func(x Edge[N]) bool { return x == e })
	g.succ[from] = slices.DeleteFunc(g.succ[from], func(n N) bool { return n == to })
	g.pred[to] = slices.DeleteFunc(g.pred[to], func(n N) bool { return n == from })
}

// HasNode reports whether the node is in the graph.
func (g *Digraph[N]) HasNode(n N) bool {
	_, ok := g.present[n]
	return ok
}

// HasEdge reports whether the edge from→to is in the graph.
func (g *Digraph[N]) HasEdge(from, to N) bool {
	_, ok := g.edgeSet[Edge[N]{From: from, To: to}]
	return ok
}

// Nodes returns all nodes in insertion order. The returned slice is a copy.
func (g *Digraph[N]) Nodes() []N { return slices.Clone(g.nodes) }

// Edges returns all edges in insertion order. The returned slice is a copy.
func (g *Digraph[N]) Edges() []Edge[N] { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Digraph[N]) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Digraph[N]) EdgeCount() int { return len(g.edges) }

// Successors returns the targets of the node's outgoing edges in edge
// insertion order. The returned slice is a read-only view; do not modify.
func (g *Digraph[N]) Successors(n N) []N { return g.succ[n] }

// Predecessors returns the sources of the node's incoming edges in edge
// insertion order. The returned slice is a read-only view; do not modify.
func (g *Digraph[N]) Predecessors(n N) []N { return g.pred[n] }

// OutDegree returns the number of outgoing edges from the node.
func (g *Digraph[N]) OutDegree(n N) int { return len(g.succ[n]) }

// InDegree returns the number of incoming edges to the node.
func (g *Digraph[N]) InDegree(n N) int { return len(g.pred[n]) }

// Subgraph returns the subgraph induced by keep: the kept nodes plus every
// edge whose endpoints are both kept. Insertion order is inherited from
// the parent graph.
func (g *Digraph[N]) Subgraph(keep map[N]bool) *Digraph[N] {
	sub := New[N]()
	for _, n := range g.nodes {
		if keep[n] {
			sub.EnsureNode(n)
		}
	}
	for _, e := range g.edges {
		if keep[e.From] && keep[e.To] {
			_ = sub.AddEdge(e.From, e.To)
		}
	}
	return sub
}

// Clone returns an independent copy of the graph.
func (g *Digraph[N]) Clone() *Digraph[N] {
	c := New[N]()
	for _, n := range g.nodes {
		c.EnsureNode(n)
	}
	for _, e := range g.edges {
		_ = c.AddEdge(e.From, e.To)
	}
	return c
}
