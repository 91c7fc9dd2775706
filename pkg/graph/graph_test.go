package graph

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode_Duplicate(t *testing.T) {
	g := New[string]()
	if err := g.AddNode("a"); err != nil {
		t.Fatalf("AddNode(a) = %v, want nil", err)
	}
	if err := g.AddNode("a"); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("AddNode(a) again = %v, want ErrDuplicateNode", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
}

func TestAddEdge_UnknownEndpoints(t *testing.T) {
	g := New[string]()
	g.EnsureNode("a")

	if err := g.AddEdge("x", "a"); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(x, a) = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge("a", "x"); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(a, x) = %v, want ErrUnknownTargetNode", err)
	}
}

func TestAddEdge_DuplicateIsNoOp(t *testing.T) {
	g := New[string]()
	g.EnsureNode("a")
	g.EnsureNode("b")
	g.AddEdge("a", "b")
	g.AddEdge("a", "b")

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if got := g.Successors("a"); len(got) != 1 {
		t.Errorf("Successors(a) = %v, want one entry", got)
	}
}

func TestAddEdge_SelfLoop(t *testing.T) {
	g := New[string]()
	g.EnsureNode("a")
	if err := g.AddEdge("a", "a"); err != nil {
		t.Fatalf("AddEdge(a, a) = %v, want nil", err)
	}
	if !g.HasEdge("a", "a") {
		t.Error("HasEdge(a, a) = false, want true")
	}
	if g.InDegree("a") != 1 || g.OutDegree("a") != 1 {
		t.Errorf("degrees = %d/%d, want 1/1", g.InDegree("a"), g.OutDegree("a"))
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New[string]()
	g.EnsureNode("a")
	g.EnsureNode("b")
	g.AddEdge("a", "b")

	g.RemoveEdge("a", "b")
	if g.HasEdge("a", "b") {
		t.Error("HasEdge(a, b) = true after RemoveEdge")
	}
	if g.InDegree("b") != 0 {
		t.Errorf("InDegree(b) = %d, want 0", g.InDegree("b"))
	}

	// Removing again is a no-op.
	g.RemoveEdge("a", "b")
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestNodes_InsertionOrder(t *testing.T) {
	g := New[string]()
	for _, n := range []string{"c", "a", "b"} {
		g.EnsureNode(n)
	}
	want := []string{"c", "a", "b"}
	if got := g.Nodes(); !slices.Equal(got, want) {
		t.Errorf("Nodes() = %v, want %v", got, want)
	}
}

func TestSuccessors_EdgeInsertionOrder(t *testing.T) {
	g := New[string]()
	for _, n := range []string{"a", "b", "c", "d"} {
		g.EnsureNode(n)
	}
	g.AddEdge("a", "d")
	g.AddEdge("a", "b")
	g.AddEdge("a", "c")

	want := []string{"d", "b", "c"}
	if got := g.Successors("a"); !slices.Equal(got, want) {
		t.Errorf("Successors(a) = %v, want %v", got, want)
	}
}

func TestSubgraph_Induced(t *testing.T) {
	g := New[string]()
	for _, n := range []string{"a", "b", "c"} {
		g.EnsureNode(n)
	}
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	sub := g.Subgraph(map[string]bool{"a": true, "b": true})
	if sub.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", sub.NodeCount())
	}
	if !sub.HasEdge("a", "b") {
		t.Error("subgraph lost edge a->b")
	}
	if sub.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", sub.EdgeCount())
	}
}

func TestClone_Independent(t *testing.T) {
	g := New[string]()
	g.EnsureNode("a")
	g.EnsureNode("b")
	g.AddEdge("a", "b")

	c := g.Clone()
	c.RemoveEdge("a", "b")
	c.EnsureNode("z")

	if !g.HasEdge("a", "b") {
		t.Error("clone mutation leaked into original graph")
	}
	if g.HasNode("z") {
		t.Error("clone node leaked into original graph")
	}
}
