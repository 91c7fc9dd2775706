package layout

import (
	"slices"
	"testing"
)

func TestQuasiTopoOrder_DAG(t *testing.T) {
	g := diamondGraph()
	order, err := quasiTopoOrder(g)
	if err != nil {
		t.Fatalf("quasiTopoOrder() error = %v", err)
	}
	want := []string{"a", "b", "c", "d", "e", "f"}
	if !slices.Equal(order, want) {
		t.Errorf("quasiTopoOrder() = %v, want %v", order, want)
	}
}

func TestQuasiTopoOrder_CycleWithEntry(t *testing.T) {
	g := testGraph(
		[]string{"s", "a", "b", "c"},
		[][2]string{{"s", "a"}, {"a", "b"}, {"b", "c"}, {"c", "a"}},
	)
	order, err := quasiTopoOrder(g)
	if err != nil {
		t.Fatalf("quasiTopoOrder() error = %v", err)
	}
	// The entry node precedes the cycle, and the cycle is broken at the
	// member it reaches: a.
	want := []string{"s", "a", "b", "c"}
	if !slices.Equal(order, want) {
		t.Errorf("quasiTopoOrder() = %v, want %v", order, want)
	}
}

func TestQuasiTopoOrder_CycleWithoutEntry(t *testing.T) {
	g := testGraph(
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
	)
	order, err := quasiTopoOrder(g)
	if err != nil {
		t.Fatalf("quasiTopoOrder() error = %v", err)
	}
	// No node outside the cycle reaches in, so the break falls on the
	// member that entered the graph first.
	want := []string{"a", "b", "c"}
	if !slices.Equal(order, want) {
		t.Errorf("quasiTopoOrder() = %v, want %v", order, want)
	}
}

func TestQuasiTopoOrder_MutualPair(t *testing.T) {
	g := testGraph(
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "a"}, {"b", "c"}},
	)
	order, err := quasiTopoOrder(g)
	if err != nil {
		t.Fatalf("quasiTopoOrder() error = %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("quasiTopoOrder() = %v, want 3 nodes", order)
	}
	pos := make(map[string]int)
	for i, n := range order {
		pos[n] = i
	}
	// b -> c has no reverse edge, so b must precede c.
	if pos["b"] >= pos["c"] {
		t.Errorf("quasiTopoOrder() = %v, want b before c", order)
	}
}

func TestQuasiTopoOrder_SelfLoopOnlyNodeSurvives(t *testing.T) {
	g := testGraph(
		[]string{"a", "b"},
		[][2]string{{"a", "a"}, {"a", "b"}},
	)
	order, err := quasiTopoOrder(g)
	if err != nil {
		t.Fatalf("quasiTopoOrder() error = %v", err)
	}
	want := []string{"a", "b"}
	if !slices.Equal(order, want) {
		t.Errorf("quasiTopoOrder() = %v, want %v", order, want)
	}
}

func TestQuasiTopoOrder_ForwardProperty(t *testing.T) {
	g := testGraph(
		[]string{"n1", "n2", "n3", "n4", "n5"},
		[][2]string{
			{"n1", "n2"}, {"n2", "n3"}, {"n3", "n1"}, // cycle
			{"n3", "n4"}, {"n4", "n5"}, {"n1", "n5"},
		},
	)
	order, err := quasiTopoOrder(g)
	if err != nil {
		t.Fatalf("quasiTopoOrder() error = %v", err)
	}
	pos := make(map[string]int)
	for i, n := range order {
		pos[n] = i
	}
	// Every edge without a path back must point forward in the order.
	for _, e := range [][2]string{{"n3", "n4"}, {"n4", "n5"}, {"n1", "n5"}} {
		if pos[e[0]] >= pos[e[1]] {
			t.Errorf("edge %s->%s points backward in order %v", e[0], e[1], order)
		}
	}
}

func TestAcyclicProjection_DropsBackEdges(t *testing.T) {
	g := testGraph(
		[]string{"s", "a", "b", "c"},
		[][2]string{{"s", "a"}, {"a", "b"}, {"b", "c"}, {"c", "a"}},
	)
	order, err := quasiTopoOrder(g)
	if err != nil {
		t.Fatalf("quasiTopoOrder() error = %v", err)
	}
	dag := acyclicProjection(g, order)

	if dag.HasEdge("c", "a") {
		t.Error("projection kept back-edge c->a")
	}
	if dag.EdgeCount() != 3 {
		t.Errorf("projection EdgeCount() = %d, want 3", dag.EdgeCount())
	}
	if dag.NodeCount() != g.NodeCount() {
		t.Errorf("projection NodeCount() = %d, want %d", dag.NodeCount(), g.NodeCount())
	}
}

func TestAcyclicProjection_DropsSelfLoops(t *testing.T) {
	g := testGraph([]string{"a", "b"}, [][2]string{{"a", "a"}, {"a", "b"}})
	order, err := quasiTopoOrder(g)
	if err != nil {
		t.Fatalf("quasiTopoOrder() error = %v", err)
	}
	dag := acyclicProjection(g, order)

	if dag.HasEdge("a", "a") {
		t.Error("projection kept self-loop a->a")
	}
	if !dag.HasNode("a") {
		t.Error("projection lost node a")
	}
}
