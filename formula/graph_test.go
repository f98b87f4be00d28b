package formula

import "testing"

func TestGraphEdgeRebuild(t *testing.T) {
	e := New()
	sheet := mustSheet(t, map[string]any{
		"A1": 1,
		"B1": 2,
	})

	if _, err := e.Evaluate("C1", "=A1", sheet); err != nil {
		t.Fatal(err)
	}

	if deps := e.Precedents("C1"); len(deps) != 1 {
		t.Fatalf("Precedents(C1) = %v, want {A1}", deps)
	}

	// Re-point the formula; the old edge must not linger.
	if _, err := e.Evaluate("C1", "=B1", sheet); err != nil {
		t.Fatal(err)
	}

	deps := e.Precedents("C1")
	if _, stale := deps["A1"]; stale {
		t.Errorf("stale edge C1->A1 survived the formula edit: %v", deps)
	}

	if _, ok := deps["B1"]; !ok {
		t.Errorf("Precedents(C1) = %v, want {B1}", deps)
	}

	if readers := e.Dependents("A1"); len(readers) != 0 {
		t.Errorf("Dependents(A1) = %v, want empty after edit", readers)
	}
}

func TestGraphIdempotentReevaluation(t *testing.T) {
	e := New()
	sheet := mustSheet(t, map[string]any{"A1": 1, "A2": 2})

	for i := 0; i < 3; i++ {
		if _, err := e.Evaluate("B1", "=A1+A2", sheet); err != nil {
			t.Fatal(err)
		}
	}

	stats := e.GetStats()
	if stats.Edges != 2 {
		t.Errorf("edges = %d after repeated evaluation, want 2", stats.Edges)
	}
}

func TestGraphTransitiveDependents(t *testing.T) {
	g := newDepGraph()

	g.setEdges("B1", map[string]struct{}{"A1": {}})
	g.setEdges("C1", map[string]struct{}{"B1": {}})
	g.setEdges("D1", map[string]struct{}{"C1": {}})
	g.setEdges("X1", map[string]struct{}{"A2": {}})

	got := g.transitiveDependents("A1")

	for _, id := range []string{"B1", "C1", "D1"} {
		if _, ok := got[id]; !ok {
			t.Errorf("transitiveDependents(A1) missing %s: %v", id, got)
		}
	}

	if _, ok := got["X1"]; ok {
		t.Errorf("unrelated cell X1 in dependents: %v", got)
	}
}

func TestGraphCycleDetection(t *testing.T) {
	g := newDepGraph()

	g.setEdges("A1", map[string]struct{}{"B1": {}})
	g.setEdges("B1", map[string]struct{}{"C1": {}})

	if g.hasCycleFrom("A1") {
		t.Fatal("acyclic chain reported as cycle")
	}

	g.setEdges("C1", map[string]struct{}{"A1": {}})

	if !g.hasCycleFrom("A1") {
		t.Fatal("three-cell cycle not detected")
	}

	if !g.hasCycleFrom("C1") {
		t.Fatal("cycle must be visible from every member")
	}
}

func TestGraphRemove(t *testing.T) {
	g := newDepGraph()

	g.setEdges("B1", map[string]struct{}{"A1": {}})
	g.setEdges("C1", map[string]struct{}{"B1": {}})

	g.remove("B1")

	if deps := g.dependents("A1"); len(deps) != 0 {
		t.Errorf("A1 still has dependents after remove: %v", deps)
	}

	if deps := g.precedents("C1"); len(deps) != 0 {
		t.Errorf("C1 still has precedents after remove: %v", deps)
	}

	if g.edgeCount() != 0 {
		t.Errorf("edgeCount = %d, want 0", g.edgeCount())
	}
}
