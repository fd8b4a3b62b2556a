package dag

import (
	"errors"
	"slices"
	"testing"
)

func build(t *testing.T, ids []string, edges [][2]string) *DAG {
	t.Helper()
	g := New(nil)
	for _, id := range ids {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%q) error: %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%v) error: %v", e, err)
		}
	}
	return g
}

func TestAddNodeErrors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
	if n, _ := g.Node("a"); n.Meta == nil {
		t.Error("AddNode should initialize Meta")
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := build(t, []string{"a"}, nil)
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge unknown source = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge unknown target = %v", err)
	}
}

func TestAddEdgeDeduplicates(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "b"}})
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if got := g.Children("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Children(a) = %v", got)
	}
	if got := g.Parents("b"); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Parents(b) = %v", got)
	}
}

func TestSourcesSinks(t *testing.T) {
	g := build(t, []string{"sodium", "lithium", "fabric-api"},
		[][2]string{{"sodium", "fabric-api"}, {"lithium", "fabric-api"}})

	if got := NodeIDs(g.Sources()); !slices.Equal(got, []string{"sodium", "lithium"}) {
		t.Errorf("Sources() = %v", got)
	}
	if got := NodeIDs(g.Sinks()); !slices.Equal(got, []string{"fabric-api"}) {
		t.Errorf("Sinks() = %v", got)
	}
}

func TestTopoOrder(t *testing.T) {
	g := build(t, []string{"app", "lib", "core"},
		[][2]string{{"app", "lib"}, {"lib", "core"}, {"app", "core"}})

	got, err := g.TopoOrder()
	if err != nil {
		t.Fatalf("TopoOrder() error: %v", err)
	}
	if want := []string{"core", "lib", "app"}; !slices.Equal(got, want) {
		t.Errorf("TopoOrder() = %v, want %v", got, want)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestTopoOrderCycle(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})
	if _, err := g.TopoOrder(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("TopoOrder() = %v, want ErrGraphHasCycle", err)
	}
	if err := g.Validate(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("Validate() = %v, want ErrGraphHasCycle", err)
	}
}

func TestDisplayLabel(t *testing.T) {
	if got := (Node{ID: "AANobbMI"}).DisplayLabel(); got != "AANobbMI" {
		t.Errorf("DisplayLabel() = %q", got)
	}
	if got := (Node{ID: "AANobbMI", Label: "Sodium"}).DisplayLabel(); got != "Sodium" {
		t.Errorf("DisplayLabel() = %q", got)
	}
}
