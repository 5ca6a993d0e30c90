package graph

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_AddVertexAddEdge(t *testing.T) {
	g := New[float64, int]()
	if !g.AddVertex(0, 1.0) {
		t.Fatal("expected fresh AddVertex to succeed")
	}
	if g.AddVertex(0, 2.0) {
		t.Fatal("expected duplicate AddVertex to fail")
	}
	g.AddVertex(1, 1.0)
	if !g.AddEdge(0, 1, 7) {
		t.Fatal("expected AddEdge to succeed")
	}
	if g.AddEdge(0, 0, 1) {
		t.Fatal("expected self-edge to be rejected")
	}
	if g.AddEdge(0, 5, 1) {
		t.Fatal("expected edge to nonexistent vertex to be rejected")
	}
	g.Freeze()
	if g.AddVertex(2, 1.0) {
		t.Fatal("expected AddVertex after Freeze to fail")
	}
}

func Test_HasOpposite(t *testing.T) {
	g := New[float64, int]()
	g.AddVertex(0, 0)
	g.AddVertex(1, 0)
	g.AddEdge(0, 1, 0)
	g.AddEdge(1, 0, 0)
	g.Freeze()
	for _, eid := range g.OutEdges(0) {
		if !g.EdgeAt(eid).HasOpposite {
			t.Error("expected HasOpposite true for a mutual edge pair")
		}
	}
}

func Test_ClosedNeighbourhood(t *testing.T) {
	g := New[float64, int]()
	for i := uint32(0); i < 3; i++ {
		g.AddVertex(i, 0)
	}
	g.AddEdge(0, 1, 0)
	g.AddEdge(1, 2, 0)
	g.Freeze()

	n := g.ClosedNeighbourhood(1)
	want := map[uint32]bool{0: true, 1: true, 2: true}
	if len(n) != 3 {
		t.Fatalf("expected 3 entries, got %v", n)
	}
	for _, v := range n {
		if !want[v] {
			t.Errorf("unexpected neighbour %d", v)
		}
	}
}

func Test_LoadEdgeListAndWriteVertexProps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("0 1 2\n1 2\n2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := LoadEdgeList[float64, int](path, false, 0, func(uint32) int { return 0 })
	if err != nil {
		t.Fatal(err)
	}
	g.Freeze()
	if g.NumVertices() != 3 {
		t.Fatalf("expected 3 vertices, got %d", g.NumVertices())
	}
	if len(g.OutEdges(0)) != 2 {
		t.Fatalf("expected vertex 0 to have 2 out-edges, got %d", len(g.OutEdges(0)))
	}

	outPath := filepath.Join(dir, "out.txt")
	err = WriteVertexProps(outPath, g, func(id uint32, data float64) string {
		return "v"
	})
	if err != nil {
		t.Fatal(err)
	}
	contents, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) == 0 {
		t.Fatal("expected non-empty output file")
	}
}

func Test_LoadEdgeListWithWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("0 1 5 2 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := LoadEdgeList[int, uint32](path, true, -1, func(w uint32) uint32 { return w })
	if err != nil {
		t.Fatal(err)
	}
	g.Freeze()
	edges := g.OutEdges(0)
	if len(edges) != 2 {
		t.Fatalf("expected 2 weighted out-edges, got %d", len(edges))
	}
	if *g.EdgeData(edges[0]) != 5 || *g.EdgeData(edges[1]) != 7 {
		t.Errorf("unexpected weights: %d %d", *g.EdgeData(edges[0]), *g.EdgeData(edges[1]))
	}
}
