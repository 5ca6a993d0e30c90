package main

import (
	"testing"
	"time"

	"github.com/asyncgas/vgas/engine"
	"github.com/asyncgas/vgas/graph"
)

// fakeMainMemory backs the SPM staging layer directly off the graph's own
// int64 vertex/edge data, mirroring graph.NewMainMemory but local to this
// test so it need not round-trip through the WordCodec machinery.
type fakeMainMemory struct {
	g *graph.Graph[int64, int64]
}

func (f *fakeMainMemory) ReadVWord(id uint32) uint64     { return uint64(*f.g.VertexData(id)) }
func (f *fakeMainMemory) WriteVWord(id uint32, w uint64) { *f.g.VertexData(id) = int64(w) }
func (f *fakeMainMemory) ReadEWord(id uint32) uint64     { return uint64(*f.g.EdgeData(id)) }
func (f *fakeMainMemory) WriteEWord(id uint32, w uint64) { *f.g.EdgeData(id) = int64(w) }

func runSSSP(g *graph.Graph[int64, int64]) {
	mm := &fakeMainMemory{g: g}
	eng := engine.New[minGather, int64, int64](g, mm, &program{}, combine, engine.Options{
		NumThreads:        4,
		EnableGatherCache: true,
	})
	eng.SignalAll()
	eng.Start()
}

// Test_SSSPPath matches spec.md §8 scenario 2 exactly: path 0->1->2->3->4,
// unit weights, source 0 with initial distance 0, others -1 (unreached).
// Expected converged distances: 0,1,2,3,4.
func Test_SSSPPath(t *testing.T) {
	g := graph.New[int64, int64]()
	for i := uint32(0); i <= 4; i++ {
		g.AddVertex(i, -1)
	}
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(2, 3, 1)
	g.AddEdge(3, 4, 1)
	*g.VertexData(0) = 0
	g.Freeze()

	runSSSP(g)

	want := []int64{0, 1, 2, 3, 4}
	for i, w := range want {
		if got := *g.VertexData(uint32(i)); got != w {
			t.Errorf("vertex %d: expected distance %d, got %d", i, w, got)
		}
	}
}

// Test_SSSPCycle matches spec.md §8 scenario 3: cycle 0->1->2->0, weights
// 1,1,1, source 0. Expected distances: 0,1,2, and the engine must actually
// terminate rather than loop forever re-signalling around the cycle.
func Test_SSSPCycle(t *testing.T) {
	g := graph.New[int64, int64]()
	for i := uint32(0); i <= 2; i++ {
		g.AddVertex(i, -1)
	}
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(2, 0, 1)
	*g.VertexData(0) = 0
	g.Freeze()

	done := make(chan struct{})
	go func() {
		runSSSP(g)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("expected engine to terminate on a cycle, it did not settle within the timeout")
	}

	want := []int64{0, 1, 2}
	for i, w := range want {
		if got := *g.VertexData(uint32(i)); got != w {
			t.Errorf("vertex %d: expected distance %d, got %d", i, w, got)
		}
	}
}
