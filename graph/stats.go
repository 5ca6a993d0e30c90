package graph

import "github.com/asyncgas/vgas/internal/mathutils"

// Stats summarises a graph's degree distribution, grounded on the
// teacher's graph/graph.go: ComputeGraphStats. Used by the CLIs' -stats
// flag (SPEC_FULL.md §12.3).
type Stats struct {
	NumVertices   int
	NumEdges      int
	MaxOutDegree  int
	MaxInDegree   int
	MedianOutDeg  int
	MedianInDeg   int
	NumSinks      int // vertices with zero out-edges
}

// ComputeStats walks every vertex once; call only after Freeze.
func (g *Graph[VD, ED]) ComputeStats() Stats {
	outDeg := make([]int, len(g.vertices))
	inDeg := make([]int, len(g.vertices))
	sinks := 0
	for i, vv := range g.vertices {
		outDeg[i] = len(vv.outEdges)
		inDeg[i] = len(vv.inEdges)
		if len(vv.outEdges) == 0 {
			sinks++
		}
	}
	return Stats{
		NumVertices:  g.NumVertices(),
		NumEdges:     g.NumEdges(),
		MaxOutDegree: int(mathutils.MaxSlice(outDeg)),
		MaxInDegree:  int(mathutils.MaxSlice(inDeg)),
		MedianOutDeg: int(mathutils.Median(outDeg)),
		MedianInDeg:  int(mathutils.Median(inDeg)),
		NumSinks:     sinks,
	}
}
