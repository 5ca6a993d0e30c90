// Package main implements the PageRank conformance example (spec.md §8
// scenario 1), grounded line-for-line on
// _examples/original_source/src/sample_programs/pagerank.cpp.
package main

import "github.com/asyncgas/vgas/engine"

const (
	damping    = 0.85
	baseRank   = 0.15
	convergeEps = 1e-3
)

// program is a fresh instance per vertex execution (engine.VertexProgram's
// New contract); delta is the field the original's do_scatter-analogue
// (SSSP) and this program both keep as private per-run state.
type program struct {
	delta float64
}

func (p *program) New() engine.VertexProgram[float64, float64, struct{}] {
	return &program{}
}

func (p *program) GatherEdges(ctx *engine.Context[float64, float64, struct{}], v uint32) engine.Dir {
	return engine.In
}

// Gather divides the source's rank by the source's own out-degree, matching
// pagerank.cpp's "edge.source().data() / edge.source().num_out_edges()".
func (p *program) Gather(ctx *engine.Context[float64, float64, struct{}], v uint32, eid uint32, accum float64, first bool) float64 {
	src := ctx.Source(eid)
	contribution := *ctx.VertexData(src) / float64(ctx.OutDegree(src))
	if first {
		return contribution
	}
	return accum + contribution
}

func (p *program) Apply(ctx *engine.Context[float64, float64, struct{}], v uint32, vdata *float64, accum float64, hadAccum bool) {
	newVal := accum*damping + baseRank
	prevVal := *vdata
	*vdata = newVal
	p.delta = newVal - prevVal
}

func (p *program) ScatterEdges(ctx *engine.Context[float64, float64, struct{}], v uint32) engine.Dir {
	return engine.Out
}

// Scatter posts a pre-divided delta to each out-neighbour (so a cached
// gather stays consistent without re-reading this vertex's data) and
// signals the neighbour only if the change is still significant.
func (p *program) Scatter(ctx *engine.Context[float64, float64, struct{}], v uint32, eid uint32) {
	target := ctx.Target(eid)
	ctx.PostDelta(target, p.delta/float64(ctx.OutDegree(v)))
	if abs(p.delta) > convergeEps {
		ctx.Signal(target)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// combine is the gather type's associative += operator (spec.md §4.7);
// PageRank's gather type is a plain running sum.
func combine(accum, delta float64) float64 { return accum + delta }
