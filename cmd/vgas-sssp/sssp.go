// Package main implements the SSSP conformance example (spec.md §8
// scenarios 2/3), grounded line-for-line on
// _examples/original_source/src/sample_programs/SSSP.cpp. Distances are
// int64: -1 means "unreached", matching the original's negative sentinel.
package main

import "github.com/asyncgas/vgas/engine"

// minGather is SSSP.cpp's min_container: += takes the smaller of two
// non-negative candidates, ignoring negative (unreached) ones.
type minGather struct {
	min int64
}

func combine(accum, delta minGather) minGather {
	if accum.min < 0 || (delta.min >= 0 && delta.min < accum.min) {
		return delta
	}
	return accum
}

type program struct {
	doScatter bool
}

func (p *program) New() engine.VertexProgram[minGather, int64, int64] {
	return &program{}
}

func (p *program) GatherEdges(ctx *engine.Context[minGather, int64, int64], v uint32) engine.Dir {
	return engine.In
}

func (p *program) Gather(ctx *engine.Context[minGather, int64, int64], v uint32, eid uint32, accum minGather, first bool) minGather {
	src := ctx.Source(eid)
	var candidate minGather
	if srcDist := *ctx.VertexData(src); srcDist >= 0 {
		candidate = minGather{min: srcDist + *ctx.EdgeData(eid)}
	} else {
		candidate = minGather{min: -1}
	}
	if first {
		return candidate
	}
	return combine(accum, candidate)
}

func (p *program) Apply(ctx *engine.Context[minGather, int64, int64], v uint32, vdata *int64, accum minGather, hadAccum bool) {
	if hadAccum && accum.min > 0 && (*vdata < 0 || *vdata > accum.min) {
		p.doScatter = true
		*vdata = accum.min
	} else {
		p.doScatter = false
	}
}

func (p *program) ScatterEdges(ctx *engine.Context[minGather, int64, int64], v uint32) engine.Dir {
	if p.doScatter {
		return engine.Out
	}
	return engine.None
}

// Scatter folds this vertex's new candidate distance for the target into the
// target's cached gather (if it has one) and signals the target.
func (p *program) Scatter(ctx *engine.Context[minGather, int64, int64], v uint32, eid uint32) {
	target := ctx.Target(eid)
	ctx.PostDelta(target, minGather{min: *ctx.VertexData(v) + *ctx.EdgeData(eid)})
	ctx.Signal(target)
}
