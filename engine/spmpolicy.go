package engine

// spmPass tracks one vertex execution's SPM prefetch/evict bookkeeping, per
// spec.md §4.7's "woven through steps 2 and 4" policy. This reference
// implementation always reads the authoritative datum from the graph
// itself (spec.md §5(iii)); the staging calls exist purely to produce the
// hit/miss/failed-load telemetry spec.md §6 requires.
//
// The functions below are free generic functions, not methods on spmPass,
// because Go methods cannot carry their own type parameters: each needs
// the calling Engine[G, VD, ED]'s type parameters to reach its graph and
// staging layer.
//
// Simplification, recorded in DESIGN.md: the original's overflow rule
// ("if the in-edge prefetch index overflows |in(v)|, and the overflow
// still fits within |out(v)|, prefetch that out-edge instead") is
// approximated here by prefetching at most one extra out-edge once the
// in-edge loop runs past its own load-ahead window, rather than tracking
// the exact residual budget spec.md describes.
type spmPass struct {
	loadAhead     int
	deferredVerts []uint32 // doubly-connected neighbours, evicted at end of vprog
}

func newSpmPass[G any, VD any, ED any](e *Engine[G, VD, ED], v uint32) *spmPass {
	p := &spmPass{loadAhead: int(e.opts.LoadAheadDistance)}
	preload(e, p, v)
	return p
}

// preload implements spec.md §4.7's pre-execution prefetch: the first
// min(D, |in(v)|) in-edges and their sources, then as much of the first
// out-edges (and their targets) as fit in the remaining budget.
func preload[G any, VD any, ED any](e *Engine[G, VD, ED], p *spmPass, v uint32) {
	inEdges := e.g.InEdges(v)
	outEdges := e.g.OutEdges(v)
	budget := p.loadAhead

	n := min(budget, len(inEdges))
	for i := 0; i < n; i++ {
		loadEdgeAndNeighbour(e, inEdges[i], true)
	}
	budget -= n

	m := min(budget, len(outEdges))
	for i := 0; i < m; i++ {
		loadEdgeAndNeighbour(e, outEdges[i], false)
	}
}

func loadEdgeAndNeighbour[G any, VD any, ED any](e *Engine[G, VD, ED], eid uint32, isInEdge bool) {
	e.staging.LoadEdata(eid)
	var neighbour uint32
	if isInEdge {
		neighbour = e.g.Source(eid)
	} else {
		neighbour = e.g.Target(eid)
	}
	e.staging.LoadVdata(neighbour)
}

// evictPreloadedInEdges implements the "gather direction excludes
// in-edges" branch: the preloaded in-edge block is evicted eagerly since
// nothing will consume it.
func evictPreloadedInEdges[G any, VD any, ED any](e *Engine[G, VD, ED], p *spmPass, v uint32) {
	for _, eid := range e.g.InEdges(v)[:min(p.loadAhead, len(e.g.InEdges(v)))] {
		e.staging.RemoveEdata(eid)
		src := e.g.Source(eid)
		if !e.g.EdgeAt(eid).HasOpposite {
			e.staging.RemoveVdata(src)
		}
	}
}

// afterInEdge implements spec.md §4.7's per-iteration prefetch-then-evict
// for the in-edge gather loop.
func afterInEdge[G any, VD any, ED any](e *Engine[G, VD, ED], p *spmPass, v uint32, i int, inEdges []uint32) {
	D := p.loadAhead
	if i+D < len(inEdges) {
		loadEdgeAndNeighbour(e, inEdges[i+D], true)
	} else if overflow := i + D - len(inEdges); overflow < len(e.g.OutEdges(v)) {
		loadEdgeAndNeighbour(e, e.g.OutEdges(v)[overflow], false)
	}

	eid := inEdges[i]
	e.staging.RemoveEdata(eid)
	src := e.g.Source(eid)
	if e.g.EdgeAt(eid).HasOpposite {
		p.deferEviction(src)
	} else {
		e.staging.RemoveVdata(src)
	}
}

// afterOutEdgeDuringGather mirrors afterInEdge for a gather over
// out-edges: the first D pairs were preloaded for scatter's benefit and
// are not evicted here.
func afterOutEdgeDuringGather[G any, VD any, ED any](e *Engine[G, VD, ED], p *spmPass, i int, outEdges []uint32) {
	if i < p.loadAhead {
		return
	}
	eid := outEdges[i]
	e.staging.LoadEdata(eid)
	e.staging.ReadEdata(eid)
	tgt := e.g.Target(eid)
	e.staging.RemoveEdata(eid)
	if e.g.EdgeAt(eid).HasOpposite {
		p.deferEviction(tgt)
	} else {
		e.staging.RemoveVdata(tgt)
	}
}

// afterScatterEdge exercises the staging layer for one edge touched during
// scatter, evicting eagerly unless the neighbour is doubly connected.
func afterScatterEdge[G any, VD any, ED any](e *Engine[G, VD, ED], eid uint32, isInEdge bool) {
	e.staging.LoadEdata(eid)
	e.staging.ReadEdata(eid)
	var neighbour uint32
	if isInEdge {
		neighbour = e.g.Source(eid)
	} else {
		neighbour = e.g.Target(eid)
	}
	e.staging.RemoveEdata(eid)
	if !e.g.EdgeAt(eid).HasOpposite {
		e.staging.RemoveVdata(neighbour)
	}
}

func (p *spmPass) deferEviction(v uint32) {
	p.deferredVerts = append(p.deferredVerts, v)
}

// evictDeferred implements spec.md §4.7's "at end of vprog, evict all
// deferred doubly-connected neighbours".
func evictDeferred[G any, VD any, ED any](e *Engine[G, VD, ED], p *spmPass) {
	for _, v := range p.deferredVerts {
		e.staging.RemoveVdata(v)
	}
}
