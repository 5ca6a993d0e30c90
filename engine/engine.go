// Package engine implements the execution driver (C7): the Gather-Apply-
// Scatter loop run once per scheduled vertex, wired to C1 (graph), C2/C3
// (SPM), C4 (gather cache) and C5/C6 (scheduler).
//
// Grounded on spec.md §4.7/§4.8 for GAS semantics and the SPM prefetch/evict
// policy, and on the teacher's graph/algorithm.go for the overall shape of
// a generic, type-parameterised "run this user algorithm over the graph"
// driver (the VPI[V]-style "program type carries its own New()" pattern).
package engine

import (
	"github.com/asyncgas/vgas/cache"
	"github.com/asyncgas/vgas/graph"
	"github.com/asyncgas/vgas/internal/mathutils"
	"github.com/asyncgas/vgas/scheduler"
	"github.com/asyncgas/vgas/spm"
	"github.com/rs/zerolog/log"
)

// Dir is the edge-direction enumeration from spec.md §6.
type Dir int

const (
	None Dir = iota
	In
	Out
	All
)

// VertexProgram is the user-supplied vertex-centric program (spec.md §6).
// G is the gather type (must support the combine operation passed to New),
// VD the vertex-data type, ED the edge-data type. A fresh instance is
// created per vertex execution via New, mirroring the teacher's pattern of
// giving each type parameter a factory method (graph/graph-vertex.go's
// VPI[V] constraint) rather than resetting shared state by hand.
type VertexProgram[G any, VD any, ED any] interface {
	// New returns a fresh instance of the program, ready to run once.
	New() VertexProgram[G, VD, ED]

	GatherEdges(ctx *Context[G, VD, ED], v uint32) Dir
	// Gather folds one edge's contribution into accum. first is true for
	// the first contributing edge overall, per spec.md §4.7's tie-break:
	// the first contribution assigns rather than combines with a zero
	// value, so G need not have an identity element.
	Gather(ctx *Context[G, VD, ED], v uint32, eid uint32, accum G, first bool) G
	Apply(ctx *Context[G, VD, ED], v uint32, vdata *VD, accum G, hadAccum bool)
	ScatterEdges(ctx *Context[G, VD, ED], v uint32) Dir
	Scatter(ctx *Context[G, VD, ED], v uint32, eid uint32)
}

// Context is the boundary the user program reaches back through during
// gather/scatter (spec.md §4.8): signal and post_delta, plus read access to
// the graph (source/target lookups, degree, neighbour data) a real
// GraphLab-style vertex program needs to implement gather/scatter at all.
type Context[G any, VD any, ED any] struct {
	g       *graph.Graph[VD, ED]
	sched   *scheduler.Scheduler
	gcache  *cache.GatherCache[G]
	combine func(accum, delta G) G
}

func (c *Context[G, VD, ED]) Signal(v uint32) { c.sched.Signal(v) }

func (c *Context[G, VD, ED]) PostDelta(v uint32, delta G) {
	c.gcache.PostDelta(v, delta, c.combine)
}

func (c *Context[G, VD, ED]) VertexData(v uint32) *VD     { return c.g.VertexData(v) }
func (c *Context[G, VD, ED]) EdgeData(eid uint32) *ED     { return c.g.EdgeData(eid) }
func (c *Context[G, VD, ED]) Source(eid uint32) uint32    { return c.g.Source(eid) }
func (c *Context[G, VD, ED]) Target(eid uint32) uint32    { return c.g.Target(eid) }
func (c *Context[G, VD, ED]) OutDegree(v uint32) int      { return len(c.g.OutEdges(v)) }
func (c *Context[G, VD, ED]) InDegree(v uint32) int       { return len(c.g.InEdges(v)) }

// Options configures an Engine. Constructed directly or via FlagsToOptions,
// per SPEC_FULL.md §10.3.
type Options struct {
	LoadAheadDistance uint32
	NumThreads        int
	EnableGatherCache bool
	DebugLevel        int
	PollingRateMS      int
	Profile           bool
	ColourOutput      bool
}

// Engine wires C1 (graph), C2/C3 (SPM), C4 (gather cache) and C5/C6
// (scheduler) together to run a VertexProgram to convergence.
type Engine[G any, VD any, ED any] struct {
	opts    Options
	g       *graph.Graph[VD, ED]
	staging *spm.Staging
	gcache  *cache.GatherCache[G]
	sched   *scheduler.Scheduler
	prog    VertexProgram[G, VD, ED]
	combine func(accum, delta G) G
}

// New constructs an engine over g, running program instances derived from
// prog.New(). mm backs the SPM staging layer with the graph's own vertex
// and edge word accessors (see graph.NewMainMemory in C1, or an
// embedder-supplied adapter). combine is the gather type's associative
// += operator, used both for folding edges and for post_delta.
func New[G any, VD any, ED any](
	g *graph.Graph[VD, ED],
	mm spm.MainMemory,
	prog VertexProgram[G, VD, ED],
	combine func(accum, delta G) G,
	opts Options,
) *Engine[G, VD, ED] {
	if opts.NumThreads <= 0 {
		opts.NumThreads = 1
	}
	return &Engine[G, VD, ED]{
		opts:    opts,
		g:       g,
		staging: spm.NewStaging(spm.NewMemory(), mm),
		gcache:  cache.New[G](opts.EnableGatherCache),
		sched:   scheduler.New(g, uint32(g.NumVertices()), opts.NumThreads),
		prog:    prog,
		combine: combine,
	}
}

// SignalAll seeds every vertex into the active set (spec.md §4.6).
func (e *Engine[G, VD, ED]) SignalAll() {
	ids := make([]uint32, e.g.NumVertices())
	for i := range ids {
		ids[i] = uint32(i)
	}
	e.sched.SignalAll(ids)
}

// Start runs the scheduler's worker pool to termination, driving the GAS
// loop on each scheduled vertex.
func (e *Engine[G, VD, ED]) Start() {
	var watch mathutils.Watch
	watch.Start()
	stop := e.startStatusLogger()
	defer stop()
	e.sched.Run(e.runOne)
	log.Info().Dur("elapsed", watch.Elapsed()).Msg("engine run terminated")
}

func (e *Engine[G, VD, ED]) runOne(v uint32) {
	prog := e.prog.New()
	ctx := &Context[G, VD, ED]{g: e.g, sched: e.sched, gcache: e.gcache, combine: e.combine}
	spmCtx := newSpmPass(e, v)

	accum, hadAccum := e.gather(ctx, spmCtx, prog, v)

	prog.Apply(ctx, v, e.g.VertexData(v), accum, hadAccum)

	e.scatter(ctx, spmCtx, prog, v)

	evictDeferred(e, spmCtx)
}

// gather implements spec.md §4.7 step 2: a cache hit short-circuits the
// edge walk entirely; otherwise walk in-edges then out-edges per dir,
// folding Gather and write the result through to the cache if any edge
// contributed.
func (e *Engine[G, VD, ED]) gather(ctx *Context[G, VD, ED], spmCtx *spmPass, prog VertexProgram[G, VD, ED], v uint32) (accum G, hadAccum bool) {
	if cached, ok := e.gcache.Peek(v); ok {
		return cached, true
	}

	dir := prog.GatherEdges(ctx, v)
	if dir != In && dir != All {
		evictPreloadedInEdges(e, spmCtx, v)
	}
	if dir == None {
		return accum, false
	}

	first := true
	if dir == In || dir == All {
		inEdges := e.g.InEdges(v)
		for i, eid := range inEdges {
			accum = prog.Gather(ctx, v, eid, accum, first)
			first = false
			afterInEdge(e, spmCtx, v, i, inEdges)
		}
	}
	if dir == Out || dir == All {
		outEdges := e.g.OutEdges(v)
		for i, eid := range outEdges {
			accum = prog.Gather(ctx, v, eid, accum, first)
			first = false
			afterOutEdgeDuringGather(e, spmCtx, i, outEdges)
		}
	}
	hadAccum = !first
	if hadAccum {
		e.gcache.Store(v, accum)
	}
	return accum, hadAccum
}

// scatter implements spec.md §4.7 step 4: out-edges then in-edges, per the
// selected direction.
func (e *Engine[G, VD, ED]) scatter(ctx *Context[G, VD, ED], spmCtx *spmPass, prog VertexProgram[G, VD, ED], v uint32) {
	dir := prog.ScatterEdges(ctx, v)
	if dir == None {
		return
	}
	if dir == Out || dir == All {
		for _, eid := range e.g.OutEdges(v) {
			prog.Scatter(ctx, v, eid)
			afterScatterEdge(e, eid, false)
		}
	}
	if dir == In || dir == All {
		for _, eid := range e.g.InEdges(v) {
			prog.Scatter(ctx, v, eid)
			afterScatterEdge(e, eid, true)
		}
	}
}

// ClearCache invalidates v's memoised gather result, per spec.md §4.4 and
// the clear-cache bug resolution in SPEC_FULL.md §13.1.
func (e *Engine[G, VD, ED]) ClearCache(v uint32) { e.gcache.Clear(v) }

// SPMHits, SPMMisses and NumFailedSPMLoads expose the C2/C3 counters per
// the embedder API in spec.md §6.
func (e *Engine[G, VD, ED]) SPMHits() uint64          { return e.staging.Memory().Hits() }
func (e *Engine[G, VD, ED]) SPMMisses() uint64        { return e.staging.Memory().Misses() }
func (e *Engine[G, VD, ED]) NumFailedSPMLoads() uint64 { return e.staging.NumFailedLoads() }

func init() {
	log.Debug().Msg("engine package initialised")
}
