package graph

// WordCodec converts between a user datum type and the single
// machine-word representation spec.md §3 assumes every vertex/edge datum
// reduces to for SPM purposes ("assumed word-sized"). Vertex programs over
// a float64 gather type (PageRank) typically use math.Float64bits; SSSP's
// int64 distance casts directly.
type WordCodec[T any] struct {
	ToWord   func(T) uint64
	FromWord func(uint64) T
}

// mainMemoryAdapter lets the SPM staging layer (C3) stage copies of a
// Graph's authoritative vertex/edge data, satisfying spm.MainMemory.
type mainMemoryAdapter[VD any, ED any] struct {
	g     *Graph[VD, ED]
	vCode WordCodec[VD]
	eCode WordCodec[ED]
}

// NewMainMemory adapts g into the spm.MainMemory interface used by
// engine.New, using vCode/eCode to convert each side's datum to and from a
// single machine word.
func NewMainMemory[VD any, ED any](g *Graph[VD, ED], vCode WordCodec[VD], eCode WordCodec[ED]) *mainMemoryAdapter[VD, ED] {
	return &mainMemoryAdapter[VD, ED]{g: g, vCode: vCode, eCode: eCode}
}

func (a *mainMemoryAdapter[VD, ED]) ReadVWord(id uint32) uint64 {
	return a.vCode.ToWord(*a.g.VertexData(id))
}

func (a *mainMemoryAdapter[VD, ED]) WriteVWord(id uint32, w uint64) {
	*a.g.VertexData(id) = a.vCode.FromWord(w)
}

func (a *mainMemoryAdapter[VD, ED]) ReadEWord(id uint32) uint64 {
	return a.eCode.ToWord(*a.g.EdgeData(id))
}

func (a *mainMemoryAdapter[VD, ED]) WriteEWord(id uint32, w uint64) {
	*a.g.EdgeData(id) = a.eCode.FromWord(w)
}
