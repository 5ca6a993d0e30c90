package spm

import (
	"sync"

	"github.com/asyncgas/vgas/internal/enforce"
	"github.com/rs/zerolog/log"
)

const (
	slotWords = 2 // (mm_key, datum)
	slotBytes = slotWords * WordSize
)

// Key identifies a slot's main-memory source. Per SPEC_FULL.md §13.5, this
// replaces the original's pointer identity (&v.data()/&e.data()) with
// (kind, id): Go's GC can move stack values and slice backing arrays can
// reallocate on growth, so a raw address would be unsound. The vertex/edge
// tag is folded into the bits just above the 32-bit id (bit 33 for vertices,
// bit 32 for edges) so a vkey and an ekey with the same numeric id are never
// confused, even though in practice vertex and edge slots are only ever
// compared within their own slab, and so no key ever equals Null.
type Key uint64

const (
	edgeTag   = uint64(1) << 32
	vertexTag = uint64(1) << 33
)

func vkey(id uint32) Key { return Key(uint64(id) | vertexTag) }
func ekey(id uint32) Key { return Key(uint64(id) | edgeTag) }

// MainMemory is the word-sized backing store the staging layer loads from
// and writes back to. A vertex or edge program whose datum should be
// cacheable through SPM exposes it here as a single representative machine
// word (e.g. a PageRank vertex's rank, or an SSSP edge's weight) — per
// spec.md §3, "the datum itself (assumed word-sized)".
type MainMemory interface {
	ReadVWord(id uint32) uint64
	WriteVWord(id uint32, w uint64)
	ReadEWord(id uint32) uint64
	WriteEWord(id uint32, w uint64)
}

// Staging is the two-slab bump allocator (C3), placing vertex data in a
// slab that grows up from word 4 and edge data in a slab that grows down
// from the top of Memory, with free-lists and cross-slab compaction.
// Grounded on spm_interface.hpp's load_vdata/load_edata/remove_vdata/
// remove_edata/read_vdata/write_vdata/read_edata/write_edata.
type Staging struct {
	mem *Memory
	mm  MainMemory

	vslabMutex   sync.Mutex
	eslabMutex   sync.Mutex
	vslotRelocMu sync.Mutex
	eslotRelocMu sync.Mutex

	numFailedLoads uint64
}

func NewStaging(mem *Memory, mm MainMemory) *Staging {
	return &Staging{mem: mem, mm: mm}
}

func (s *Staging) NumFailedLoads() uint64 { return s.numFailedLoads }

// Memory exposes the underlying simulated scratchpad, for hit/miss
// telemetry (spec.md §6's spm_hits/spm_misses).
func (s *Staging) Memory() *Memory { return s.mem }

// --- metadata accessors ---

func (s *Staging) vslabEnd() uint32     { return uint32(s.mem.SPM2REG(0 * WordSize)) }
func (s *Staging) setVslabEnd(v uint32) { s.mem.REG2SPM(0*WordSize, uint64(v)) }
func (s *Staging) vemptyHead() uint32     { return uint32(s.mem.SPM2REG(1 * WordSize)) }
func (s *Staging) setVemptyHead(v uint32) { s.mem.REG2SPM(1*WordSize, uint64(v)) }
func (s *Staging) eslabEnd() uint32     { return uint32(s.mem.SPM2REG(2 * WordSize)) }
func (s *Staging) setEslabEnd(v uint32) { s.mem.REG2SPM(2*WordSize, uint64(v)) }
func (s *Staging) eemptyHead() uint32     { return uint32(s.mem.SPM2REG(3 * WordSize)) }
func (s *Staging) setEemptyHead(v uint32) { s.mem.REG2SPM(3*WordSize, uint64(v)) }

// --- slot accessors: a slot is two words, (key, datum), at addr/addr+W ---

func (s *Staging) slotKey(addr uint32) Key          { return Key(s.mem.SPM2REG(addr)) }
func (s *Staging) setSlotKey(addr uint32, k Key)    { s.mem.REG2SPM(addr, uint64(k)) }
func (s *Staging) slotDatum(addr uint32) uint64     { return s.mem.SPM2REG(addr + WordSize) }
func (s *Staging) setSlotDatum(addr uint32, w uint64) { s.mem.REG2SPM(addr+WordSize, w) }

// slotNext/setSlotNext read and write a vacant slot's free-list link, which
// is stored in the same datum word a resident slot uses for its main-memory
// value. The link is always a slab address (uint32); slotDatum/setSlotDatum
// themselves stay uint64 since a resident datum is a full machine word.
func (s *Staging) slotNext(addr uint32) uint32       { return uint32(s.slotDatum(addr)) }
func (s *Staging) setSlotNext(addr uint32, next uint32) { s.setSlotDatum(addr, uint64(next)) }

// findInSlab linearly scans the slab [lo, hi) for a slot with the given key.
func (s *Staging) findInSlab(lo, hi uint32, key Key) (addr uint32, ok bool) {
	for a := lo; a < hi; a += slotBytes {
		if s.slotKey(a) == key {
			return a, true
		}
	}
	return 0, false
}

// unlinkFree removes addr (known to be on the free-list headed at *head)
// from that singly-linked list.
func (s *Staging) unlinkFree(head func() uint32, setHead func(uint32), addr uint32) {
	h := head()
	if h == addr {
		setHead(s.slotNext(addr))
		return
	}
	prev := h
	for prev != Null {
		next := s.slotNext(prev)
		if next == addr {
			s.setSlotNext(prev, s.slotNext(addr))
			return
		}
		prev = next
	}
	enforce.ENFORCE(false, "free slot not found on its own free-list", addr)
}

// LoadVdata ensures vertex id's datum is resident in the vertex slab,
// following the placement algorithm of spec.md §4.3. Returns false iff
// already resident or no space could be made.
func (s *Staging) LoadVdata(id uint32) bool {
	return s.load(id, true)
}

// LoadEdata is load_vdata's mirror image for the edge slab. Per
// SPEC_FULL.md §13.3, this correctly calls the edge-side internal loader
// throughout, including in its compaction branch (the original's
// equivalent branch called the vertex loader on an edge by mistake).
func (s *Staging) LoadEdata(id uint32) bool {
	return s.load(id, false)
}

// load implements the symmetric placement algorithm for both slabs. own
// selects which slab is being grown (true = vertex); opposite is compacted
// on overflow.
func (s *Staging) load(id uint32, own bool) bool {
	key := vkey(id)
	if !own {
		key = ekey(id)
	}

	// Step 1: duplicate check.
	if own {
		if _, ok := s.findInSlab(MetaBytes, s.vslabEnd(), key); ok {
			return false
		}
	} else {
		if _, ok := s.findInSlab(s.eslabEnd(), Size, key); ok {
			return false
		}
	}

	if own {
		return s.loadOwn(id, key)
	}
	return s.loadEdge(id, key)
}

func (s *Staging) loadOwn(id uint32, key Key) bool {
	s.vslabMutex.Lock()
	defer s.vslabMutex.Unlock()

	// Step 2: vertex free-list.
	if head := s.vemptyHead(); head != Null {
		next := s.slotNext(head)
		s.setVemptyHead(next)
		s.setSlotKey(head, key)
		s.setSlotDatum(head, s.mm.ReadVWord(id))
		return true
	}

	// Step 3: extend own slab's tail if it fits.
	candidate := s.vslabEnd()
	if candidate+slotBytes <= s.eslabEnd() {
		s.setVslabEnd(candidate + slotBytes)
		s.setSlotKey(candidate, key)
		s.setSlotDatum(candidate, s.mm.ReadVWord(id))
		return true
	}

	// Step 4: compact the opposite (edge) slab to reclaim one slot. Per
	// spec.md's capacity-absence handling, this is a single attempt: no
	// retries, no backpressure beyond worker-pool saturation.
	if !s.compactEdgeSlab() {
		s.numFailedLoads++
		log.Warn().Msg("SPM vertex load failed: no space could be made")
		return false
	}
	candidate = s.vslabEnd()
	enforce.ENFORCE(candidate+slotBytes <= s.eslabEnd(), "compaction did not create room")
	s.setVslabEnd(candidate + slotBytes)
	s.setSlotKey(candidate, key)
	s.setSlotDatum(candidate, s.mm.ReadVWord(id))
	return true
}

func (s *Staging) loadEdge(id uint32, key Key) bool {
	s.eslabMutex.Lock()

	if head := s.eemptyHead(); head != Null {
		next := s.slotNext(head)
		s.setEemptyHead(next)
		s.setSlotKey(head, key)
		s.setSlotDatum(head, s.mm.ReadEWord(id))
		s.eslabMutex.Unlock()
		return true
	}

	candidate := s.eslabEnd() - slotBytes
	if candidate >= s.vslabEnd() {
		s.setEslabEnd(candidate)
		s.setSlotKey(candidate, key)
		s.setSlotDatum(candidate, s.mm.ReadEWord(id))
		s.eslabMutex.Unlock()
		return true
	}

	// Step 4 needs compactVertexSlab, which acquires vslabMutex. Per
	// spec.md §4.3's lock-order rule, release eslabMutex before reaching
	// across slabs in the reverse direction, rather than nesting a
	// vslab-inside-eslab acquisition that would deadlock against
	// loadOwn/compactEdgeSlab's canonical vslab -> eslab order.
	s.eslabMutex.Unlock()
	if !s.compactVertexSlab() {
		s.numFailedLoads++
		log.Warn().Msg("SPM edge load failed: no space could be made")
		return false
	}

	s.eslabMutex.Lock()
	defer s.eslabMutex.Unlock()
	candidate = s.eslabEnd() - slotBytes
	enforce.ENFORCE(candidate >= s.vslabEnd(), "compaction did not create room")
	s.setEslabEnd(candidate)
	s.setSlotKey(candidate, key)
	s.setSlotDatum(candidate, s.mm.ReadEWord(id))
	return true
}

// compactEdgeSlab reclaims one slot from the edge slab to give the vertex
// slab room, per spec.md §4.3 step 4. Lock order: caller already holds
// vslabMutex; this acquires eslabMutex then eslotRelocMu, preserving the
// global order vslab -> eslab -> *_reloc.
func (s *Staging) compactEdgeSlab() bool {
	s.eslabMutex.Lock()
	defer s.eslabMutex.Unlock()

	if s.eemptyHead() == Null {
		return false // free-list empty: nothing to reclaim.
	}

	s.eslotRelocMu.Lock()
	defer s.eslotRelocMu.Unlock()

	boundary := s.eslabEnd()
	if s.slotKey(boundary) == Null {
		// The slot at the slab's growing edge is itself already empty.
		s.unlinkFree(s.eemptyHead, s.setEemptyHead, boundary)
	} else {
		// Move an empty slot in from the free-list, relocate the boundary
		// slot's data there. No pointer fix-up is needed anywhere else:
		// lookups are key-based linear scans, never address-based.
		empty := s.eemptyHead()
		s.setEemptyHead(s.slotNext(empty))
		s.setSlotKey(empty, s.slotKey(boundary))
		s.setSlotDatum(empty, s.slotDatum(boundary))
	}
	s.setEslabEnd(boundary + slotBytes)
	return true
}

// compactVertexSlab is load_edata's mirror of compactEdgeSlab. Caller must
// NOT hold eslabMutex (loadEdge releases it first): this acquires
// vslabMutex then vslotRelocMu on its own, so the only lock order ever in
// effect is vslab -> eslab -> *_reloc, never the reverse.
func (s *Staging) compactVertexSlab() bool {
	s.vslabMutex.Lock()
	defer s.vslabMutex.Unlock()

	if s.vemptyHead() == Null {
		return false
	}

	s.vslotRelocMu.Lock()
	defer s.vslotRelocMu.Unlock()

	boundary := s.vslabEnd() - slotBytes
	if s.slotKey(boundary) == Null {
		s.unlinkFree(s.vemptyHead, s.setVemptyHead, boundary)
	} else {
		empty := s.vemptyHead()
		s.setVemptyHead(s.slotNext(empty))
		s.setSlotKey(empty, s.slotKey(boundary))
		s.setSlotDatum(empty, s.slotDatum(boundary))
	}
	s.setVslabEnd(boundary)
	return true
}

// RemoveVdata writes the vertex's datum back to main memory and frees its
// slot. Returns false if not resident.
func (s *Staging) RemoveVdata(id uint32) bool {
	s.vslabMutex.Lock()
	defer s.vslabMutex.Unlock()
	s.vslotRelocMu.Lock()
	defer s.vslotRelocMu.Unlock()

	addr, ok := s.findInSlab(MetaBytes, s.vslabEnd(), vkey(id))
	if !ok {
		return false
	}
	s.mm.WriteVWord(id, s.slotDatum(addr))
	s.setSlotKey(addr, Null)
	s.setSlotNext(addr, s.vemptyHead())
	s.setVemptyHead(addr)
	return true
}

// RemoveEdata is RemoveVdata's mirror image for the edge slab.
func (s *Staging) RemoveEdata(id uint32) bool {
	s.eslabMutex.Lock()
	defer s.eslabMutex.Unlock()
	s.eslotRelocMu.Lock()
	defer s.eslotRelocMu.Unlock()

	addr, ok := s.findInSlab(s.eslabEnd(), Size, ekey(id))
	if !ok {
		return false
	}
	s.mm.WriteEWord(id, s.slotDatum(addr))
	s.setSlotKey(addr, Null)
	s.setSlotNext(addr, s.eemptyHead())
	s.setEemptyHead(addr)
	return true
}

// ReadVdata fast-reads the resident word for vertex id. False if absent.
func (s *Staging) ReadVdata(id uint32) (uint64, bool) {
	s.vslabMutex.Lock()
	defer s.vslabMutex.Unlock()
	s.vslotRelocMu.Lock()
	defer s.vslotRelocMu.Unlock()

	addr, ok := s.findInSlab(MetaBytes, s.vslabEnd(), vkey(id))
	if !ok {
		s.mem.countMiss()
		return 0, false
	}
	s.mem.countHit()
	return s.slotDatum(addr), true
}

// ReadEdata fast-reads the resident word for edge id, returning the edge
// datum type's word (per SPEC_FULL.md §13.4: the original mis-declared this
// to return the vertex datum type). False if absent.
func (s *Staging) ReadEdata(id uint32) (uint64, bool) {
	s.eslabMutex.Lock()
	defer s.eslabMutex.Unlock()
	s.eslotRelocMu.Lock()
	defer s.eslotRelocMu.Unlock()

	addr, ok := s.findInSlab(s.eslabEnd(), Size, ekey(id))
	if !ok {
		s.mem.countMiss()
		return 0, false
	}
	s.mem.countHit()
	return s.slotDatum(addr), true
}

// WriteVdata fast-writes w into the resident slot for vertex id.
func (s *Staging) WriteVdata(id uint32, w uint64) bool {
	s.vslabMutex.Lock()
	defer s.vslabMutex.Unlock()
	s.vslotRelocMu.Lock()
	defer s.vslotRelocMu.Unlock()

	addr, ok := s.findInSlab(MetaBytes, s.vslabEnd(), vkey(id))
	if !ok {
		return false
	}
	s.setSlotDatum(addr, w)
	return true
}

// WriteEdata fast-writes w into the resident slot for edge id.
func (s *Staging) WriteEdata(id uint32, w uint64) bool {
	s.eslabMutex.Lock()
	defer s.eslabMutex.Unlock()
	s.eslotRelocMu.Lock()
	defer s.eslotRelocMu.Unlock()

	addr, ok := s.findInSlab(s.eslabEnd(), Size, ekey(id))
	if !ok {
		return false
	}
	s.setSlotDatum(addr, w)
	return true
}
