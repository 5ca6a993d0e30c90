// Package spm simulates an on-chip scratchpad memory (SPM): a small,
// word-addressable byte array with blocking and non-blocking access
// primitives (C2), plus a two-slab bump allocator staging vertex/edge
// data into it (C3, see staging.go).
//
// Grounded on _examples/original_source/src/GAS_framework/new_arch.hpp
// (NBL2SPM/SPM2MEM/SPM2REG/REG2SPM/BARRIER) and spm_interface.hpp (the
// staging layer). The teacher repo has no SPM analogue; this package's
// ambient style (ENFORCE-guarded invariants, zerolog Warn on failed
// loads) follows internal/enforce and internal/vlog instead.
package spm

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/asyncgas/vgas/internal/enforce"
)

const (
	// WordSize is the SPM word width in bytes (spec.md §6).
	WordSize = 8
	// Size is the total simulated scratchpad capacity in bytes.
	Size = 256
	// Null is the sentinel "no main-memory key" / "end of free-list" value.
	Null = 0

	metaWords = 4
	// MetaBytes is the fixed-size metadata header: VSLAB_END, VEMPTY_HEAD,
	// ESLAB_END, EEMPTY_HEAD, one word each.
	MetaBytes = metaWords * WordSize
)

// Memory is the word-addressable simulated scratchpad buffer (C2).
type Memory struct {
	buf     [Size]byte
	pending sync.WaitGroup
	hits    uint64
	misses  uint64
}

// NewMemory returns a Memory with empty vertex and edge slabs: VSLAB_END at
// the first free byte after the metadata header, ESLAB_END at Size (the
// edge slab grows downward from there), both free-lists empty.
func NewMemory() *Memory {
	m := &Memory{}
	m.REG2SPM(0*WordSize, MetaBytes)
	m.REG2SPM(1*WordSize, Null)
	m.REG2SPM(2*WordSize, Size)
	m.REG2SPM(3*WordSize, Null)
	return m
}

func checkAligned(addr uint32) {
	enforce.ENFORCE(addr%WordSize == 0, "misaligned SPM address", addr)
}

// SPM2REG synchronously loads the word at addr.
func (m *Memory) SPM2REG(addr uint32) uint64 {
	checkAligned(addr)
	return binary.LittleEndian.Uint64(m.buf[addr : addr+WordSize])
}

// REG2SPM synchronously stores w at addr.
func (m *Memory) REG2SPM(addr uint32, w uint64) {
	checkAligned(addr)
	binary.LittleEndian.PutUint64(m.buf[addr:addr+WordSize], w)
}

// NBL2SPM issues a non-blocking bulk load of n words into SPM starting at
// addr; readWord(i) supplies the main-memory value for word i. Completion
// is observed only through BARRIER.
func (m *Memory) NBL2SPM(addr uint32, n int, readWord func(wordIdx int) uint64) {
	checkAligned(addr)
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		for i := 0; i < n; i++ {
			m.REG2SPM(addr+uint32(i*WordSize), readWord(i))
		}
	}()
}

// SPM2MEM issues a non-blocking bulk store of n words from SPM starting at
// addr; writeWord(i, w) receives word i's value to persist to main memory.
func (m *Memory) SPM2MEM(addr uint32, n int, writeWord func(wordIdx int, w uint64)) {
	checkAligned(addr)
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		for i := 0; i < n; i++ {
			writeWord(i, m.SPM2REG(addr+uint32(i*WordSize)))
		}
	}()
}

// BARRIER blocks until every outstanding NBL2SPM/SPM2MEM has completed.
func (m *Memory) BARRIER() { m.pending.Wait() }

func (m *Memory) countHit()  { atomic.AddUint64(&m.hits, 1) }
func (m *Memory) countMiss() { atomic.AddUint64(&m.misses, 1) }

// Hits is the running count of check_spm_hit invocations that found the
// datum resident, exposed to the embedder per spec.md §6.
func (m *Memory) Hits() uint64 { return atomic.LoadUint64(&m.hits) }

// Misses is the running count of check_spm_hit invocations that did not.
func (m *Memory) Misses() uint64 { return atomic.LoadUint64(&m.misses) }
