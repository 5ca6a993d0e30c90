package spm

import "testing"

func Test_RegRoundTrip(t *testing.T) {
	m := NewMemory()
	m.REG2SPM(MetaBytes, 0xdeadbeef)
	if got := m.SPM2REG(MetaBytes); got != 0xdeadbeef {
		t.Errorf("expected 0xdeadbeef, got %x", got)
	}
}

func Test_MisalignedAddrPanics(t *testing.T) {
	m := NewMemory()
	defer func() {
		if recover() == nil {
			t.Error("expected panic on misaligned address")
		}
	}()
	m.SPM2REG(MetaBytes + 1)
}

func Test_InitialMetadata(t *testing.T) {
	m := NewMemory()
	if got := m.SPM2REG(0); got != MetaBytes {
		t.Errorf("expected initial VSLAB_END=%d, got %d", MetaBytes, got)
	}
	if got := m.SPM2REG(2 * WordSize); got != Size {
		t.Errorf("expected initial ESLAB_END=%d, got %d", Size, got)
	}
}

func Test_BulkLoadStoreBarrier(t *testing.T) {
	m := NewMemory()
	src := []uint64{1, 2, 3, 4}
	m.NBL2SPM(MetaBytes, len(src), func(i int) uint64 { return src[i] })
	m.BARRIER()
	for i, want := range src {
		if got := m.SPM2REG(MetaBytes + uint32(i*WordSize)); got != want {
			t.Errorf("word %d: got %d want %d", i, got, want)
		}
	}

	dst := make([]uint64, len(src))
	m.SPM2MEM(MetaBytes, len(src), func(i int, w uint64) { dst[i] = w })
	m.BARRIER()
	for i, want := range src {
		if dst[i] != want {
			t.Errorf("dst %d: got %d want %d", i, dst[i], want)
		}
	}
}

func Test_HitMissCounters(t *testing.T) {
	m := NewMemory()
	m.countHit()
	m.countHit()
	m.countMiss()
	if m.Hits() != 2 || m.Misses() != 1 {
		t.Errorf("expected hits=2 misses=1, got hits=%d misses=%d", m.Hits(), m.Misses())
	}
}
