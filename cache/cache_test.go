package cache

import "testing"

func sumCombine(accum, delta float64) float64 { return accum + delta }

func Test_DisabledCacheAlwaysMisses(t *testing.T) {
	c := New[float64](false)
	c.Store(0, 5)
	if _, ok := c.Peek(0); ok {
		t.Fatal("expected disabled cache to never report a hit")
	}
}

func Test_StoreThenPeekHits(t *testing.T) {
	c := New[float64](true)
	c.Store(1, 3.5)
	got, ok := c.Peek(1)
	if !ok || got != 3.5 {
		t.Fatalf("expected (3.5, true), got (%v, %v)", got, ok)
	}
}

func Test_PostDeltaUpdatesCachedEntry(t *testing.T) {
	c := New[float64](true)
	c.Store(2, 1.0)
	c.PostDelta(2, 0.5, sumCombine)
	got, ok := c.Peek(2)
	if !ok || got != 1.5 {
		t.Fatalf("expected (1.5, true), got (%v, %v)", got, ok)
	}
}

// Test_PostDeltaWithoutCacheIsDropped matches spec.md §4.4: a delta posted
// for a vertex with no cached entry is silently lost, not buffered.
func Test_PostDeltaWithoutCacheIsDropped(t *testing.T) {
	c := New[float64](true)
	c.PostDelta(3, 9.0, sumCombine)
	if _, ok := c.Peek(3); ok {
		t.Fatal("expected no cached entry to be created by a delta alone")
	}
}

// Test_ClearCausesMiss matches spec.md §7's cache-clear law: after Clear,
// the next Peek must miss.
func Test_ClearCausesMiss(t *testing.T) {
	c := New[float64](true)
	c.Store(4, 2.0)
	c.Clear(4)
	if _, ok := c.Peek(4); ok {
		t.Fatal("expected Clear to invalidate the cached entry")
	}
	// Subsequent posted deltas with no fresh Store must still be dropped.
	c.PostDelta(4, 1.0, sumCombine)
	if _, ok := c.Peek(4); ok {
		t.Fatal("expected delta after Clear to be dropped, not to resurrect the entry")
	}
}

func Test_ClearOfNeverCachedVertexIsNoop(t *testing.T) {
	c := New[float64](true)
	c.Clear(999)
	if _, ok := c.Peek(999); ok {
		t.Fatal("expected no entry after clearing a never-cached vertex")
	}
}
