package coll

import "testing"

func Test_BitmapSetGetClear(t *testing.T) {
	var bm Bitmap
	bm.Set(3)
	bm.Set(130)
	if !bm.Get(3) || !bm.Get(130) {
		t.Error("expected both bits set")
	}
	if bm.Get(4) {
		t.Error("expected bit 4 unset")
	}
	bm.Clear(3)
	if bm.Get(3) {
		t.Error("expected bit 3 cleared")
	}
	if bm.Count() != 1 {
		t.Error("expected exactly one set bit, got", bm.Count())
	}
}

func Test_BitmapFirstUnused(t *testing.T) {
	var bm Bitmap
	bm.Grow(70)
	for i := uint32(0); i < 5; i++ {
		bm.Set(i)
	}
	if got := bm.FirstUnused(); got != 5 {
		t.Error("expected first unused bit 5, got", got)
	}
}

func Test_BitmapQuickSet(t *testing.T) {
	var bm Bitmap
	if bm.QuickSet(0) {
		t.Error("expected QuickSet to fail on an empty bitmap")
	}
	bm.Grow(10)
	if !bm.QuickSet(2) {
		t.Error("expected QuickSet to succeed once grown")
	}
	if !bm.Get(2) {
		t.Error("expected bit 2 set")
	}
}
