// Package cache implements the per-vertex gather cache (C4): a memo of the
// last full gather result, kept consistent across runs via posted deltas.
//
// Grounded on spec.md §4.4 and on the clear-cache bug noted in spec.md §9 /
// SPEC_FULL.md §13.1 (the original's internal_clear_gather_cache compares
// rather than assigns has_cache[v] == false; this port assigns, per the
// spec's explicit mandate). No teacher analogue exists for a gather cache,
// so the ambient style (plain mutex-guarded maps, no external dependency)
// follows the rest of this module's internal/ packages rather than any
// single teacher file.
package cache

import "sync"

// GatherCache memoises the last full-gather accumulator per vertex, of the
// vertex program's user-chosen gather type G. A zero GatherCache is usable
// but reports itself disabled; use New to enable caching.
type GatherCache[G any] struct {
	mu       sync.Mutex
	enabled  bool
	hasCache map[uint32]bool
	cache    map[uint32]G
}

// New returns a GatherCache. Caching is off by default (spec.md §6), so
// callers pass the engine's EnableGatherCache option through here.
func New[G any](enabled bool) *GatherCache[G] {
	return &GatherCache[G]{
		enabled:  enabled,
		hasCache: make(map[uint32]bool),
		cache:    make(map[uint32]G),
	}
}

// Enabled reports whether caching is active at all.
func (c *GatherCache[G]) Enabled() bool { return c.enabled }

// Peek returns the cached accumulator for v and whether it is present.
func (c *GatherCache[G]) Peek(v uint32) (G, bool) {
	var zero G
	if !c.enabled {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasCache[v] {
		return zero, false
	}
	return c.cache[v], true
}

// Store records accum as v's cached result after a full gather that
// contributed at least one edge, per the write-through policy in spec.md
// §4.4. A no-op if caching is disabled.
func (c *GatherCache[G]) Store(v uint32, accum G) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[v] = accum
	c.hasCache[v] = true
}

// PostDelta folds δ into v's cached accumulator via combine, the user
// gather-type's associative += operator. If v has no cached entry the delta
// is silently dropped — the next full gather will recompute from scratch.
func (c *GatherCache[G]) PostDelta(v uint32, delta G, combine func(accum, delta G) G) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasCache[v] {
		return
	}
	c.cache[v] = combine(c.cache[v], delta)
}

// Clear invalidates v's cached entry, if any. Implemented as an assignment
// (has_cache[v] = false), not the comparison the original source performed
// by mistake.
func (c *GatherCache[G]) Clear(v uint32) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasCache[v] {
		c.hasCache[v] = false
	}
}
