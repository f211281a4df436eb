// Package ksver implements the KeySpaceVersionTracker (spec.md SS4.D.1,
// MODULE E): a refcount per key_space_version, gating whether a slot trim
// is safe to start. Grounded on xact.RefcntQuiCB's ref-counted quiescence
// check (xact/qui.go) -- same "active iff refcount > 0" shape, generalized
// from a single counter to one counter per version.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package ksver

import "sync"

// Tracker maps key_space_version -> in-flight query count. All operations
// are serialized under one mutex (spec.md SS4.D.1: "hot on query
// entry/exit... prefer fine-grained atomics" -- a single small map under a
// mutex is the fine-grained-enough shape here; the hot path is a map bump,
// not a full ASM transition).
type Tracker struct {
	mu      sync.Mutex
	current uint32
	counts  map[uint32]uint32
}

func New() *Tracker {
	return &Tracker{counts: make(map[uint32]uint32)}
}

// Increase records a newly issued query against v, the version observed at
// issue time. The caller must stash v on its query context and pass the
// same v to Decrease on completion, regardless of what current is by then.
func (t *Tracker) Increase(v uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v > t.current {
		t.current = v
	}
	t.counts[v]++
}

// Decrease ends the query started against v. Panics if v was never
// increased (caller bug: decrementing a version with no outstanding
// queries can only indicate a mismatched Increase/Decrease pair).
func (t *Tracker) Decrease(v uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.counts[v]
	if !ok || c == 0 {
		panic("ksver: Decrease: no outstanding query for version")
	}
	t.counts[v] = c - 1
}

// Count returns the in-flight query count for version v.
func (t *Tracker) Count(v uint32) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[v]
}

// Current returns the highest version Increase has observed so far. The
// tracker does not learn of version bumps except through Increase calls
// against the new version, so callers that bump a slotmap.Tracker's
// version without also issuing a query at that version must feed it via
// SetCurrent.
func (t *Tracker) Current() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// SetCurrent records a version bump that happened with no accompanying
// query (e.g. StartImport/CompleteImport/StartTrim bump the slot tracker's
// version without calling Increase, and CanStartTrimming must be
// evaluated against the version the ASM transition actually produced).
func (t *Tracker) SetCurrent(v uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v > t.current {
		t.current = v
	}
}

// Cleanup removes every entry whose count is zero and whose version is
// strictly less than current, per spec.md SS4.D.1. Call only on the main
// thread after confirming all shards acknowledged the new topology;
// Cleanup does not itself wait for that.
func (t *Tracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for v, c := range t.counts {
		if c == 0 && v < t.current {
			delete(t.counts, v)
		}
	}
}

// CanStartTrimming reports whether the current version's count is zero.
func (t *Tracker) CanStartTrimming() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[t.current] == 0
}
