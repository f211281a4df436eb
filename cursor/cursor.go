// Package cursor implements the cursor registry (spec.md SS4.F, MODULE F):
// id-keyed cursors with per-index quotas, an idle vector for O(1)
// pause/take, and a throttled idle-GC sweep. Grounded on the teacher's
// xreg registry (xact/xreg/marker.go) for the mutex-guarded map-plus-slice
// shape, generalized to a swap-remove idle vector since cursors migrate
// between "active" (not in the vector) and "idle" (in the vector) instead
// of just living/dying in a map.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cursor

import (
	"math/rand"
	"sync"

	"github.com/dsearch/dsearch/cmn"
	"github.com/dsearch/dsearch/cmn/cos"
	"github.com/dsearch/dsearch/cmn/mono"
)

// Cursor is a paused or active query continuation, per spec.md SS3.
type Cursor struct {
	ID            uint64
	IndexName     string
	TimeoutMS     int64
	NextTimeoutNs int64
	// Pos is this cursor's index in the registry's idle vector, or -1
	// while active (not idle). Maintained by the registry, not the
	// caller.
	Pos int32
	// ExecState is the opaque paused-execution continuation (iterator
	// position, partial aggregation state, ...); the registry never
	// looks inside it beyond freeing it on purge. May be nil.
	ExecState ExecCloser
}

// ExecCloser is the minimal contract a paused execution state must
// satisfy so the registry can free it on purge without knowing its
// concrete type.
type ExecCloser interface{ Close() error }

type quota struct {
	used, capacity int
}

// Registry is the per-process cursor table. All operations are under one
// mutex, matching spec.md SS4.F.
type Registry struct {
	mu          sync.Mutex
	byID        map[uint64]*Cursor
	idle        []*Cursor
	quotas      map[string]*quota
	opCount     int
	lastCollect int64
}

func New() *Registry {
	return &Registry{
		byID:   make(map[uint64]*Cursor),
		quotas: make(map[string]*quota),
	}
}

// EnableIndex registers an index's cursor capacity; reserve against an
// index that was never enabled fails with ErrCursorsNotEnabled.
func (r *Registry) EnableIndex(indexName string, capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotas[indexName] = &quota{capacity: capacity}
}

func (r *Registry) DisableIndex(indexName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.quotas, indexName)
}

// Reserve allocates a new cursor for indexName. On quota exhaustion it
// forces one idle-GC sweep and retries once before returning
// ErrTooManyCursors, per spec.md SS4.F.
func (r *Registry) Reserve(indexName string, timeoutMS int64) (*Cursor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.quotas[indexName]
	if !ok {
		return nil, cos.ErrCursorsNotEnabled(indexName)
	}
	if q.used >= q.capacity {
		r.gc(true)
		if q.used >= q.capacity {
			return nil, cos.ErrTooManyCursors()
		}
	}

	id := r.genID()
	c := &Cursor{ID: id, IndexName: indexName, TimeoutMS: timeoutMS, Pos: -1}
	r.byID[id] = c
	q.used++
	r.bumpOpCount()
	return c, nil
}

// Pause moves c into the idle vector with a fresh deadline. O(1).
func (r *Registry) Pause(c *Cursor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.NextTimeoutNs = mono.NanoTime() + c.TimeoutMS*1_000_000
	c.Pos = int32(len(r.idle))
	r.idle = append(r.idle, c)
	r.bumpOpCount()
}

// Take removes id from the idle vector (if present) for execution,
// restoring the swap-remove positional invariant, and returns it. O(1).
func (r *Registry) Take(id uint64) (*Cursor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	if c.Pos >= 0 {
		r.removeIdleAt(c.Pos)
		c.Pos = -1
	}
	r.bumpOpCount()
	return c, true
}

// removeIdleAt swap-removes idle[i], fixing up the displaced cursor's Pos.
func (r *Registry) removeIdleAt(i int32) {
	last := len(r.idle) - 1
	r.idle[i] = r.idle[last]
	r.idle[i].Pos = i
	r.idle[last] = nil
	r.idle = r.idle[:last]
}

// Purge frees id's execution state and removes it from the registry
// entirely (idle or active).
func (r *Registry) Purge(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeLocked(id)
}

func (r *Registry) purgeLocked(id uint64) {
	c, ok := r.byID[id]
	if !ok {
		return
	}
	if c.Pos >= 0 {
		r.removeIdleAt(c.Pos)
	}
	delete(r.byID, id)
	if q, ok := r.quotas[c.IndexName]; ok && q.used > 0 {
		q.used--
	}
	if c.ExecState != nil {
		c.ExecState.Close()
	}
}

// PurgeByName purges every cursor belonging to indexName (index drop/alter).
func (r *Registry) PurgeByName(indexName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.byID {
		if c.IndexName == indexName {
			r.purgeLocked(id)
		}
	}
}

// bumpOpCount triggers an unforced GC sweep every CursorSweepInterval ops.
func (r *Registry) bumpOpCount() {
	r.opCount++
	interval := cmn.GCO.Get().CursorSweepInterval
	if interval > 0 && r.opCount%interval == 0 {
		r.gc(false)
	}
}

// gc sweeps idle cursors past their deadline. Throttled unless forced:
// skipped if now < lastCollect + CursorSweepThrottle.
func (r *Registry) gc(forced bool) {
	now := mono.NanoTime()
	throttle := cmn.GCO.Get().CursorSweepThrottle.Nanoseconds()
	if !forced && now < r.lastCollect+throttle {
		return
	}
	r.lastCollect = now

	var expired []uint64
	for _, c := range r.idle {
		if c.NextTimeoutNs <= now {
			expired = append(expired, c.ID)
		}
	}
	for _, id := range expired {
		r.purgeLocked(id)
	}
}

// genID draws a nonzero random id, redrawing on collision (spec.md SS4.F:
// lrand48()+1 with zero reserved as end-of-stream; math/rand stands in for
// lrand48 since Go has no libc PRNG binding worth pulling in here).
func (r *Registry) genID() uint64 {
	for {
		id := rand.Uint64()
		if id == 0 {
			continue
		}
		if _, exists := r.byID[id]; !exists {
			return id
		}
	}
}
