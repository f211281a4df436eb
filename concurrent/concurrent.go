// Package concurrent implements ConcurrentSearchCtx (spec.md SS4.H,
// MODULE H): a single query's cooperative hold on the global index lock,
// released and reopened on a fixed interval so a long-running query does
// not starve writers. Grounded on the teacher's ConcurrentSearchCtx-shaped
// timer checks (rebalance/EC status polling in reb/status.go uses the same
// "now - last > interval" gate before doing expensive work); generalized
// here to gate a lock release/reacquire instead of a poll.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package concurrent

import (
	"sync"

	"github.com/dsearch/dsearch/cmn"
	"github.com/dsearch/dsearch/cmn/debug"
	"github.com/dsearch/dsearch/cmn/mono"
)

// ReopenCallback re-establishes a monitored key's iterator position after
// the global lock was released and reacquired (the underlying data may
// have moved under us while unlocked).
type ReopenCallback func(privdata any)

type openKey struct {
	cb       ReopenCallback
	privdata any
	freePriv func(any)
}

// Ctx is one query's cooperative lock-holding context. Exactly one
// goroutine drives a Ctx; it is not safe for concurrent use by design
// (spec.md SS4.H: "single-threaded per query, cooperative preemption at
// well-defined points").
type Ctx struct {
	global    sync.Locker
	lastTime  int64
	isLocked  bool
	openKeys  []openKey
	timeout   int64 // nanoseconds
	cancelled bool
}

// New creates a context that cooperatively releases global on the
// interval configured in cmn.GCO (spec.md SS4.H: CONCURRENT_TIMEOUT_NS,
// ~5ms).
func New(global sync.Locker) *Ctx {
	return &Ctx{global: global, timeout: cmn.GCO.Get().ConcurrentTimeout.Nanoseconds()}
}

// Lock acquires the global lock and starts the release/reacquire clock.
func (c *Ctx) Lock() {
	debug.Assert(!c.isLocked, "concurrent: Lock called while already locked")
	c.global.Lock()
	c.isLocked = true
	c.lastTime = mono.NanoTime()
}

// Unlock releases the global lock. Callers normally reach this only via
// Close; exposed for callers that need to drop the lock without
// finishing the query (e.g. blocking on client I/O).
func (c *Ctx) Unlock() {
	debug.Assert(c.isLocked, "concurrent: Unlock called while not locked")
	c.global.Unlock()
	c.isLocked = false
}

// AddOpenKey registers a monitored key whose iterator position must be
// re-established via cb after every lock release/reacquire cycle. free,
// if non-nil, is invoked on privdata when the key is no longer monitored
// (Close or RemoveOpenKey).
func (c *Ctx) AddOpenKey(cb ReopenCallback, privdata any, free func(any)) {
	c.openKeys = append(c.openKeys, openKey{cb: cb, privdata: privdata, freePriv: free})
}

// CheckTimer is the cooperative preemption point (spec.md SS4.H): called
// between result-processor pulls or inside long scans. If more than the
// configured interval has elapsed since the last (re)acquisition, it
// releases and reacquires the global lock and runs every reopen callback,
// in registration order, before returning -- giving a pending writer a
// chance to run without reordering any results (callers never observe a
// partial release: the lock is always held again by the time CheckTimer
// returns).
func (c *Ctx) CheckTimer(now int64) {
	debug.Assert(c.isLocked, "concurrent: CheckTimer called while not locked")
	if now-c.lastTime <= c.timeout {
		return
	}
	c.global.Unlock()
	c.global.Lock()
	for _, k := range c.openKeys {
		k.cb(k.privdata)
	}
	c.lastTime = now
}

// LastTime returns the nanosecond timestamp of the last (re)acquisition,
// exposed for callers driving CheckTimer off their own clock source.
func (c *Ctx) LastTime() int64 { return c.lastTime }

// Cancel signals a timeout to be observed at the next cooperative point
// (spec.md SS4.H: "no forced interruption" -- the query loop itself must
// check Cancelled and unwind).
func (c *Ctx) Cancel() { c.cancelled = true }

// Cancelled reports whether Cancel has been called.
func (c *Ctx) Cancelled() bool { return c.cancelled }

// Close releases the global lock (if held) and frees every monitored
// key's private data.
func (c *Ctx) Close() {
	if c.isLocked {
		c.Unlock()
	}
	for _, k := range c.openKeys {
		if k.freePriv != nil {
			k.freePriv(k.privdata)
		}
	}
	c.openKeys = nil
}
