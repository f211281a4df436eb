// Package mr implements the MapReduce fan-out layer (spec.md SS4.I/J/K,
// MODULES I/J/K): MRCtx's completion bookkeeping, MR_Fanout/MR_MapSingle
// collective dispatch, the bounded-channel MRIterator, and the per-shard
// netCursorCallback state machine driving CURSOR READ/DEL/PROFILE.
// Grounded on the teacher's transport.Bundle data-mover (transport/bundle/
// dmover.go), which fans a payload out to every target and joins
// completions through callbacks the same shape as MRCtx's reducer
// callback; the bounded-channel iterator is grounded on the teacher's
// reb (rebalance) status polling (reb/status.go) for the "pending count
// drives loop termination" pattern.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package mr

import (
	"sync"

	"github.com/dsearch/dsearch/cmn/debug"
	"github.com/dsearch/dsearch/rcmd"
	"github.com/dsearch/dsearch/reply"
)

// Reducer merges the collected per-shard replies into one reply. It owns
// replies (may Take from them freely).
type Reducer func(ctx *MRCtx, numReplied int, replies []reply.Reply) reply.Reply

// MRCtx is the per-request fan-out context (spec.md SS3 MODULE I):
// expected/replied/errored counters, the collected replies, the reducer
// to run at completion, and an optional inner reducer for pipeline
// continuations instead of unblocking a client.
type MRCtx struct {
	mu sync.Mutex

	numReplied  int
	numErrored  int
	numExpected int
	replies     []reply.Reply

	reducer      Reducer
	innerReducer Reducer
	priv         any
	mastersOnly  bool
	cmd          *rcmd.Command

	done      chan struct{}
	completed bool
	result    reply.Reply
}

// NewMRCtx creates a fan-out context expecting numExpected callbacks.
func NewMRCtx(cmd *rcmd.Command, numExpected int, reducer Reducer, priv any, mastersOnly bool) *MRCtx {
	return &MRCtx{
		numExpected: numExpected,
		replies:     make([]reply.Reply, 0, numExpected),
		reducer:     reducer,
		priv:        priv,
		mastersOnly: mastersOnly,
		cmd:         cmd,
		done:        make(chan struct{}),
	}
}

func (m *MRCtx) Priv() any { return m.priv }

// SetInnerReducer makes completion invoke reducer directly as a pipeline
// continuation instead of unblocking a waiting client (spec.md SS4.I).
func (m *MRCtx) SetInnerReducer(r Reducer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.innerReducer = r
}

// OnReply records a successful per-shard reply.
func (m *MRCtx) OnReply(r reply.Reply) {
	m.mu.Lock()
	m.replies = append(m.replies, r)
	m.numReplied++
	m.maybeCompleteLocked()
	m.mu.Unlock()
}

// OnError records a per-shard failure; the error reply still counts
// toward completion but is not appended to replies.
func (m *MRCtx) OnError() {
	m.mu.Lock()
	m.numErrored++
	m.maybeCompleteLocked()
	m.mu.Unlock()
}

// maybeCompleteLocked runs the completion reducer exactly once, when
// numReplied + numErrored == numExpected (spec.md SS3 MODULE I).
func (m *MRCtx) maybeCompleteLocked() {
	if m.numReplied+m.numErrored != m.numExpected {
		return
	}
	debug.Assert(!m.completed, "MRCtx: completion reducer invoked more than once")
	m.completed = true
	replies := m.replies
	numReplied := m.numReplied
	if m.innerReducer != nil {
		m.result = m.innerReducer(m, numReplied, replies)
	} else {
		m.result = m.reducer(m, numReplied, replies)
	}
	close(m.done)
}

// Wait blocks until every expected callback has landed and returns the
// reducer's output -- the Go stand-in for "unblocks the blocked client".
func (m *MRCtx) Wait() reply.Reply {
	<-m.done
	return m.result
}
