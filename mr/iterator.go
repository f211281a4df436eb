package mr

import (
	"time"

	"github.com/dsearch/dsearch/rcmd"
	"github.com/dsearch/dsearch/reply"
	"go.uber.org/atomic"
)

// PerShardCtx is one shard's iteration slot: the in-flight/next command to
// send, and whether that shard has reached EOF (spec.md SS3 MODULE J).
type PerShardCtx struct {
	Cmd      *rcmd.Command
	Depleted bool
}

// MRIterator joins N per-shard cursor callbacks into one consumer-facing
// bounded channel (spec.md SS3 MODULE J). Zero value is not usable; build
// with MR_Iterate.
type MRIterator struct {
	ch     chan reply.Reply
	shards ShardSet

	pending   atomic.Int32
	inProcess atomic.Int32
	timedOut  atomic.Bool

	cbxs []*PerShardCtx
}

// MR_Iterate seeds pending=1, in_process=1 before the first round is sent
// so that a caller racing MR_ManuallyTriggerNextIfNeeded against iterStart
// never observes zero in-flight work that is not actually done (spec.md
// SS4.I). chanCap bounds the channel depth (spec.md SS2 component J).
func MR_Iterate(shards ShardSet, cmd *rcmd.Command, chanCap int) *MRIterator {
	it := &MRIterator{ch: make(chan reply.Reply, chanCap), shards: shards}
	it.pending.Store(1)
	it.inProcess.Store(1)
	it.iterStart(cmd)
	return it
}

// iterStart snapshots the shard count, replicates cmd once per shard
// targeting that shard's start slot, and sends all N (spec.md SS4.I).
func (it *MRIterator) iterStart(cmd *rcmd.Command) {
	n := it.shards.Count()
	it.cbxs = make([]*PerShardCtx, n)
	it.pending.Store(int32(n))
	it.inProcess.Store(int32(n))
	for i := 0; i < n; i++ {
		c := cmd.Clone()
		c.Target.Shard = i
		c.Target.Slot = int(it.shards.StartSlot(i))
		psc := &PerShardCtx{Cmd: c}
		it.cbxs[i] = psc
		it.sendRound(i, psc)
	}
}

func (it *MRIterator) sendRound(shard int, psc *PerShardCtx) {
	it.shards.Send(shard, psc.Cmd, func(r reply.Reply, err error) {
		netCursorCallback(it, shard, psc, r, err)
	})
}

// push enqueues r for the consumer; never blocks forever on a full
// channel beyond normal backpressure -- callers are expected to keep the
// channel capacity wide enough that a shard callback thread is not stuck
// behind a slow consumer for the scenarios this iterator targets.
func (it *MRIterator) push(r reply.Reply) {
	it.ch <- r
}

func (it *MRIterator) closeIfDrained() {
	if it.pending.Load() == 0 {
		close(it.ch)
	}
}

// MRIterator_Next pops the next reply, or (Reply{}, false) once the
// channel has been closed (spec.md SS4.J's MRITERATOR_DONE sentinel,
// expressed the Go way as an ok-bool rather than a distinguished value).
func (it *MRIterator) Next() (reply.Reply, bool) {
	r, ok := <-it.ch
	return r, ok
}

// ChanLen reports the number of replies currently buffered, used by
// MR_ManuallyTriggerNextIfNeeded's drain-threshold check.
func (it *MRIterator) ChanLen() int { return len(it.ch) }

// MarkTimedOut flags the coordinator-side timeout the next netCursorCallback
// invocation will observe to decide between CURSOR PROFILE and CURSOR DEL.
// MR_ManuallyTriggerNextIfNeeded also observes it: a queued CURSOR READ is
// rewritten by the same rule before the next round is sent.
func (it *MRIterator) MarkTimedOut() { it.timedOut.Store(true) }

// MR_ManuallyTriggerNextIfNeeded drives the next round of per-shard sends
// once the consumer has drained below threshold and no round is currently
// in flight (spec.md SS4.J).
func MR_ManuallyTriggerNextIfNeeded(it *MRIterator, threshold int) bool {
	if it.ChanLen() > threshold {
		return true
	}
	if it.inProcess.Load() > 0 {
		return true
	}
	pending := it.pending.Load()
	if pending > 0 {
		it.inProcess.Store(pending)
		timedOut := it.timedOut.Load()
		for i, psc := range it.cbxs {
			if psc.Depleted {
				continue
			}
			if timedOut && psc.Cmd.Root == rcmd.RootRead {
				switch {
				case psc.Cmd.ForProfiling:
					rcmd.RewriteCursorVerb(psc.Cmd, "PROFILE")
					psc.Cmd.Root = rcmd.RootProfile
				case !psc.Cmd.ForCursor:
					rcmd.RewriteCursorVerb(psc.Cmd, "DEL")
					psc.Cmd.Root = rcmd.RootDel
				}
			}
			it.sendRound(i, psc)
		}
		return true
	}
	return it.ChanLen() > 0
}

// MRIterator_WaitDone shuts the iterator down. If mayBeIdle, it busy-waits
// (1ms poll, spec.md SS5 suspension point 4) for the current round to
// finish, then rewrites every still-pending shard's in-flight command from
// CURSOR READ to CURSOR DEL in place and sends one last round before
// waiting for the channel to close.
func MRIterator_WaitDone(it *MRIterator, mayBeIdle bool) {
	if mayBeIdle {
		for it.inProcess.Load() != 0 {
			time.Sleep(time.Millisecond)
		}
		if it.pending.Load() > 0 {
			var n int32
			for i, psc := range it.cbxs {
				if psc.Depleted {
					continue
				}
				if psc.Cmd.Root == rcmd.RootRead {
					rcmd.RewriteCursorVerb(psc.Cmd, "DEL")
					psc.Cmd.Root = rcmd.RootDel
				}
				n++
				it.sendRound(i, psc)
			}
			it.inProcess.Store(n)
		}
	}
	for r, ok := it.Next(); ok; r, ok = it.Next() {
		_ = r // MRIterator_Free below drains the rest; this loop is the wait
	}
}

// MRIterator_Free drains any remaining buffered replies once the caller is
// done with the iterator (Go's GC reclaims the channel and commands; this
// exists so callers retain the teacher's explicit free-on-shutdown shape).
func MRIterator_Free(it *MRIterator) {
	for {
		select {
		case _, ok := <-it.ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
