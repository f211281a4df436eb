package mr

import (
	"github.com/dsearch/dsearch/cmn/nlog"
	"github.com/dsearch/dsearch/rcmd"
	"github.com/dsearch/dsearch/reply"
)

// netCursorCallback is the per-shard reply dispatcher (spec.md SS4.K,
// MODULE K). It is invoked once per round-trip for shard i and decides,
// from the cursor id alone (never from result contents -- an empty page
// is a valid page), what psc.Cmd becomes for the next round.
func netCursorCallback(it *MRIterator, shard int, psc *PerShardCtx, r reply.Reply, err error) {
	if err != nil {
		nlog.Errorf("mr: shard %d transport error: %v", shard, err)
		markDepleted(it, psc)
		return
	}
	if r.IsError() {
		nlog.Errorf("mr: shard %d error: %s", shard, r.ErrorPrefix())
		it.push(r)
		markDepleted(it, psc)
		return
	}
	if psc.Cmd.Root == rcmd.RootDel {
		// confirmation of a CURSOR DEL we issued ourselves: discard and finish.
		markDepleted(it, psc)
		return
	}

	cursorID, ok := decodeCursorID(psc.Cmd.Protocol, r)
	if !ok {
		nlog.Errorf("mr: shard %d: reply shape mismatches protocol %d", shard, psc.Cmd.Protocol)
		it.push(r)
		markDepleted(it, psc)
		return
	}

	it.push(r)

	switch {
	case cursorID == 0:
		markDepleted(it, psc)
	case it.timedOut.Load() && psc.Cmd.ForProfiling:
		rewriteCursorCommand(psc.Cmd, "PROFILE", rcmd.RootProfile, cursorID)
		finishRound(it)
	case it.timedOut.Load() && !psc.Cmd.ForCursor:
		rewriteCursorCommand(psc.Cmd, "DEL", rcmd.RootDel, cursorID)
		finishRound(it)
	default:
		rewriteCursorCommand(psc.Cmd, "READ", rcmd.RootRead, cursorID)
		finishRound(it)
	}
}

// rewriteCursorCommand rewrites a 4-arg `_FT.CURSOR <verb> <idx> <id>`
// command in place for the next round (spec.md SS4.I/J).
func rewriteCursorCommand(c *rcmd.Command, verb string, root rcmd.RootCommand, cursorID int64) {
	rcmd.RewriteCursorVerb(c, verb)
	c.Root = root
	c.SetArg(3, []byte(itoa(cursorID)))
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func markDepleted(it *MRIterator, psc *PerShardCtx) {
	psc.Depleted = true
	it.pending.Dec()
	it.inProcess.Dec()
	it.closeIfDrained()
}

func finishRound(it *MRIterator) {
	it.inProcess.Dec()
}

// decodeCursorID validates the outer reply shape (RESP3 must be
// [map, int(, ...)]; RESP2 must be [array, int(, ...)]) and extracts the
// cursor id at index 1.
func decodeCursorID(protocol int, r reply.Reply) (int64, bool) {
	if r.Type() != reply.TArray || r.Len() < 2 {
		return 0, false
	}
	first := r.At(0)
	if protocol == 3 {
		if first.Type() != reply.TMap {
			return 0, false
		}
	} else if first.Type() != reply.TArray {
		return 0, false
	}
	return r.At(1).Int(), true
}

// ExtractTotalResults implements spec.md SS4.K's total_results extraction,
// used by aggregator barrier callbacks (spec.md SS6): RESP3 descends into
// "results" first when forProfiling, then reads the "total_results" field;
// RESP2 reads the first element of the results array.
func ExtractTotalResults(protocol int, forProfiling bool, r reply.Reply) (int64, bool) {
	if r.Len() == 0 {
		return 0, false
	}
	first := r.At(0)
	if protocol == 3 {
		m := first
		if forProfiling {
			if v, ok := m.MapGet("results"); ok {
				m = v
			}
		}
		if v, ok := m.MapGet("total_results"); ok {
			return v.Int(), true
		}
		return 0, false
	}
	if first.Type() != reply.TArray || first.Len() == 0 {
		return 0, false
	}
	return first.At(0).Int(), true
}
