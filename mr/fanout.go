package mr

import (
	"github.com/dsearch/dsearch/rcmd"
	"github.com/dsearch/dsearch/reply"
)

// ShardSet is the external collaborator (spec.md SS1: physical transport
// is out of scope) that knows how many shards exist, which are masters,
// each shard's start slot, and how to dispatch one command to one shard.
type ShardSet interface {
	Count() int
	IsMaster(shard int) bool
	StartSlot(shard int) uint16
	// Send dispatches cmd to shard, invoking cb exactly once with either a
	// successful reply or an error.
	Send(shard int, cmd *rcmd.Command, cb func(reply.Reply, error))
}

// MR_Fanout forwards cmd to every shard (every master shard if
// ctx.mastersOnly), appending each callback's reply to ctx or incrementing
// its error count, and runs ctx's reducer once every shard has replied
// (spec.md SS4.I).
func MR_Fanout(shards ShardSet, ctx *MRCtx, cmd *rcmd.Command) {
	n := shards.Count()
	for i := 0; i < n; i++ {
		if ctx.mastersOnly && !shards.IsMaster(i) {
			ctx.OnError()
			continue
		}
		shards.Send(i, cmd.Clone(), func(r reply.Reply, err error) {
			if err != nil {
				ctx.OnError()
				return
			}
			ctx.OnReply(r)
		})
	}
}

// MR_MapSingle targets exactly one shard by slot, per spec.md SS4.I.
// Shards are assumed ordered by increasing StartSlot; shard i owns
// [StartSlot(i), StartSlot(i+1)-1], and the last shard owns through
// slotmap.MaxSlot.
func MR_MapSingle(shards ShardSet, ctx *MRCtx, cmd *rcmd.Command, slot uint16) {
	n := shards.Count()
	for i := 0; i < n; i++ {
		start := shards.StartSlot(i)
		if slot < start {
			continue
		}
		if i < n-1 && slot >= shards.StartSlot(i+1) {
			continue
		}
		c := cmd.Clone()
		c.Target.Shard = i
		c.Target.Slot = int(slot)
		shards.Send(i, c, func(r reply.Reply, err error) {
			if err != nil {
				ctx.OnError()
				return
			}
			ctx.OnReply(r)
		})
		return
	}
}
