package mr_test

import (
	"testing"

	"github.com/dsearch/dsearch/mr"
	"github.com/dsearch/dsearch/rcmd"
	"github.com/dsearch/dsearch/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eofReply(protocol int) reply.Reply {
	results := reply.Array()
	if protocol == 3 {
		results = reply.Map()
	}
	return reply.Array(results, reply.Integer(0))
}

func pageReply(protocol int, cursorID int64) reply.Reply {
	results := reply.Array()
	if protocol == 3 {
		results = reply.Map()
	}
	return reply.Array(results, reply.Integer(cursorID))
}

func TestIterateAllShardsEOFClosesChannel(t *testing.T) {
	shards := &fakeShards{n: 2, starts: []uint16{0, 100},
		onSend: func(i int, cmd *rcmd.Command) (reply.Reply, error) {
			return eofReply(cmd.Protocol), nil
		}}

	cmd := rcmd.New(2, rcmd.RootRead, "_FT.CURSOR", "READ", "idx", "0")
	it := mr.MR_Iterate(shards, cmd, 8)

	var got []reply.Reply
	for r, ok := it.Next(); ok; r, ok = it.Next() {
		got = append(got, r)
	}
	assert.Len(t, got, 2)
}

func TestManualTriggerDrivesNextRoundWhenIdle(t *testing.T) {
	round := 0
	shards := &fakeShards{n: 1, starts: []uint16{0},
		onSend: func(i int, cmd *rcmd.Command) (reply.Reply, error) {
			round++
			if round == 1 {
				return pageReply(cmd.Protocol, 99), nil
			}
			return eofReply(cmd.Protocol), nil
		}}

	cmd := rcmd.New(2, rcmd.RootRead, "_FT.CURSOR", "READ", "idx", "0")
	it := mr.MR_Iterate(shards, cmd, 8)

	r, ok := it.Next()
	require.True(t, ok)
	assert.EqualValues(t, 99, r.At(1).Int())

	more := mr.MR_ManuallyTriggerNextIfNeeded(it, 0)
	assert.True(t, more)

	r2, ok := it.Next()
	require.True(t, ok)
	assert.EqualValues(t, 0, r2.At(1).Int())

	_, ok = it.Next()
	assert.False(t, ok, "channel must close once every shard is depleted")
}

func TestTimedOutNonCursorRewritesToDelAndDiscards(t *testing.T) {
	var sentVerbs []string
	shards := &fakeShards{n: 1, starts: []uint16{0},
		onSend: func(i int, cmd *rcmd.Command) (reply.Reply, error) {
			sentVerbs = append(sentVerbs, cmd.ArgString(1))
			if cmd.ArgString(1) == "DEL" {
				return eofReply(cmd.Protocol), nil
			}
			return pageReply(cmd.Protocol, 7), nil
		}}

	cmd := rcmd.New(2, rcmd.RootRead, "_FT.CURSOR", "READ", "idx", "0")
	cmd.ForCursor = false
	it := mr.MR_Iterate(shards, cmd, 8)
	it.MarkTimedOut()

	_, ok := it.Next()
	require.True(t, ok, "the READ page itself is pushed to the consumer")

	mr.MR_ManuallyTriggerNextIfNeeded(it, 0)
	_, ok = it.Next()
	assert.False(t, ok, "the CURSOR DEL confirmation is discarded, not pushed")

	require.Len(t, sentVerbs, 2)
	assert.Equal(t, "READ", sentVerbs[0])
	assert.Equal(t, "DEL", sentVerbs[1])
}
