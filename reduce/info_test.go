package reduce_test

import (
	"testing"

	"github.com/dsearch/dsearch/reduce"
	"github.com/dsearch/dsearch/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gcStats(totalMs, totalCycles int64) reply.Reply {
	return reply.Map(
		reply.StringS("bytes_collected"), reply.Integer(0),
		reply.StringS("total_ms_run"), reply.Integer(totalMs),
		reply.StringS("total_cycles"), reply.Integer(totalCycles),
		reply.StringS("average_cycle_time_ms"), reply.Double(0),
	)
}

func shardInfo(numDocs int64, totalMs, totalCycles int64) reply.Reply {
	return reply.Map(
		reply.StringS("num_docs"), reply.Integer(numDocs),
		reply.StringS("percent_indexed"), reply.Double(1.0),
		reply.StringS("index_name"), reply.StringS("idx"),
		reply.StringS("gc_stats"), gcStats(totalMs, totalCycles),
	)
}

func TestInfoReducerSumsWholeFields(t *testing.T) {
	out, err := reduce.InfoReducer([]reply.Reply{shardInfo(10, 100, 5), shardInfo(20, 200, 5)})
	require.NoError(t, err)
	v, ok := out.MapGet("num_docs")
	require.True(t, ok)
	assert.EqualValues(t, 30, v.Int())
}

func TestInfoReducerRecomputesAverageCycleTimeFromSums(t *testing.T) {
	out, err := reduce.InfoReducer([]reply.Reply{shardInfo(1, 100, 5), shardInfo(1, 200, 5)})
	require.NoError(t, err)
	gc, ok := out.MapGet("gc_stats")
	require.True(t, ok)
	avg, ok := gc.MapGet("average_cycle_time_ms")
	require.True(t, ok)
	// total_ms_run=300 / total_cycles=10 = 30.
	assert.InDelta(t, 30.0, avg.Dbl(), 0.0001)
}

func TestInfoReducerTakesFirstNonNullSpecialField(t *testing.T) {
	out, err := reduce.InfoReducer([]reply.Reply{shardInfo(1, 1, 1), shardInfo(1, 1, 1)})
	require.NoError(t, err)
	v, ok := out.MapGet("index_name")
	require.True(t, ok)
	assert.Equal(t, "idx", v.Str())
}

func TestInfoReducerReturnsFirstErrorWhenAllShardsErrored(t *testing.T) {
	out, err := reduce.InfoReducer([]reply.Reply{reply.Error("ERR one"), reply.Error("ERR two")})
	require.NoError(t, err)
	assert.True(t, out.IsError())
	assert.Equal(t, "ERR one", out.Str())
}

func TestInfoReducerDropsErroredShardsWhenSomeSucceed(t *testing.T) {
	out, err := reduce.InfoReducer([]reply.Reply{reply.Error("ERR one"), shardInfo(5, 1, 1)})
	require.NoError(t, err)
	v, ok := out.MapGet("num_docs")
	require.True(t, ok)
	assert.EqualValues(t, 5, v.Int())
}
