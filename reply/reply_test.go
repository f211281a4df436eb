package reply_test

import (
	"testing"

	"github.com/dsearch/dsearch/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapGetCaseInsensitive(t *testing.T) {
	m := reply.Map(
		reply.StringS("Total_Results"), reply.Integer(42),
		reply.StringS("results"), reply.Array(),
	)
	v, ok := m.MapGet("total_results")
	require.True(t, ok)
	assert.EqualValues(t, 42, v.Int())
}

func TestMapOddElementsPanics(t *testing.T) {
	assert.Panics(t, func() {
		reply.Map(reply.StringS("k"))
	})
}

func TestTakeTransfersOwnershipAndNilsSlot(t *testing.T) {
	arr := reply.Array(reply.Integer(1), reply.Integer(2))
	child := arr.Take(0)
	assert.EqualValues(t, 1, child.Int())
	assert.True(t, arr.At(0).IsNil())
	// second take of the same slot yields Nil, not a dangling alias
	assert.True(t, arr.Take(0).IsNil())
}

func TestTakeMapGet(t *testing.T) {
	m := reply.Map(reply.StringS("results"), reply.Array(reply.Integer(7)))
	v, ok := m.TakeMapGet("RESULTS")
	require.True(t, ok)
	assert.Equal(t, 1, v.Len())
	_, ok = m.MapGet("results")
	require.True(t, ok) // key still present, value now Nil
}

func TestErrorPrefix(t *testing.T) {
	e := reply.Error("ERR Unknown index name: foo")
	assert.Equal(t, "ERR", e.ErrorPrefix())
	e2 := reply.Error("WRONGTYPE")
	assert.Equal(t, "WRONGTYPE", e2.ErrorPrefix())
}
