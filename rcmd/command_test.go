package rcmd_test

import (
	"testing"

	"github.com/dsearch/dsearch/rcmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationDropsCache(t *testing.T) {
	c := rcmd.New(3, rcmd.RootRead, "_FT.CURSOR", "READ", "idx", "7")
	first := c.CachedSerialize()
	require.NotEmpty(t, first)
	c.SetArg(1, []byte("DEL"))
	second := c.CachedSerialize()
	assert.NotEqual(t, string(first), string(second))
}

func TestCloneIsIndependent(t *testing.T) {
	c := rcmd.New(2, rcmd.RootRead, "_FT.CURSOR", "READ", "idx", "7")
	clone := c.Clone()
	clone.SetArg(3, []byte("99"))
	assert.Equal(t, "7", c.ArgString(3))
	assert.Equal(t, "99", clone.ArgString(3))
}

func TestRewriteCursorVerbRequiresFourArgs(t *testing.T) {
	c := rcmd.New(2, rcmd.RootRead, "_FT.CURSOR", "READ", "idx")
	assert.Panics(t, func() { rcmd.RewriteCursorVerb(c, "DEL") })
}

func TestRewriteCursorVerb(t *testing.T) {
	c := rcmd.New(2, rcmd.RootRead, "_FT.CURSOR", "READ", "idx", "7")
	rcmd.RewriteCursorVerb(c, "DEL")
	assert.Equal(t, "DEL", c.ArgString(1))
}

func TestCompressRoundTrip(t *testing.T) {
	c := rcmd.New(3, rcmd.RootRead, "_FT.AGGREGATE", "idx", "*")
	compressed, err := c.CompressedSerialize()
	require.NoError(t, err)
	raw, err := rcmd.DecompressSerialized(compressed)
	require.NoError(t, err)
	assert.Equal(t, c.CachedSerialize(), raw)
}

func TestMarkDispatched(t *testing.T) {
	c := rcmd.New(2, rcmd.RootAgg, "_FT.AGGREGATE", "idx", "*", "COORD_DISPATCH_TIME", "0")
	c.DispatchTimeArgIndex = 4
	c.CoordStartTimeNs = 1000
	c.MarkDispatched(1500)
	assert.Equal(t, "501", c.ArgString(4))
}
