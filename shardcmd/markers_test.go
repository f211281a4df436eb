package shardcmd_test

import (
	"testing"

	"github.com/dsearch/dsearch/shardcmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotsMarkerRoundTrip(t *testing.T) {
	in := []shardcmd.SlotRangeWire{{Start: 0, End: 99}, {Start: 200, End: 16383}}
	blob := shardcmd.EncodeSlotsMarker(in)
	out, err := shardcmd.DecodeSlotsMarker(blob)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSlotsMarkerMalformed(t *testing.T) {
	_, err := shardcmd.DecodeSlotsMarker([]byte{1, 2})
	assert.ErrorIs(t, err, shardcmd.ErrMalformedSlotsBlob)
}

func TestDispatchTimeMarkerRoundTrip(t *testing.T) {
	marker := shardcmd.EncodeDispatchTimeMarker(1500, 1000)
	assert.Equal(t, "501", string(marker))
	v, err := shardcmd.DecodeDispatchTimeMarker(marker)
	require.NoError(t, err)
	assert.EqualValues(t, 501, v)
}

func TestKeyPositionOf(t *testing.T) {
	kp, ok := shardcmd.KeyPositionOf(shardcmd.Search)
	require.True(t, ok)
	assert.EqualValues(t, 1, kp)

	kp, ok = shardcmd.KeyPositionOf(shardcmd.MGet)
	require.True(t, ok)
	assert.Equal(t, shardcmd.Broadcast, kp)

	_, ok = shardcmd.KeyPositionOf("_FT.NOPE")
	assert.False(t, ok)
}
