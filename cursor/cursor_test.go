package cursor_test

import (
	"testing"

	"github.com/dsearch/dsearch/cmn"
	"github.com/dsearch/dsearch/cursor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveRequiresEnabledIndex(t *testing.T) {
	r := cursor.New()
	_, err := r.Reserve("idx", 1000)
	assert.Error(t, err)
}

func TestReserveRespectsQuota(t *testing.T) {
	r := cursor.New()
	r.EnableIndex("idx", 1)
	_, err := r.Reserve("idx", 1000)
	require.NoError(t, err)
	_, err = r.Reserve("idx", 1000)
	assert.Error(t, err)
}

func TestPauseTakeRoundTrip(t *testing.T) {
	r := cursor.New()
	r.EnableIndex("idx", 4)
	c, err := r.Reserve("idx", 1000)
	require.NoError(t, err)

	r.Pause(c)
	assert.GreaterOrEqual(t, c.Pos, int32(0))

	got, ok := r.Take(c.ID)
	require.True(t, ok)
	assert.Equal(t, c.ID, got.ID)
	assert.EqualValues(t, -1, got.Pos)
}

func TestTakeUnknownIDFails(t *testing.T) {
	r := cursor.New()
	_, ok := r.Take(12345)
	assert.False(t, ok)
}

func TestPurgeFreesQuotaSlot(t *testing.T) {
	r := cursor.New()
	r.EnableIndex("idx", 1)
	c, err := r.Reserve("idx", 1000)
	require.NoError(t, err)

	r.Purge(c.ID)
	_, err = r.Reserve("idx", 1000)
	assert.NoError(t, err, "purging should free the quota slot for a new reservation")
}

func TestPurgeByNameClearsAllCursorsForIndex(t *testing.T) {
	r := cursor.New()
	r.EnableIndex("idx", 4)
	a, _ := r.Reserve("idx", 1000)
	b, _ := r.Reserve("idx", 1000)
	r.Pause(a)
	r.Pause(b)

	r.PurgeByName("idx")
	_, okA := r.Take(a.ID)
	_, okB := r.Take(b.ID)
	assert.False(t, okA)
	assert.False(t, okB)
}

func TestForcedGCOnQuotaExhaustionReclaimsExpiredIdleCursor(t *testing.T) {
	orig := cmn.GCO.Get()
	defer cmn.GCO.Put(orig)
	cfg := *orig
	cfg.CursorSweepThrottle = 0
	cmn.GCO.Put(&cfg)

	r := cursor.New()
	r.EnableIndex("idx", 1)
	c, err := r.Reserve("idx", 0) // zero timeout: idle immediately expires
	require.NoError(t, err)
	r.Pause(c)

	// Quota is exhausted (used == capacity == 1); Reserve should force a
	// GC sweep, reclaim the expired idle cursor, and succeed.
	_, err = r.Reserve("idx", 1000)
	assert.NoError(t, err)
}
