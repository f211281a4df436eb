package activequery_test

import (
	"testing"

	"github.com/dsearch/dsearch/activequery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushQuerySnapshotRemove(t *testing.T) {
	l := activequery.New()
	n := l.PushQuery("idx", "@foo:bar")
	require.Equal(t, 1, l.Len())

	snap := l.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, activequery.KindQuery, snap[0].Kind)
	assert.Equal(t, "idx", snap[0].IndexName)
	assert.Equal(t, "@foo:bar", snap[0].AST)

	l.Remove(n)
	assert.Equal(t, 0, l.Len())
}

func TestPushCursorTracksIDAndCount(t *testing.T) {
	l := activequery.New()
	l.PushCursor("idx", 42, 7)
	snap := l.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, activequery.KindCursor, snap[0].Kind)
	assert.EqualValues(t, 42, snap[0].CursorID)
	assert.Equal(t, 7, snap[0].Count)
}

func TestRemoveIsIdempotent(t *testing.T) {
	l := activequery.New()
	n := l.PushQuery("idx", nil)
	l.Remove(n)
	assert.NotPanics(t, func() { l.Remove(n) })
	assert.Equal(t, 0, l.Len())
}

func TestSnapshotOrderMatchesInsertion(t *testing.T) {
	l := activequery.New()
	l.PushQuery("a", nil)
	l.PushQuery("b", nil)
	l.PushQuery("c", nil)
	snap := l.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{snap[0].IndexName, snap[1].IndexName, snap[2].IndexName})
}
