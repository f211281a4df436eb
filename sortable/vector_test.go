package sortable_test

import (
	"testing"

	"github.com/dsearch/dsearch/sortable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsTooManyEntries(t *testing.T) {
	_, err := sortable.New(sortable.Max + 1)
	assert.ErrorIs(t, err, sortable.ErrTooManyEntries)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	v, err := sortable.New(3)
	require.NoError(t, err)
	v.SetNumber(0, 3.5)
	v.SetString(1, "Hello")
	v.SetNull(2)

	blob := v.Encode()
	out, err := sortable.Decode(blob)
	require.NoError(t, err)
	require.Len(t, out.Entries, 3)
	assert.Equal(t, sortable.TagNumber, out.Entries[0].Tag)
	assert.Equal(t, 3.5, out.Entries[0].Num)
	assert.Equal(t, sortable.TagString, out.Entries[1].Tag)
	assert.Equal(t, "hello", out.Entries[1].Str)
	assert.Equal(t, sortable.TagNull, out.Entries[2].Tag)
}

func TestFoldIsDeterministicAndLocaleIndependent(t *testing.T) {
	assert.Equal(t, sortable.Fold("STRASSE"), sortable.Fold("STRASSE"))
	assert.Equal(t, "strasse", sortable.Fold("Strasse"))
}

func TestDecodeRejectsMalformedBlob(t *testing.T) {
	_, err := sortable.Decode([]byte{1, 2})
	assert.ErrorIs(t, err, sortable.ErrMalformed)
}

func TestCompareOrdersByTagThenValue(t *testing.T) {
	null := sortable.Entry{Tag: sortable.TagNull}
	num := sortable.Entry{Tag: sortable.TagNumber, Num: 1}
	str := sortable.Entry{Tag: sortable.TagString, Str: "a"}
	assert.Negative(t, sortable.Compare(null, num))
	assert.Negative(t, sortable.Compare(num, str))
	assert.Zero(t, sortable.Compare(num, num))
}
