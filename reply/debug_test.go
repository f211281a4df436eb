package reply_test

import (
	"encoding/json"
	"testing"

	"github.com/dsearch/dsearch/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugJSONProjectsScalar(t *testing.T) {
	b, err := reply.DebugJSON(reply.Integer(42))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "integer", out["type"])
	assert.EqualValues(t, 42, out["val"])
}

func TestDebugJSONProjectsNestedContainer(t *testing.T) {
	r := reply.Map(reply.StringS("k"), reply.Array(reply.Integer(1), reply.Integer(2)))
	b, err := reply.DebugJSON(r)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "map", out["type"])
	elems := out["elems"].([]any)
	require.Len(t, elems, 2)
	value := elems[1].(map[string]any)
	assert.Equal(t, "array", value["type"])
	assert.Len(t, value["elems"], 2)
}
