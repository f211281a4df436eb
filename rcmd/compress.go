package rcmd

import (
	"bytes"
	"io"

	lz4 "github.com/pierrec/lz4/v3"
)

// CompressedSerialize LZ4-compresses CachedSerialize's output, mirroring
// the teacher's transport.Extra.Compression knob (spec.md SS6: the SLOTS
// binary blob and a command's cached-serialized form are the two payloads
// large enough, in a wide-fanout cluster, to be worth compressing before
// the host's physical transport takes over).
func (c *Command) CompressedSerialize() ([]byte, error) {
	raw := c.CachedSerialize()
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressSerialized reverses CompressedSerialize, for a shard-side
// receiver reconstructing the argument vector.
func DecompressSerialized(compressed []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(compressed))
	return io.ReadAll(zr)
}
