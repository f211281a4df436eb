package shardcmd

import (
	"encoding/binary"
	"errors"
	"strconv"
)

// SlotRangeWire is the little-endian (start, end) pair encoded inside a
// SLOTS marker, per spec.md SS6.
type SlotRangeWire struct {
	Start, End uint16
}

// EncodeSlotsMarker builds the `SLOTS <blob>` argument pair:
// [num_ranges:u32][(start:u16,end:u16) x num_ranges], little-endian.
func EncodeSlotsMarker(ranges []SlotRangeWire) []byte {
	buf := make([]byte, 4+4*len(ranges))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(ranges)))
	off := 4
	for _, r := range ranges {
		binary.LittleEndian.PutUint16(buf[off:off+2], r.Start)
		binary.LittleEndian.PutUint16(buf[off+2:off+4], r.End)
		off += 4
	}
	return buf
}

var ErrMalformedSlotsBlob = errors.New("shardcmd: malformed SLOTS blob")

// DecodeSlotsMarker is the shard-side inverse of EncodeSlotsMarker.
func DecodeSlotsMarker(blob []byte) ([]SlotRangeWire, error) {
	if len(blob) < 4 {
		return nil, ErrMalformedSlotsBlob
	}
	n := binary.LittleEndian.Uint32(blob[0:4])
	want := 4 + 4*int(n)
	if len(blob) != want {
		return nil, ErrMalformedSlotsBlob
	}
	out := make([]SlotRangeWire, n)
	off := 4
	for i := range out {
		out[i] = SlotRangeWire{
			Start: binary.LittleEndian.Uint16(blob[off : off+2]),
			End:   binary.LittleEndian.Uint16(blob[off+2 : off+4]),
		}
		off += 4
	}
	return out, nil
}

// EncodeDispatchTimeMarker renders dispatch_ns = now - coordStart + 1 as
// an ASCII decimal integer, per spec.md SS6.
func EncodeDispatchTimeMarker(nowNs, coordStartNs int64) []byte {
	return []byte(strconv.FormatInt(nowNs-coordStartNs+1, 10))
}

func DecodeDispatchTimeMarker(arg []byte) (int64, error) {
	return strconv.ParseInt(string(arg), 10, 64)
}

const (
	MarkerSlots        = "SLOTS"
	MarkerDispatchTime = "COORD_DISPATCH_TIME"
)
