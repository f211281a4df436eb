// Package sortable implements the sortable-value codec (spec.md SS3/SS4.O,
// MODULE O): a fixed-size tuple of Null/Number/String entries used to
// order results across shards, plus its disk/RDB persistence encoding.
// The teacher persists its own on-disk structures with tinylib/msgp, but
// that library generates struct-tag-driven marshalers for named Go types
// and has no good fit for this format's heterogeneous tagged-union entry
// payload, so the layout (little-endian u32 entry count, then per entry a
// 1-byte tag followed by an f64 for numbers or a u32 length plus bytes for
// strings) is framed by hand with encoding/binary instead (see DESIGN.md).
// String folding
// uses golang.org/x/text/cases, already present (transitively) in the
// teacher's go.mod, promoted here to a direct dependency for the one
// place this module needs locale-independent case folding.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package sortable

import (
	"encoding/binary"
	"errors"
	"math"

	"golang.org/x/text/cases"
)

// Tag discriminates a Vector entry's payload.
type Tag byte

const (
	TagNull Tag = iota
	TagNumber
	TagString
)

// Max is RS_SORTABLES_MAX, the largest number of entries a Vector may
// hold (spec.md SS3).
const Max = 1024

// Entry is one tagged slot in a Vector.
type Entry struct {
	Tag Tag
	Num float64
	Str string // already folded by Fold when Tag == TagString
}

// Vector is a fixed-arity tuple of sortable entries for one document.
type Vector struct {
	Entries []Entry
}

var ErrTooManyEntries = errors.New("sortable: vector exceeds RS_SORTABLES_MAX")

// New allocates a Vector with n Null entries; n must not exceed Max.
func New(n int) (*Vector, error) {
	if n > Max {
		return nil, ErrTooManyEntries
	}
	return &Vector{Entries: make([]Entry, n)}, nil
}

func (v *Vector) SetNull(i int)          { v.Entries[i] = Entry{Tag: TagNull} }
func (v *Vector) SetNumber(i int, n float64) { v.Entries[i] = Entry{Tag: TagNumber, Num: n} }

// SetString stores s after applying the deterministic Unicode fold
// (spec.md SS3).
func (v *Vector) SetString(i int, s string) { v.Entries[i] = Entry{Tag: TagString, Str: Fold(s)} }

var foldCaser = cases.Fold()

// Fold applies the same locale-independent case fold to every call site
// (spec.md SS3: "no locale dependence"): cases.Fold() is explicitly the
// locale-agnostic Unicode fold, unlike cases.Lower(language), which takes
// a language tag.
func Fold(s string) string { return foldCaser.String(s) }

// Encode serializes the vector as length + per-entry (tag, payload),
// per spec.md SS3's persistence format.
func (v *Vector) Encode() []byte {
	buf := make([]byte, 0, 4+len(v.Entries)*9)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(v.Entries)))
	buf = append(buf, lenBuf[:]...)
	for _, e := range v.Entries {
		buf = append(buf, byte(e.Tag))
		switch e.Tag {
		case TagNumber:
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(e.Num))
			buf = append(buf, b[:]...)
		case TagString:
			var lb [4]byte
			binary.LittleEndian.PutUint32(lb[:], uint32(len(e.Str)))
			buf = append(buf, lb[:]...)
			buf = append(buf, e.Str...)
		}
	}
	return buf
}

var ErrMalformed = errors.New("sortable: malformed encoded vector")

// Decode parses the Encode format.
func Decode(buf []byte) (*Vector, error) {
	if len(buf) < 4 {
		return nil, ErrMalformed
	}
	n := binary.LittleEndian.Uint32(buf[:4])
	if n > Max {
		return nil, ErrTooManyEntries
	}
	buf = buf[4:]
	out := &Vector{Entries: make([]Entry, n)}
	for i := uint32(0); i < n; i++ {
		if len(buf) < 1 {
			return nil, ErrMalformed
		}
		tag := Tag(buf[0])
		buf = buf[1:]
		switch tag {
		case TagNull:
			out.Entries[i] = Entry{Tag: TagNull}
		case TagNumber:
			if len(buf) < 8 {
				return nil, ErrMalformed
			}
			out.Entries[i] = Entry{Tag: TagNumber, Num: math.Float64frombits(binary.LittleEndian.Uint64(buf[:8]))}
			buf = buf[8:]
		case TagString:
			if len(buf) < 4 {
				return nil, ErrMalformed
			}
			l := binary.LittleEndian.Uint32(buf[:4])
			buf = buf[4:]
			if uint32(len(buf)) < l {
				return nil, ErrMalformed
			}
			out.Entries[i] = Entry{Tag: TagString, Str: string(buf[:l])}
			buf = buf[l:]
		default:
			return nil, ErrMalformed
		}
	}
	return out, nil
}

// Compare orders two entries for cross-shard sort merging. Null sorts
// before Number, which sorts before String; same-tag entries compare by
// value.
func Compare(a, b Entry) int {
	if a.Tag != b.Tag {
		return int(a.Tag) - int(b.Tag)
	}
	switch a.Tag {
	case TagNumber:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		default:
			return 0
		}
	case TagString:
		switch {
		case a.Str < b.Str:
			return -1
		case a.Str > b.Str:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}
