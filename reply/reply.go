// Package reply implements the Reply tagged variant (spec.md SS3, MODULE
// A): the single currency crossing the shard boundary. A Reply owns its
// child nodes; Take() transfers ownership of one child out to the caller,
// replacing the slot with Nil -- the owned-tree model spec.md SS9
// prescribes in place of the teacher's (and the original's) cyclic
// reply<->container references and in-place "stealing".
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package reply

import (
	"fmt"
	"strings"
)

type Type int

const (
	TInteger Type = iota
	TDouble
	TBool
	TString
	TStatus
	TError
	TNil
	TArray
	TMap
	TSet
)

func (t Type) String() string {
	switch t {
	case TInteger:
		return "integer"
	case TDouble:
		return "double"
	case TBool:
		return "bool"
	case TString:
		return "string"
	case TStatus:
		return "status"
	case TError:
		return "error"
	case TNil:
		return "nil"
	case TArray:
		return "array"
	case TMap:
		return "map"
	case TSet:
		return "set"
	default:
		return "unknown"
	}
}

// Reply is a tagged variant over integer, double, bool, string, status,
// error, nil, array, map, set. Exactly one of the typed fields is
// meaningful, selected by Type.
type Reply struct {
	typ   Type
	i     int64
	d     float64
	b     bool
	s     []byte
	elems []Reply // Array/Map(alternating key/value)/Set
}

func Nil() Reply                { return Reply{typ: TNil} }
func Integer(v int64) Reply     { return Reply{typ: TInteger, i: v} }
func Double(v float64) Reply    { return Reply{typ: TDouble, d: v} }
func Bool(v bool) Reply         { return Reply{typ: TBool, b: v} }
func String(s []byte) Reply     { return Reply{typ: TString, s: s} }
func StringS(s string) Reply    { return Reply{typ: TString, s: []byte(s)} }
func Status(s string) Reply     { return Reply{typ: TStatus, s: []byte(s)} }
func Error(s string) Reply      { return Reply{typ: TError, s: []byte(s)} }
func Array(elems ...Reply) Reply { return Reply{typ: TArray, elems: elems} }
func Set(elems ...Reply) Reply  { return Reply{typ: TSet, elems: elems} }

// Map builds a Map reply from alternating key/value Replies; panics (an
// invariant violation, spec.md SS3) if given an odd count.
func Map(kv ...Reply) Reply {
	if len(kv)%2 != 0 {
		panic("reply.Map: odd number of key/value elements")
	}
	return Reply{typ: TMap, elems: kv}
}

func (r Reply) Type() Type  { return r.typ }
func (r Reply) IsNil() bool { return r.typ == TNil }
func (r Reply) IsError() bool { return r.typ == TError }

func (r Reply) Int() int64     { return r.i }
func (r Reply) Dbl() float64   { return r.d }
func (r Reply) Boolean() bool  { return r.b }
func (r Reply) Bytes() []byte  { return r.s }
func (r Reply) Str() string    { return string(r.s) }
func (r Reply) Len() int       { return len(r.elems) }
func (r Reply) At(i int) Reply { return r.elems[i] }
func (r Reply) Elems() []Reply { return r.elems }

// Take transfers ownership of child i out to the caller, replacing the
// slot in the parent with Nil so the parent may be safely discarded
// without double-freeing (or, in Go terms, without the caller's copy
// aliasing memory the parent still believes it owns). Safe to call at
// most meaningfully once per index; a second call simply yields Nil.
func (r *Reply) Take(i int) Reply {
	if i < 0 || i >= len(r.elems) {
		return Nil()
	}
	child := r.elems[i]
	r.elems[i] = Nil()
	return child
}

// MapGet performs the case-insensitive linear scan spec.md SS3 mandates
// for indexing a Map by string key (Map's elems alternate key, value).
func (r Reply) MapGet(key string) (Reply, bool) {
	if r.typ != TMap {
		return Nil(), false
	}
	for i := 0; i+1 < len(r.elems); i += 2 {
		if strings.EqualFold(r.elems[i].Str(), key) {
			return r.elems[i+1], true
		}
	}
	return Nil(), false
}

// TakeMapGet is MapGet followed by Take, transferring ownership of the
// matched value out of the map.
func (r *Reply) TakeMapGet(key string) (Reply, bool) {
	if r.typ != TMap {
		return Nil(), false
	}
	for i := 0; i+1 < len(r.elems); i += 2 {
		if strings.EqualFold(r.elems[i].Str(), key) {
			return r.Take(i + 1), true
		}
	}
	return Nil(), false
}

func (r Reply) String() string {
	switch r.typ {
	case TNil:
		return "(nil)"
	case TInteger:
		return fmt.Sprintf("(integer) %d", r.i)
	case TDouble:
		return fmt.Sprintf("(double) %g", r.d)
	case TBool:
		return fmt.Sprintf("(bool) %v", r.b)
	case TString, TStatus:
		return r.Str()
	case TError:
		return "(error) " + r.Str()
	default:
		return fmt.Sprintf("(%s, %d elems)", r.typ, len(r.elems))
	}
}

// ErrorPrefix extracts the leading error-code token of an error reply
// (the "first space" rule of spec.md SS4.K), used when logging a
// truncated shard error.
func (r Reply) ErrorPrefix() string {
	s := r.Str()
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		return s[:idx]
	}
	return s
}
