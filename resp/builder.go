// Package resp implements the reply formatter (spec.md SS4.Q, MODULE Q):
// a stack-based builder for constructing nested Map/Array/Set replies
// without knowing their child count up front, and the RESP2/RESP3 wire
// adapter that downgrades Map/Set to flattened/plain arrays for RESP2.
// Grounded on the teacher's transport frame writer (transport/api.go),
// which uses the same "push a header placeholder, patch the length on
// close" shape for its object headers.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package resp

import (
	"fmt"

	"github.com/dsearch/dsearch/reply"
)

type frameKind int

const (
	frameArray frameKind = iota
	frameMap
	frameSet
)

type frame struct {
	kind     frameKind
	elems    []reply.Reply
	wantsKey bool // frameMap only: next push must be a scalar key
}

// Builder assembles a reply.Reply tree incrementally: Open an array/map/
// set, push scalars or nested containers, Close it -- the child count is
// discovered, not declared up front (spec.md SS4.Q's "postponed length,
// patched on close", expressed here as simply finishing the slice instead
// of patching a pre-written header, since reply.Reply has no wire framing
// of its own).
type Builder struct {
	stack []frame
	root  reply.Reply
	done  bool
}

func New() *Builder { return &Builder{} }

func (b *Builder) OpenArray() { b.stack = append(b.stack, frame{kind: frameArray}) }
func (b *Builder) OpenSet()   { b.stack = append(b.stack, frame{kind: frameSet}) }

// OpenMap begins a map frame; the next push (and every other push) must
// be a scalar key, per spec.md SS4.Q's "map entries must be emitted in
// exact pairs" invariant.
func (b *Builder) OpenMap() { b.stack = append(b.stack, frame{kind: frameMap, wantsKey: true}) }

// Close finalizes the innermost open frame and pushes the resulting
// container as a value into its parent (or sets it as the Builder's
// root if this was the outermost frame). Panics if a map frame is closed
// mid-pair (an odd number of entries).
func (b *Builder) Close() {
	n := len(b.stack)
	if n == 0 {
		panic("resp.Builder: Close with no open frame")
	}
	f := b.stack[n-1]
	b.stack = b.stack[:n-1]
	if f.kind == frameMap && len(f.elems)%2 != 0 {
		panic("resp.Builder: map closed with an odd number of entries")
	}
	var r reply.Reply
	switch f.kind {
	case frameArray:
		r = reply.Array(f.elems...)
	case frameMap:
		r = reply.Map(f.elems...)
	case frameSet:
		r = reply.Set(f.elems...)
	}
	b.Push(r)
}

// Push appends a scalar or previously-built Reply as the next element (or
// the next key/value in a map frame). Pushing a non-scalar container
// reply.Reply directly as a map key is rejected (spec.md SS4.Q): use
// Open*/Close for nested values instead.
func (b *Builder) Push(r reply.Reply) {
	n := len(b.stack)
	if n == 0 {
		b.root = r
		b.done = true
		return
	}
	f := &b.stack[n-1]
	if f.kind == frameMap && len(f.elems)%2 == 0 {
		if isContainer(r) {
			panic("resp.Builder: map key must be a scalar")
		}
	}
	f.elems = append(f.elems, r)
}

func (b *Builder) push(r reply.Reply) {
	n := len(b.stack)
	if n == 0 {
		b.root = r
		b.done = true
		return
	}
	f := &b.stack[n-1]
	f.elems = append(f.elems, r)
}

func isContainer(r reply.Reply) bool {
	switch r.Type() {
	case reply.TArray, reply.TMap, reply.TSet:
		return true
	default:
		return false
	}
}

// Result returns the completed tree. Panics if any frame is still open.
func (b *Builder) Result() reply.Reply {
	if len(b.stack) != 0 {
		panic(fmt.Sprintf("resp.Builder: Result called with %d frame(s) still open", len(b.stack)))
	}
	if !b.done {
		return reply.Nil()
	}
	return b.root
}
