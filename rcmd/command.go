// Package rcmd implements the Command value (spec.md SS3, MODULE B): an
// ordered argument vector plus target-shard routing hints, protocol
// version, cursor/profiling flags, and the post-dispatch timestamp.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package rcmd

import (
	"bytes"
)

type RootCommand int

const (
	RootAgg RootCommand = iota
	RootRead
	RootDel
	RootProfile
)

// Command is an ordered byte-string argument vector with coordinator
// routing metadata. Mutating Args after CachedSerialize has produced a
// cached form drops that cache (spec.md SS3 invariant).
type Command struct {
	Args     [][]byte
	Target   ShardTarget
	Protocol int // 2 or 3
	Root     RootCommand

	ForCursor    bool
	ForProfiling bool
	Depleted     bool

	SlotsInfoArgIndex   int // -1 if not present
	DispatchTimeArgIndex int // -1 if not present
	CoordStartTimeNs    int64

	cached []byte // cached serialized form; nil once dropped
}

type ShardTarget struct {
	Shard int // -1: broadcast / not yet assigned
	Slot  int // -1: not slot-routed
}

func New(protocol int, root RootCommand, args ...string) *Command {
	c := &Command{
		Protocol:             protocol,
		Root:                 root,
		Target:               ShardTarget{Shard: -1, Slot: -1},
		SlotsInfoArgIndex:    -1,
		DispatchTimeArgIndex: -1,
	}
	for _, a := range args {
		c.Args = append(c.Args, []byte(a))
	}
	return c
}

func (c *Command) ArgString(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return string(c.Args[i])
}

func (c *Command) Len() int { return len(c.Args) }

// Append mutates the argument vector and drops any cached serialization.
func (c *Command) Append(arg []byte) {
	c.Args = append(c.Args, arg)
	c.cached = nil
}

// SetArg mutates argument i in place and drops any cached serialization.
func (c *Command) SetArg(i int, arg []byte) {
	c.Args[i] = arg
	c.cached = nil
}

// Clone deep-copies the argument vector (each clone gets its own backing
// array so that per-shard rewrites -- e.g. the SLOTS marker, or a
// CURSOR READ -> CURSOR DEL rewrite -- never alias across shards) but
// shares routing/protocol metadata as a starting point.
func (c *Command) Clone() *Command {
	args := make([][]byte, len(c.Args))
	for i, a := range c.Args {
		cp := make([]byte, len(a))
		copy(cp, a)
		args[i] = cp
	}
	return &Command{
		Args:                 args,
		Target:               c.Target,
		Protocol:             c.Protocol,
		Root:                 c.Root,
		ForCursor:            c.ForCursor,
		ForProfiling:         c.ForProfiling,
		Depleted:             c.Depleted,
		SlotsInfoArgIndex:    c.SlotsInfoArgIndex,
		DispatchTimeArgIndex: c.DispatchTimeArgIndex,
		CoordStartTimeNs:     c.CoordStartTimeNs,
	}
}

// MarkDispatched stamps dispatch_ns = now - coord_start + 1 into the
// placeholder argument, per spec.md SS6 ("injected argument markers").
func (c *Command) MarkDispatched(nowNs int64) {
	if c.DispatchTimeArgIndex < 0 || c.DispatchTimeArgIndex >= len(c.Args) {
		return
	}
	dispatchNs := nowNs - c.CoordStartTimeNs + 1
	c.SetArg(c.DispatchTimeArgIndex, []byte(itoa(dispatchNs)))
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// CachedSerialize returns the flat RESP-arg-count-prefixed encoding used
// as the wire payload, caching it until the next mutation. Concrete RESP
// framing belongs to the host's physical transport (out of scope, spec.md
// SS1); this produces the argument-count + length-prefixed body the host
// transport would wrap, and is what gets LZ4-compressed when the command
// carries a large SLOTS blob (spec.md SS6).
func (c *Command) CachedSerialize() []byte {
	if c.cached != nil {
		return c.cached
	}
	var buf bytes.Buffer
	buf.WriteString(itoa(int64(len(c.Args))))
	buf.WriteByte('\n')
	for _, a := range c.Args {
		buf.WriteString(itoa(int64(len(a))))
		buf.WriteByte('\n')
		buf.Write(a)
		buf.WriteByte('\n')
	}
	c.cached = buf.Bytes()
	return c.cached
}

// RewriteCursorVerb replaces argv[1] of a 4-argument
// `_FT.CURSOR <verb> <idx> <id>` command in place (READ, DEL or PROFILE),
// per spec.md SS4.I/J. Panics unless the command has exactly 4 arguments;
// the other arguments are not checked.
func RewriteCursorVerb(c *Command, verb string) {
	if len(c.Args) != 4 {
		panic("RewriteCursorVerb: command must be exactly 4 args")
	}
	c.SetArg(1, []byte(verb))
}

func (c *Command) String() string {
	out := ""
	for i, a := range c.Args {
		if i > 0 {
			out += " "
		}
		out += string(a)
	}
	return out
}
