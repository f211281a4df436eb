package resp

import (
	"fmt"
	"strconv"

	"github.com/dsearch/dsearch/cmn/debug"
	"github.com/dsearch/dsearch/cmn/nlog"
	"github.com/dsearch/dsearch/reply"
)

// Protocol selects the wire adapter Format uses.
type Protocol int

const (
	RESP2 Protocol = 2
	RESP3 Protocol = 3
)

// Format renders r as RESP wire bytes for the given protocol. RESP3 keeps
// Map and Set as their own typed aggregates (%<n> and ~<n> headers,
// double/bool/null as distinct types); RESP2 downgrades Map to
// a flattened Array of 2*n elements (alternating key, value) and Set to a
// plain Array, and has no native double/bool/null types of its own, so
// those degrade to a bulk string, an integer 0/1, and a null bulk string
// respectively (spec.md SS4.Q).
func Format(protocol Protocol, r reply.Reply) []byte {
	debug.Func(func() { traceReply(protocol, r) })
	var buf []byte
	buf = appendReply(buf, protocol, r)
	return buf
}

// traceReply logs the reply.DebugJSON projection of r before it's
// formatted -- a debug-build-only trace hook (spec.md SS4.Q's "never the
// wire format itself"), compiled out entirely in default builds since
// debug.Func is a no-op there.
func traceReply(protocol Protocol, r reply.Reply) {
	b, err := reply.DebugJSON(r)
	if err != nil {
		nlog.Warningf("resp: DebugJSON: %v", err)
		return
	}
	nlog.Infof("resp: formatting protocol=%d reply=%s", protocol, b)
}

func appendReply(buf []byte, p Protocol, r reply.Reply) []byte {
	switch r.Type() {
	case reply.TInteger:
		return appendSimple(buf, ':', strconv.FormatInt(r.Int(), 10))
	case reply.TDouble:
		if p == RESP3 {
			return appendSimple(buf, ',', strconv.FormatFloat(r.Dbl(), 'g', -1, 64))
		}
		return appendBulk(buf, []byte(strconv.FormatFloat(r.Dbl(), 'g', -1, 64)))
	case reply.TBool:
		if p == RESP3 {
			if r.Boolean() {
				return append(buf, "#t\r\n"...)
			}
			return append(buf, "#f\r\n"...)
		}
		if r.Boolean() {
			return appendSimple(buf, ':', "1")
		}
		return appendSimple(buf, ':', "0")
	case reply.TString:
		return appendBulk(buf, r.Bytes())
	case reply.TStatus:
		return appendSimple(buf, '+', r.Str())
	case reply.TError:
		return appendSimple(buf, '-', r.Str())
	case reply.TNil:
		if p == RESP3 {
			return append(buf, "_\r\n"...)
		}
		return append(buf, "$-1\r\n"...)
	case reply.TArray:
		buf = append(buf, '*')
		buf = appendLen(buf, r.Len())
		for _, e := range r.Elems() {
			buf = appendReply(buf, p, e)
		}
		return buf
	case reply.TSet:
		if p == RESP3 {
			buf = append(buf, '~')
			buf = appendLen(buf, r.Len())
		} else {
			buf = append(buf, '*')
			buf = appendLen(buf, r.Len())
		}
		for _, e := range r.Elems() {
			buf = appendReply(buf, p, e)
		}
		return buf
	case reply.TMap:
		if p == RESP3 {
			buf = append(buf, '%')
			buf = appendLen(buf, r.Len()/2)
		} else {
			buf = append(buf, '*')
			buf = appendLen(buf, r.Len())
		}
		for _, e := range r.Elems() {
			buf = appendReply(buf, p, e)
		}
		return buf
	default:
		panic(fmt.Sprintf("resp.Format: unhandled reply type %v", r.Type()))
	}
}

func appendLen(buf []byte, n int) []byte {
	buf = strconv.AppendInt(buf, int64(n), 10)
	return append(buf, '\r', '\n')
}

func appendSimple(buf []byte, prefix byte, s string) []byte {
	buf = append(buf, prefix)
	buf = append(buf, s...)
	return append(buf, '\r', '\n')
}

func appendBulk(buf []byte, s []byte) []byte {
	buf = append(buf, '$')
	buf = appendLen(buf, len(s))
	buf = append(buf, s...)
	return append(buf, '\r', '\n')
}
