// Package mono provides a monotonic-nanosecond clock used throughout the
// engine for timeouts, TTLs and cooperative-preemption deadlines.
//
// The teacher links directly against runtime.nanotime (via go:linkname)
// for a branch-free read in its embedded daemon. This module is a library
// consumed by arbitrary hosts, not a privileged daemon binary, so we read
// the monotonic component off time.Time instead -- time.Now() already
// carries a monotonic reading on every supported platform, and
// Sub/UnixNano strip the wall-clock part back out. Slightly more
// expensive than a raw linkname call, never user-observable at the
// millisecond granularities this engine times against.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

var epoch = time.Now()

// NanoTime returns nanoseconds elapsed since an arbitrary, process-local
// epoch. Only deltas between two NanoTime() reads are meaningful.
func NanoTime() int64 { return time.Since(epoch).Nanoseconds() }

// Since is a convenience wrapper: nanoseconds elapsed since a prior
// NanoTime() reading.
func Since(t int64) int64 { return NanoTime() - t }
