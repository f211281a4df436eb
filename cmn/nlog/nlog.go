// Package nlog is the engine's internal logger: leveled, timestamped,
// depth-aware caller reporting. It intentionally does not own file
// rotation or disk placement -- that belongs to the host process (out of
// scope per spec.md SS1); nlog just formats and writes to an io.Writer.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

var (
	mu          sync.Mutex
	out         io.Writer = os.Stderr
	errOut      io.Writer = os.Stderr
	minSeverity           = sevInfo
)

// SetOutput redirects the stream every message is written to; SetErrOutput
// redirects the stream warnings and errors are additionally written to.
// Tests and embedding hosts use these instead of a config file.
func SetOutput(w io.Writer)    { mu.Lock(); out = w; mu.Unlock() }
func SetErrOutput(w io.Writer) { mu.Lock(); errOut = w; mu.Unlock() }

// SetLevel raises the minimum emitted severity; 0=info (default), 1=warn, 2=err.
func SetLevel(n int) {
	mu.Lock()
	switch {
	case n <= 0:
		minSeverity = sevInfo
	case n == 1:
		minSeverity = sevWarn
	default:
		minSeverity = sevErr
	}
	mu.Unlock()
}

func InfoDepth(depth int, args ...any)    { log(sevInfo, depth+1, "", args...) }
func Infoln(args ...any)                  { log(sevInfo, 1, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 1, format, args...) }
func Warningln(args ...any)               { log(sevWarn, 1, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 1, format, args...) }
func ErrorDepth(depth int, args ...any)   { log(sevErr, depth+1, "", args...) }
func Errorln(args ...any)                 { log(sevErr, 1, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 1, format, args...) }

func log(sev severity, depth int, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if sev < minSeverity {
		return
	}
	line := format1(sev, depth+1, format, args...)
	if sev >= sevWarn {
		errOut.Write(line)
	}
	out.Write(line)
}

func format1(sev severity, depth int, format string, args ...any) []byte {
	var msg string
	if format == "" {
		msg = fmt.Sprintln(args...)
	} else {
		msg = fmt.Sprintf(format, args...)
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
	}
	_, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		file, line = "???", 0
	} else {
		file = filepath.Base(file)
	}
	now := time.Now()
	var b strings.Builder
	b.WriteByte(sevByte(sev))
	b.WriteString(now.Format("0102 15:04:05.000000"))
	b.WriteByte(' ')
	b.WriteString(file)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(line))
	b.WriteString("] ")
	b.WriteString(msg)
	return []byte(b.String())
}

func sevByte(s severity) byte {
	switch s {
	case sevWarn:
		return 'W'
	case sevErr:
		return 'E'
	default:
		return 'I'
	}
}

// Flush is a no-op for unbuffered writers; kept so callers written against
// the buffered teacher logger (which needed an explicit flush point before
// process exit) don't need a conditional code path.
func Flush(...bool) {}
