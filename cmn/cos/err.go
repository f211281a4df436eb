// Package cos provides common low-level types and utilities shared by
// every engine package: ID generation, name validation, multi-error
// accumulation.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"fmt"
	"os"
	ratomic "sync/atomic"

	"github.com/dsearch/dsearch/cmn/debug"
	"github.com/dsearch/dsearch/cmn/nlog"
)

type (
	// ErrNotFound backs the "unknown index" / "unknown cursor" argument
	// errors of spec.md SS7 ("Argument" error class).
	ErrNotFound struct {
		what string
	}
	// Errs accumulates up to maxErrs distinct errors, de-duplicated by
	// message.
	Errs struct {
		errs []error
		cnt  int64
	}
)

// Argument/Resource-class sentinel errors carrying the exact user-visible
// strings from spec.md SS6.
var (
	ErrNoResponses       = errors.New("ERR no responses received")
	ErrTimeoutCalling    = errors.New("ERR Timeout calling command")
	ErrCouldNotDistribute = errors.New("ERR Could not distribute command")
	ErrWrongType         = errors.New("WRONGTYPE")
	ErrNoAdd             = errors.New("NOADD")
)

func ErrCursorsNotEnabled(index string) error {
	return fmt.Errorf("ERR Index %s does not have cursors enabled", index)
}

func ErrTooManyCursors() error {
	return errors.New("ERR Too many cursors allocated for index")
}

func ErrUnknownIndex(name string) error {
	return fmt.Errorf("ERR Unknown index name: %s", name)
}

// ErrNotFound

func NewErrNotFound(format string, a ...any) *ErrNotFound {
	return &ErrNotFound{fmt.Sprintf(format, a...)}
}

func (e *ErrNotFound) Error() string { return e.what + " does not exist" }

func IsErrNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

// Errs
const maxErrs = 4

func (e *Errs) Add(mu Locker, err error) {
	debug.Assert(err != nil)
	mu.Lock()
	defer mu.Unlock()
	for _, added := range e.errs {
		if added.Error() == err.Error() {
			return
		}
	}
	if len(e.errs) < maxErrs {
		e.errs = append(e.errs, err)
		ratomic.StoreInt64(&e.cnt, int64(len(e.errs)))
	}
}

func (e *Errs) Cnt() int { return int(ratomic.LoadInt64(&e.cnt)) }

func (e *Errs) JoinErr(mu Locker) (cnt int, err error) {
	if cnt = e.Cnt(); cnt > 0 {
		mu.Lock()
		err = errors.Join(e.errs...) // up to maxErrs
		mu.Unlock()
	}
	return
}

// First returns the first recorded error, or nil.
func (e *Errs) First(mu Locker) error {
	mu.Lock()
	defer mu.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	return e.errs[0]
}

// Locker is the subset of sync.Mutex/sync.RWMutex that Errs needs; callers
// pass their own existing lock rather than Errs owning a redundant one.
type Locker interface {
	Lock()
	Unlock()
}

//
// Abnormal Termination -- spec.md SS7 "Assertion" class: log+abort in
// debug, log+fail-the-request in release. These two helpers implement
// the debug-build half; release callers use a plain returned error.
//

const fatalPrefix = "FATAL ERROR: "

func ExitLogf(f string, a ...any) {
	msg := fmt.Sprintf(fatalPrefix+f, a...)
	nlog.ErrorDepth(1, msg)
	_exit(msg)
}

func _exit(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

// Plural returns "s" unless n == 1, for user-facing pluralization.
func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
