//go:build debug

package debug

import (
	"fmt"
	"sync"
)

func ON() bool { return true }

func Infof(format string, a ...any) { fmt.Printf("[debug] "+format+"\n", a...) }

func Func(f func()) { f() }

func Assert(cond bool, a ...any) {
	if !cond {
		panic(fmt.Sprint("assertion failed", fmt.Sprint(a...)))
	}
}

func AssertFunc(f func() bool, a ...any) { Assert(f(), a...) }

func AssertNoErr(err error) {
	if err != nil {
		panic("assertion failed: " + err.Error())
	}
}

func Assertf(cond bool, format string, a ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, a...))
	}
}

// AssertMutexLocked and friends use sync.Mutex's internal state indirectly
// via TryLock: if TryLock succeeds the mutex was NOT held, which is the bug
// we're asserting against. TryLock itself acquires the lock on success, so
// it must be released again immediately.
func AssertMutexLocked(m *sync.Mutex) {
	if m.TryLock() {
		m.Unlock()
		panic("assertion failed: mutex not locked")
	}
}

func AssertRWMutexLocked(m *sync.RWMutex) {
	if m.TryLock() {
		m.Unlock()
		panic("assertion failed: rwmutex not locked")
	}
}

func AssertRWMutexRLocked(m *sync.RWMutex) {
	if m.TryLock() {
		m.Unlock()
		panic("assertion failed: rwmutex not locked")
	}
}
