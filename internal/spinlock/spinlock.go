// Package spinlock provides the busy-wait mutual-exclusion primitive used to
// guard a Pool's free areas and page descriptors.
package spinlock

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is a test-and-set busy-wait lock. Unlike sync.Mutex it never
// parks the calling goroutine on an OS futex; a blocked acquirer keeps
// spinning, yielding the processor with runtime.Gosched between attempts.
//
// This mirrors the opaque "Lock" collaborator of a bare-metal allocator,
// where no scheduler exists to park on: lock/unlock are the whole contract.
type SpinLock struct {
	locked atomic.Bool
}

// Lock spins until the lock is acquired.
func (l *SpinLock) Lock() {
	for !l.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// Unlock releases the lock. Unlocking an already-unlocked SpinLock is a
// caller bug and is not detected.
func (l *SpinLock) Unlock() {
	l.locked.Store(false)
}

// TryLock attempts to acquire the lock without spinning.
func (l *SpinLock) TryLock() bool {
	return l.locked.CompareAndSwap(false, true)
}
