package skinnymutex

import "errors"

// Sentinel errors for the operation outcomes named in the mutex's
// contract. Callers should compare with errors.Is, not ==, in case a
// future revision wraps these with additional context.
var (
	// ErrBusy is returned by TryLock when the mutex is already held.
	ErrBusy = errors.New("skinnymutex: mutex is locked")

	// ErrNotHeld is returned by Unlock when the mutex is not held by
	// any goroutine.
	ErrNotHeld = errors.New("skinnymutex: unlock of unlocked mutex")

	// ErrTimedOut is returned by CondTimedWait when the deadline
	// elapses before the condition variable is signaled.
	ErrTimedOut = errors.New("skinnymutex: cond wait deadline exceeded")

	// ErrOutOfMemory would be returned by Lock or CondWait if fat-state
	// allocation failed. Go's allocator does not expose a recoverable
	// out-of-memory path to library code, so this value is never
	// actually returned by this implementation; it exists so the error
	// kind from the host contract has a concrete representation that
	// callers can name in a type switch or errors.Is check.
	ErrOutOfMemory = errors.New("skinnymutex: allocation failure")
)
