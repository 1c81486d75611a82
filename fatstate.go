package skinnymutex

import "sync"

// fatState is the heap-allocated control block a Mutex attaches once
// contention is first observed. All fields besides inner itself are
// protected by inner; inner also serves as the Locker that fatState's
// own cond is bound to for lock-handoff signaling.
//
// Lifecycle: allocated by the first contender that finds the word in
// the HELD_NOFAT state (or by CondWait upgrading an uncontended hold);
// freed by whichever Unlock call, holding inner, finds waiters == 0 and
// held == false and successfully CASes the word from this fatState back
// to nil.
type fatState struct {
	inner   sync.Mutex
	cond    *sync.Cond // handoff condvar; bound to &inner
	held    bool       // true iff some goroutine currently owns the mutex
	waiters int        // goroutines blocked in the slow path wanting to acquire
}

// newFatState allocates a fat state already marked held by the calling
// goroutine, with the given initial waiter count. Matches §4.2's
// allocate(): held=true, waiters as given, inner/cond initialized.
func newFatState(waiters int) *fatState {
	f := &fatState{held: true, waiters: waiters}
	f.cond = sync.NewCond(&f.inner)
	return f
}

// release is a no-op beyond making detachment explicit at call sites;
// Go's garbage collector reclaims the fatState once the word no longer
// points to it and no goroutine holds a reference into its stack frame.
// It exists so detach sites read the same way the C allocate/free pair
// does, and as a hook instrumentation can attach to (see instrument.go).
func (f *fatState) release() {
	logFatStateFree(f)
}
