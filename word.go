package skinnymutex

import "sync/atomic"

// heldNoFatMarker is never dereferenced; its address is used purely as a
// distinguished non-nil *fatState value that no allocation could ever
// produce. It stands in for the C implementation's "address of a static
// byte" sentinel.
var heldNoFatMarker fatState

// heldNoFat is the sentinel word value meaning "locked, no waiters have
// ever contended, no fat state attached".
var heldNoFat = &heldNoFatMarker

// atomicWord is the single pointer-sized atomic cell backing a Mutex. It
// is a thin wrapper over atomic.Pointer[fatState] that names the three
// states the word may hold (see doc.go) instead of exposing a bare
// pointer type to callers.
type atomicWord struct {
	p atomic.Pointer[fatState]
}

// load reads the word with acquire semantics.
func (w *atomicWord) load() *fatState {
	return w.p.Load()
}

// store writes the word with release semantics. No code path in the
// package calls it; the mutex operations change the word only through cas.
func (w *atomicWord) store(v *fatState) {
	w.p.Store(v)
}

// cas attempts to move the word from old to new, acquire-on-success,
// relaxed-on-failure (the failure ordering doesn't matter to callers,
// who always reload and retry).
func (w *atomicWord) cas(old, new *fatState) bool {
	return w.p.CompareAndSwap(old, new)
}

// isNull reports whether v represents the NULL (unlocked, no fat state)
// encoding.
func isNull(v *fatState) bool {
	return v == nil
}

// isHeldNoFat reports whether v is the HELD_NOFAT sentinel.
func isHeldNoFat(v *fatState) bool {
	return v == heldNoFat
}

// isFat reports whether v is a real attached fat state (neither NULL
// nor the HELD_NOFAT sentinel).
func isFat(v *fatState) bool {
	return v != nil && v != heldNoFat
}
