package skinnymutex

// Mutex is a mutual-exclusion lock whose entire user-visible state is
// one pointer-sized word (see doc.go). Its zero value is an unlocked,
// ready-to-use mutex -- NewMutex exists only for symmetry with the rest
// of the package's constructors, not because it does anything the zero
// value doesn't.
//
// A Mutex must not be copied after first use.
type Mutex struct {
	word atomicWord
}

// NewMutex returns a new, unlocked Mutex. Mutex{} is equally valid.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Lock blocks until the mutex is acquired. It is not a cancellation
// point: a cancellation request delivered while a goroutine is blocked
// in Lock is not observed until Lock returns, matching §5's "lock is
// not a cancellation point" contract. The returned error is always nil;
// it exists for symmetry with TryLock/Unlock and to name the (otherwise
// unreachable in Go) out-of-memory outcome described in errors.go.
func (m *Mutex) Lock() error {
	for {
		if m.word.cas(nil, heldNoFat) {
			return nil
		}

		cur := m.word.load()
		switch {
		case isNull(cur):
			// Lost a race against a concurrent Unlock; retry the fast path.
			continue

		case isHeldNoFat(cur):
			f := newFatState(1)
			if !m.word.cas(cur, f) {
				// Someone else attached first (or unlocked); discard our
				// allocation and restart.
				continue
			}
			logFatStateAttach(m, f)
			f.inner.Lock()
			m.waitForHandoff(f)
			f.inner.Unlock()
			return nil

		default: // isFat(cur)
			f := cur
			f.inner.Lock()
			if m.word.load() != f {
				// f was detached between our load and taking inner; it's
				// a zombie now. Restart from the top.
				f.inner.Unlock()
				continue
			}
			f.waiters++
			m.waitForHandoff(f)
			f.inner.Unlock()
			return nil
		}
	}
}

// waitForHandoff blocks on f.cond while f is held by another goroutine,
// then claims ownership. Must be called with f.inner held, and the
// caller must already have registered itself in f.waiters.
func (m *Mutex) waitForHandoff(f *fatState) {
	if f.held {
		logContendedWait(m, f)
	}
	for f.held {
		f.cond.Wait()
	}
	f.held = true
	f.waiters--
}

// TryLock attempts to acquire the mutex without blocking. It never
// allocates and never blocks beyond a bounded fat-state mutex
// acquisition, per §4.3/§8.5.
func (m *Mutex) TryLock() error {
	for {
		if m.word.cas(nil, heldNoFat) {
			return nil
		}

		cur := m.word.load()
		switch {
		case isNull(cur):
			// Lost a race against a concurrent Unlock; retry the fast path.
			continue

		case isHeldNoFat(cur):
			return ErrBusy

		default: // isFat(cur)
			f := cur
			f.inner.Lock()
			if m.word.load() != f {
				// f was detached concurrently -- the mutex may actually
				// be free now, not busy. Retry against the live word
				// instead of reporting a stale BUSY.
				f.inner.Unlock()
				continue
			}
			if f.held {
				f.inner.Unlock()
				return ErrBusy
			}
			f.held = true
			f.inner.Unlock()
			return nil
		}
	}
}

// Unlock releases the mutex. It returns ErrNotHeld, and leaves the word
// unchanged, if the mutex was not held.
func (m *Mutex) Unlock() error {
	if m.word.cas(heldNoFat, nil) {
		return nil
	}

	cur := m.word.load()
	if !isFat(cur) {
		return ErrNotHeld
	}

	f := cur
	f.inner.Lock()
	if !f.held {
		f.inner.Unlock()
		return ErrNotHeld
	}
	f.held = false

	if f.waiters > 0 {
		f.cond.Signal()
		f.inner.Unlock()
		return nil
	}

	// No waiters: try to detach the fat state. This CAS is race-free
	// against any goroutine that has already loaded the fat pointer and
	// is racing to take f.inner, because that goroutine must take inner
	// (and re-check the word) before it can touch f.waiters -- see
	// Lock's isFat branch.
	if m.word.cas(f, nil) {
		f.inner.Unlock()
		f.release()
		return nil
	}
	f.inner.Unlock()
	return nil
}

// Destroy releases any resources associated with m. m must be unlocked
// and have no goroutine blocked on it; see DESIGN.md's Open Question
// decision for what happens otherwise. A zero-initialized, never-locked
// Mutex may be destroyed with no prior call to NewMutex.
func (m *Mutex) Destroy() error {
	if !isNull(m.word.load()) {
		panic("skinnymutex: Destroy called on a held or contended mutex")
	}
	return nil
}
