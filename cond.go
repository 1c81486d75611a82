package skinnymutex

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// HostCond is the condition-variable primitive the caller supplies to
// CondWait/CondTimedWait -- the skinny-mutex equivalent of a
// pthread_cond_t, independent of any one lock. It is not bound to a
// fixed sync.Locker at construction time (unlike sync.Cond), because the
// lock a Mutex exposes to CondWait changes identity as fat state
// attaches and detaches between calls. The shape mirrors
// v.io/x/lib/nsync's CV.Wait(mu sync.Locker) / CV.WaitWithDeadline, which
// takes the same explicit-lock-per-call approach for the same reason.
//
// The zero value is ready to use; NewHostCond returns exactly that.
type HostCond struct {
	mu      sync.Mutex
	waiters list.List // of chan struct{}
}

// NewHostCond returns a ready-to-use HostCond.
func NewHostCond() *HostCond {
	return &HostCond{}
}

// Signal wakes at most one goroutine currently blocked in wait.
func (c *HostCond) Signal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if front := c.waiters.Front(); front != nil {
		c.waiters.Remove(front)
		close(front.Value.(chan struct{}))
	}
}

// Broadcast wakes every goroutine currently blocked in wait.
func (c *HostCond) Broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for e := c.waiters.Front(); e != nil; e = e.Next() {
		close(e.Value.(chan struct{}))
	}
	c.waiters.Init()
}

// wait enqueues the caller, releases l, and blocks until Signal/
// Broadcast wakes it, ctx is done, or (when deadline is non-zero) the
// deadline elapses. l is always reacquired before wait returns, on every
// exit path -- this is what lets CondWait honor "reacquire before
// unwinding" even on cancellation.
func (c *HostCond) wait(ctx context.Context, l sync.Locker, deadline time.Time) (timedOut bool, cancelErr error) {
	ch := make(chan struct{})
	c.mu.Lock()
	elem := c.waiters.PushBack(ch)
	c.mu.Unlock()

	l.Unlock()
	defer l.Lock()

	var timerC <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		timerC = timer.C
	}

	select {
	case <-ch:
		return false, nil
	case <-timerC:
		// Mesa-style condition variables are used in a loop that
		// re-checks the predicate regardless of the outcome here, so a
		// spurious ErrTimedOut racing a concurrent Signal (both channels
		// becoming ready at once) is harmless; see nsync's CV doc for
		// the same observation.
		c.remove(elem)
		return true, nil
	case <-ctx.Done():
		c.remove(elem)
		return false, ctx.Err()
	}
}

func (c *HostCond) remove(elem *list.Element) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waiters.Remove(elem) // no-op if already removed by Signal/Broadcast
}

// CondWait implements the condition bridge of §4.4. The caller must hold
// m. CondWait ensures fat state is attached (upgrading a HELD_NOFAT hold
// if necessary), releases m for the duration of the sleep on hc, and
// reacquires m before returning -- on a normal wakeup and on
// cancellation alike. It is a cancellation point: if ctx is canceled
// while asleep, CondWait still reacquires m (mirroring the pthread
// cleanup-handler convention of running with the mutex held) and then
// returns ctx.Err().
func (m *Mutex) CondWait(ctx context.Context, hc *HostCond) error {
	return m.condWait(ctx, hc, time.Time{})
}

// CondTimedWait is CondWait with an absolute deadline. It returns
// ErrTimedOut if the deadline elapses before hc is signaled.
func (m *Mutex) CondTimedWait(ctx context.Context, hc *HostCond, deadline time.Time) error {
	return m.condWait(ctx, hc, deadline)
}

func (m *Mutex) condWait(ctx context.Context, hc *HostCond, deadline time.Time) error {
	f := m.ensureFatStateHeld()

	f.inner.Lock()
	f.held = false
	if f.waiters > 0 {
		f.cond.Signal()
	}

	timedOut, cancelErr := hc.wait(ctx, &f.inner, deadline)
	// f.inner is held again here, regardless of which case hc.wait's
	// select took. But f itself may have been detached and freed while
	// we slept -- Unlock's "no waiters" path has no way to know we're
	// about to come back and ask for f.inner, since a CondWait sleeper
	// isn't counted in f.waiters. Re-check the word before trusting f,
	// exactly like Lock's isFat branch does for the same race.
	if m.word.load() != f {
		f.inner.Unlock()
		_ = m.Lock() // always succeeds; re-run full acquisition against the live word.
	} else {
		f.waiters++
		m.waitForHandoff(f)
		f.inner.Unlock()
	}

	if cancelErr != nil {
		return cancelErr
	}
	if timedOut {
		return ErrTimedOut
	}
	return nil
}

// ensureFatStateHeld upgrades a HELD_NOFAT hold to a fat-stated one, so
// CondWait always has an inner mutex/cond to sleep against. Per §4.4
// step 1, this CAS always eventually succeeds: the only thing that can
// win a race against it is a concurrent contender's own attach (Lock's
// HELD_NOFAT branch), which leaves behind a usable fat state too.
func (m *Mutex) ensureFatStateHeld() *fatState {
	for {
		cur := m.word.load()
		if isFat(cur) {
			return cur
		}
		if isNull(cur) {
			panic("skinnymutex: CondWait called without holding the mutex")
		}
		f := newFatState(0)
		if m.word.cas(cur, f) {
			logFatStateAttach(m, f)
			return f
		}
	}
}
