package skinnymutex

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const numContenders = 10

// delay mirrors original_source/test.c's delay(): give a goroutine a
// beat to actually observe the mutex held, making races reproducible
// without being load-bearing for correctness.
func delay() {
	time.Sleep(time.Millisecond)
}

// withFatStateAttached runs f against a fresh mutex, and again against a
// mutex that a background goroutine has upgraded to fat state and then
// stays parked on in CondWait for the duration of f -- mirroring
// original_source/test.c's do_test_simple/do_test_cond_wait pairing.
// A goroutine parked in CondWait is not counted in the fat state's
// waiters, so the Unlock that ends the setup handshake detaches the fat
// state: f starts with no fat state attached, and the background
// goroutine, woken at the end, reacquires m through condWait's
// detached-fat-state path.
func withFatStateAttached(t *testing.T, f func(t *testing.T, m *Mutex)) {
	t.Run("bare", func(t *testing.T) {
		m := NewMutex()
		f(t, m)
		assert.NoError(t, m.Destroy())
	})

	t.Run("fat_stated", func(t *testing.T) {
		m := NewMutex()
		hc := NewHostCond()
		var phase int32 // 0: starting, 1: handed to f, 2: release

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Lock())
			atomic.StoreInt32(&phase, 1)
			hc.Signal()
			for atomic.LoadInt32(&phase) != 2 {
				assert.NoError(t, m.CondWait(context.Background(), hc))
			}
			assert.NoError(t, m.Unlock())
		}()

		assert.NoError(t, m.Lock())
		for atomic.LoadInt32(&phase) != 1 {
			assert.NoError(t, m.CondWait(context.Background(), hc))
		}
		assert.NoError(t, m.Unlock())

		f(t, m)

		assert.NoError(t, m.Lock())
		atomic.StoreInt32(&phase, 2)
		hc.Signal()
		assert.NoError(t, m.Unlock())

		wg.Wait()
		assert.NoError(t, m.Destroy())
	})
}

func TestStaticZeroValueMutex(t *testing.T) {
	var m Mutex // no constructor call, matching §6/§8.4's static-init guarantee
	assert.NoError(t, m.Lock())
	assert.NoError(t, m.Unlock())
	assert.NoError(t, m.Destroy())
}

func TestLockUnlock(t *testing.T) {
	withFatStateAttached(t, func(t *testing.T, m *Mutex) {
		assert.NoError(t, m.Lock())
		assert.NoError(t, m.Unlock())
	})
}

func TestUnlockNotHeld(t *testing.T) {
	m := NewMutex()
	err := m.Unlock()
	assert.ErrorIs(t, err, ErrNotHeld)
	assert.NoError(t, m.Destroy())
}

func TestDoubleUnlockIsRejected(t *testing.T) {
	m := NewMutex()
	assert.NoError(t, m.Lock())
	assert.NoError(t, m.Unlock())
	assert.ErrorIs(t, m.Unlock(), ErrNotHeld)
	assert.NoError(t, m.Destroy())
}

// TestContentionBump mirrors original_source/test.c's test_contention: a
// main goroutine holds the mutex while spawning numContenders workers
// that each lock, observe exclusive access, and bump a shared counter.
func TestContentionBump(t *testing.T) {
	withFatStateAttached(t, func(t *testing.T, m *Mutex) {
		var held int32
		var count int

		assert.NoError(t, m.Lock())

		var wg sync.WaitGroup
		for i := 0; i < numContenders; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, m.Lock())
				assert.Equal(t, int32(0), atomic.LoadInt32(&held))
				atomic.StoreInt32(&held, 1)
				delay()
				atomic.StoreInt32(&held, 0)
				count++
				assert.NoError(t, m.Unlock())
			}()
		}

		assert.NoError(t, m.Unlock())
		wg.Wait()

		assert.NoError(t, m.Lock())
		assert.Equal(t, int32(0), atomic.LoadInt32(&held))
		assert.Equal(t, numContenders, count)
		assert.NoError(t, m.Unlock())
	})
}

// TestLockCancellationIsNotObserved mirrors test_lock_cancellation: Lock
// has no cancellation mechanism at all, so a goroutine blocked in it can
// only be unblocked by a real Unlock, never by an external done signal.
func TestLockCancellationIsNotObserved(t *testing.T) {
	m := NewMutex()
	assert.NoError(t, m.Lock())

	_, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, m.Lock()) // Lock takes no ctx: cancel below cannot reach it.
		assert.NoError(t, m.Unlock())
	}()

	delay()
	cancel() // "cancellation delivered" -- Lock has no way to observe ctx at all.

	select {
	case <-done:
		t.Fatal("Lock returned before the real Unlock despite having no cancellation path")
	case <-time.After(5 * time.Millisecond):
	}

	assert.NoError(t, m.Unlock())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not acquire the lock after it became available")
	}
}

// TestTrylockContention mirrors test_trylock: a holder blocks a second
// goroutine's TryLock with ErrBusy, and TryLock succeeds again once the
// holder releases.
func TestTrylockContention(t *testing.T) {
	m := NewMutex()
	assert.NoError(t, m.TryLock())

	busy := make(chan struct{})
	go func() {
		defer close(busy)
		assert.ErrorIs(t, m.TryLock(), ErrBusy)
	}()
	<-busy

	released := make(chan struct{})
	go func() {
		assert.NoError(t, m.Lock())
		delay()
		delay()
		assert.NoError(t, m.Unlock())
		close(released)
	}()

	assert.NoError(t, m.Unlock())
	delay()

	busy2 := make(chan struct{})
	go func() {
		defer close(busy2)
		assert.ErrorIs(t, m.TryLock(), ErrBusy)
	}()
	<-busy2
	<-released

	assert.NoError(t, m.TryLock())
	assert.NoError(t, m.Unlock())
}

// TestHammer runs numContenders goroutines continuously locking and
// unlocking, bounded by ctx instead of test.c's pthread_cancel (Go
// goroutines cooperate with cancellation rather than being forcibly
// killed). No other test runs alongside it (no test in the package calls
// t.Parallel) and no other scenario uses this mutex; the test checks that
// every Lock/Unlock in the loop succeeds and that the mutex still locks,
// unlocks and destroys cleanly afterwards.
func TestHammer(t *testing.T) {
	m := NewMutex()
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < numContenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				assert.NoError(t, m.Lock())
				assert.NoError(t, m.Unlock())
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	cancel()
	wg.Wait()

	assert.NoError(t, m.Lock())
	assert.NoError(t, m.Unlock())
	assert.NoError(t, m.Destroy())
}

func TestDestroyPanicsOnHeldMutex(t *testing.T) {
	m := NewMutex()
	assert.NoError(t, m.Lock())
	assert.Panics(t, func() {
		_ = m.Destroy()
	})
	assert.NoError(t, m.Unlock())
}
