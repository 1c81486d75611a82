// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package skinnymutex implements a "skinny mutex": a mutual-exclusion lock
// whose handle is a single pointer-sized word. A conventional mutex carries a
// queue head, an owner, and assorted bookkeeping inline; this one carries
// only that one word, and attaches a heavier "fat state" control block on the
// heap only once contention is actually observed. The fat state is detached
// again once the last waiter leaves and the mutex goes idle, so the steady
// state of an uncontended mutex is one pointer.
//
// ## Overview
//
// The word holds exactly one of three things:
//
//	nil            -- unlocked, no fat state
//	heldNoFat      -- locked, no waiters have ever arrived, no fat state
//	*fatState      -- fat state attached; its own fields say whether the
//	                  mutex is held and how many goroutines are waiting
//
//	    +--------+----------+------------------------------------------+
//	    | value  | held?    | meaning                                  |
//	    +--------+----------+------------------------------------------+
//	    | nil    | no       | idle, uncontended                       |
//	    | sentinel| yes     | held, never contended this epoch        |
//	    | pointer| held?    | contended at least once; see fatState    |
//	    +--------+----------+------------------------------------------+
//
// Lock's fast path is a single CAS from nil to the sentinel. Unlock's fast
// path is a single CAS from the sentinel back to nil. Both degrade to a slow
// path that allocates (on first contention) or manipulates (on subsequent
// contention) the fat state, which is itself protected by an ordinary
// sync.Mutex and uses a sync.Cond for handoff between the unlocker and
// whichever waiter it wakes.
//
// A Mutex's zero value is a valid, unlocked mutex -- there is no
// constructor to call before use, matching the package-scope-variable usage
// the host contract promises.
package skinnymutex
