// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package slotq provides a fixed-capacity multi-producer multi-consumer
// FIFO queue built on slot claims.
//
// # Quick Start
//
//	q := slotq.NewQueue[Event](1024) // 1024 slots, 1023 usable
//
//	ev := Event{ID: 1}
//	if err := q.Enqueue(&ev); slotq.IsWouldBlock(err) {
//	    // Queue is full - handle backpressure
//	}
//
//	ev, err := q.Dequeue()
//	if slotq.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// The boolean forms are equivalent:
//
//	ok := q.Push(ev)
//	ev, ok := q.Pop()
//
// # Protocol
//
// The queue is a ring of N slots with a head (next slot to read) and a
// tail (next slot to write). One slot is always left free, so the queue
// holds at most N-1 items and needs no element counter to tell full from
// empty.
//
// Index updates are serialized by a single exclusion flag. A goroutine
// takes the flag with a compare-and-swap, checks whether its operation can
// proceed, claims the slot at tail (push) or head (pop), advances the
// index and releases the flag. The copy of the item happens afterwards,
// outside the flag, by the goroutine that owns the claim:
//
//	push: flag → claim tail (free → writing) → advance tail → unflag
//	      write item → commit (writing → ready, release)
//	pop:  flag → claim head (ready → reading, acquire) → advance head → unflag
//	      read item → release (reading → free, release)
//
// A consumer can only claim a slot in the ready state, and the
// release/acquire pair on that marker orders the producer's write before
// the consumer's read. A producer can only claim a free slot, so a slot is
// never overwritten while a consumer is still copying out of it.
//
// Redeeming a claim twice, releasing the flag when it is not held, or an
// index outside the ring is a broken invariant and panics.
//
// # Backpressure and Retry
//
// Enqueue and Dequeue return [ErrWouldBlock] when the queue is full or
// empty. Contention that is expected to clear quickly (another goroutine
// holding the flag, or the next slot still owned by a goroutine of the
// opposite role) is retried inside the call with [Backoff].
//
// For callers that prefer to wait, EnqueueWait and DequeueWait retry with
// backoff until they succeed or the context is done:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	if err := q.EnqueueWait(ctx, &ev); err != nil {
//	    return err // context canceled during shutdown
//	}
//
// A hand-written retry loop looks the same with a [Waiter]:
//
//	w := slotq.DefaultBackoff.Waiter()
//	for q.Enqueue(&ev) != nil {
//	    if !running.Load() {
//	        break
//	    }
//	    w.Wait()
//	}
//
// # Backoff
//
// [Backoff] grows the delay by a fixed step up to a maximum. A negative
// start is spent as CPU pauses before the first yield or sleep:
//
//	b := slotq.Backoff{Start: -8 * time.Microsecond, Step: time.Microsecond, Max: 50 * time.Microsecond}
//	q := slotq.Build[Event](slotq.New(1024).Backoff(b))
//
// # Draining
//
// HasData and HasWork are snapshots for shutdown logic and never gate a
// push or pop. HasWork stays true from the start of a push until its item
// has been popped, and while any pop is in flight:
//
//	prodWg.Wait() // producers have stopped
//	for q.HasWork() {
//	    if ev, err := q.Dequeue(); err == nil {
//	        handle(ev)
//	    }
//	}
//
// # Progress
//
// The queue is not lock-free: a goroutine preempted while holding the
// exclusion flag delays every other goroutine until it runs again. The
// critical section is a handful of loads and stores, so in practice the
// delay is short. There is no fairness between goroutines waiting on the
// flag.
//
// Items pushed by one goroutine are popped in the order that goroutine
// pushed them. Items from different producers are ordered by which claim
// won the flag first.
//
// # Race Detection
//
// Items are plain memory ordered by the ownership markers, which use
// [code.hybscloud.com/atomix] operations with explicit memory ordering.
// Go's race detector does not observe those orderings and may report
// false positives; concurrent tests check [RaceEnabled] and skip.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause instructions.
package slotq
