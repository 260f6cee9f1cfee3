// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotq

import "context"

// Queue is a bounded multi-producer multi-consumer FIFO queue.
//
// A Queue has N physical slots and holds at most N-1 items: the slot at
// tail is kept free so that head == tail means empty and tail+1 == head
// means full.
//
// Index updates are serialized by a single exclusion flag taken with a
// compare-and-swap and held only for the index arithmetic and the slot
// claim. The item copy happens after the flag is released, by the
// goroutine holding the claim. Each slot carries an ownership marker
// (free, writing, ready, reading); the producer's commit is a release and
// the consumer's claim is an acquire, so a consumer never observes a
// half-written item.
//
// Enqueue and Dequeue never block: a full or empty queue returns
// [ErrWouldBlock]. Losing the race for the flag, or finding the next slot
// still owned by a goroutine of the opposite role, is retried internally
// with [Backoff]. EnqueueWait and DequeueWait retry until success or until
// the caller's context is done.
//
// Memory: N items plus one cache line of ownership marker per slot.
type Queue[T any] struct {
	coord   coordinator
	pending pending
	store   slotStore[T]
	backoff Backoff
	stats   *stats
}

// NewQueue creates a queue with the given number of physical slots and
// the default backoff. Usable capacity is capacity-1.
//
// Panics if capacity < 2.
func NewQueue[T any](capacity int) *Queue[T] {
	return Build[T](New(capacity))
}

// Enqueue copies *elem into the queue.
// Returns ErrWouldBlock if the queue is full; no slot is touched.
func (q *Queue[T]) Enqueue(elem *T) error {
	q.pending.beginPush()
	c, ok := q.claim(rolePush)
	if !ok {
		q.pending.abortPush()
		return ErrWouldBlock
	}
	q.pending.commitPush()
	q.store.commit(c, *elem)
	q.stats.incPushed()
	return nil
}

// Dequeue removes and returns the item at the head of the queue.
// Returns (zero-value, ErrWouldBlock) if the queue is empty; head and
// tail are left unchanged.
func (q *Queue[T]) Dequeue() (T, error) {
	q.pending.beginPop()
	c, ok := q.claim(rolePop)
	if !ok {
		q.pending.abortPop()
		var zero T
		return zero, ErrWouldBlock
	}
	v := q.store.take(c)
	q.pending.commitPop()
	q.stats.incPopped()
	return v, nil
}

// Push adds v and reports whether there was room.
func (q *Queue[T]) Push(v T) bool {
	return q.Enqueue(&v) == nil
}

// Pop removes the item at the head. ok is false if the queue is empty.
func (q *Queue[T]) Pop() (v T, ok bool) {
	v, err := q.Dequeue()
	return v, err == nil
}

// EnqueueWait retries Enqueue with backoff until it succeeds or ctx is
// done. It returns ctx.Err() without enqueueing once ctx is done.
func (q *Queue[T]) EnqueueWait(ctx context.Context, elem *T) error {
	w := q.backoff.Waiter()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := q.Enqueue(elem); err == nil {
			return nil
		}
		w.Wait()
	}
}

// DequeueWait retries Dequeue with backoff until an item arrives or ctx is
// done.
func (q *Queue[T]) DequeueWait(ctx context.Context) (T, error) {
	w := q.backoff.Waiter()
	for {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		if v, err := q.Dequeue(); err == nil {
			return v, nil
		}
		w.Wait()
	}
}

// HasData reports whether committed items are waiting to be popped.
// The result is a snapshot for diagnostics and shutdown draining; it is
// not a precondition for Dequeue.
func (q *Queue[T]) HasData() bool {
	return q.pending.hasData()
}

// HasWork reports whether any push is in flight, any pop is in flight, or
// any pushed item is still unread. Consumers draining at shutdown may stop
// once HasWork is false and producers have stopped.
func (q *Queue[T]) HasWork() bool {
	return q.pending.hasWork()
}

// Cap returns the usable capacity, one less than the slot count.
func (q *Queue[T]) Cap() int {
	return int(q.coord.n) - 1
}

// Slots returns the number of physical slots.
func (q *Queue[T]) Slots() int {
	return int(q.coord.n)
}

// Stats returns a snapshot of the operation counters.
func (q *Queue[T]) Stats() Stats {
	return q.stats.snapshot()
}

// claim runs the flag protocol for one role: take the flag, ask the
// coordinator for a slot, give the flag back. A busy slot is retried; a
// full or empty queue is reported to the caller.
func (q *Queue[T]) claim(r role) (claim, bool) {
	w := q.backoff.Waiter()
	for {
		if !q.coord.tryAcquire() {
			q.stats.incContended()
			w.Wait()
			continue
		}
		var (
			c   claim
			res claimResult
		)
		if r == rolePush {
			c, res = q.coord.claimPush(q.store.owner)
		} else {
			c, res = q.coord.claimPop(q.store.owner)
		}
		q.coord.release()

		switch res {
		case claimOK:
			return c, true
		case claimRefused:
			q.stats.incRefused(r)
			return claim{}, false
		}
		q.stats.incBusy()
		w.Wait()
	}
}
