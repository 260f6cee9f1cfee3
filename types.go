// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotq

import "context"

// Producer is the interface for enqueueing elements.
//
// The element is passed by pointer to avoid copying large structs into
// the call. The queue stores a copy of the pointed-to value, so the
// original can be modified after Enqueue returns.
type Producer[T any] interface {
	// Enqueue adds an element to the queue (non-blocking).
	// Returns nil on success, ErrWouldBlock if the queue is full.
	Enqueue(elem *T) error

	// EnqueueWait retries until the element is enqueued or ctx is done.
	EnqueueWait(ctx context.Context, elem *T) error
}

// Consumer is the interface for dequeueing elements.
//
// The element is returned by value. The slot it came from is cleared to
// allow garbage collection of referenced objects.
type Consumer[T any] interface {
	// Dequeue removes and returns an element from the queue (non-blocking).
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	Dequeue() (T, error)

	// DequeueWait retries until an element arrives or ctx is done.
	DequeueWait(ctx context.Context) (T, error)
}

// Drainable is implemented by queues that can tell a shutting-down
// consumer whether it is safe to stop.
//
// Example:
//
//	prodWg.Wait()      // producers have stopped
//	for q.HasWork() {  // items or operations still outstanding
//	    if v, err := q.Dequeue(); err == nil {
//	        handle(v)
//	    }
//	}
type Drainable interface {
	// HasData reports whether committed items are waiting.
	HasData() bool

	// HasWork reports whether items are waiting or operations are in flight.
	HasWork() bool
}

var (
	_ Producer[int] = (*Queue[int])(nil)
	_ Consumer[int] = (*Queue[int])(nil)
	_ Drainable     = (*Queue[int])(nil)
)
