// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotq

// Test-only views of queue internals.

// CommittedSlots returns how many slots hold a committed, unread item.
func (q *Queue[T]) CommittedSlots() int { return q.store.count(slotReady) }

// OwnedSlots returns how many slots are claimed by an in-flight operation.
func (q *Queue[T]) OwnedSlots() int {
	return q.store.count(slotWriting) + q.store.count(slotReading)
}

// PendingData returns the raw stored-item counter.
func (q *Queue[T]) PendingData() int64 { return q.pending.data.Load() }

// PendingWork returns the raw outstanding-work counter.
func (q *Queue[T]) PendingWork() int64 { return q.pending.work.Load() }

// Indices returns head and tail.
func (q *Queue[T]) Indices() (head, tail uint64) { return q.coord.indices() }
