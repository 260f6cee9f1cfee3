// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotq

import (
	"fmt"

	"code.hybscloud.com/atomix"
)

// Slot states. A slot cycles free → writing → ready → reading → free.
//
// free → writing and ready → reading happen under the exclusion flag.
// writing → ready (commit) and reading → free (release) happen outside it,
// performed by the goroutine holding the claim.
const (
	slotFree uint64 = iota
	slotWriting
	slotReady
	slotReading
)

var slotStateNames = [...]string{"free", "writing", "ready", "reading"}

func slotStateName(s uint64) string {
	if s < uint64(len(slotStateNames)) {
		return slotStateNames[s]
	}
	return fmt.Sprintf("invalid(%d)", s)
}

// ownerWord is the ownership marker of one slot, padded to a cache line
// so neighbouring slots do not share it.
type ownerWord struct {
	state atomix.Uint64
	_     padShort
}

// ownership is the per-slot marker array, kept apart from the items so the
// coordinator can inspect it without knowing the item type.
type ownership []ownerWord

func (o ownership) word(i uint64) *ownerWord {
	if i >= uint64(len(o)) {
		panic(fmt.Sprintf("slotq: slot index %d out of range [0,%d)", i, len(o)))
	}
	return &o[i]
}

// tryOwn moves slot i from one state to another and reports whether the
// slot was in the expected state.
func (o ownership) tryOwn(i, from, to uint64) bool {
	return o.word(i).state.CompareAndSwapAcqRel(from, to)
}

// move is tryOwn for transitions that cannot legitimately fail. A failed
// move means a claim was redeemed twice or never issued.
func (o ownership) move(i, from, to uint64) {
	w := o.word(i)
	if !w.state.CompareAndSwapAcqRel(from, to) {
		panic(fmt.Sprintf("slotq: slot %d is %s, want %s",
			i, slotStateName(w.state.LoadAcquire()), slotStateName(from)))
	}
}

// expect panics unless slot i is in state st.
func (o ownership) expect(i, st uint64) {
	if cur := o.word(i).state.LoadAcquire(); cur != st {
		panic(fmt.Sprintf("slotq: slot %d is %s, want %s",
			i, slotStateName(cur), slotStateName(st)))
	}
}

// slotStore holds the items and their ownership markers.
//
// Items are accessed without atomics. The goroutine holding a claim on
// index i is the only one touching items[i]; the acquire/release pair on
// the ownership marker orders the accesses of successive holders.
type slotStore[T any] struct {
	owner ownership
	items []T
}

func newSlotStore[T any](n int) slotStore[T] {
	return slotStore[T]{
		owner: make(ownership, n),
		items: make([]T, n),
	}
}

// commit writes v into the slot claimed by c and publishes it to consumers.
func (s *slotStore[T]) commit(c claim, v T) {
	c.must(rolePush)
	s.owner.expect(c.index, slotWriting)
	s.items[c.index] = v
	s.owner.move(c.index, slotWriting, slotReady)
}

// take reads the value out of the slot claimed by c and frees the slot.
// The slot is cleared first so the queue does not retain references.
func (s *slotStore[T]) take(c claim) T {
	c.must(rolePop)
	s.owner.expect(c.index, slotReading)
	v := s.items[c.index]
	var zero T
	s.items[c.index] = zero
	s.owner.move(c.index, slotReading, slotFree)
	return v
}

// count returns how many slots are in state st. Diagnostic only: the
// result is a snapshot and may be stale under concurrency.
func (s *slotStore[T]) count(st uint64) int {
	n := 0
	for i := range s.owner {
		if s.owner[i].state.LoadAcquire() == st {
			n++
		}
	}
	return n
}
