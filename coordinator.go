// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotq

import (
	"fmt"

	"code.hybscloud.com/atomix"
)

type role uint8

const (
	rolePush role = iota + 1
	rolePop
)

func (r role) String() string {
	switch r {
	case rolePush:
		return "push"
	case rolePop:
		return "pop"
	default:
		return "none"
	}
}

// claim is the capability to access one slot.
//
// The coordinator issues it under the exclusion flag and the slot store
// redeems it exactly once: commit for a push claim, take for a pop claim.
// Redeeming twice fails the ownership transition and panics.
type claim struct {
	index uint64
	role  role
}

func (c claim) must(r role) {
	if c.role != r {
		panic(fmt.Sprintf("slotq: %s claim redeemed as %s", c.role, r))
	}
}

type claimResult uint8

const (
	claimOK      claimResult = iota
	claimRefused             // full for push, empty for pop
	claimBusy                // the slot is still owned by the opposite role
)

// Exclusion flag values.
const (
	flagFree uint64 = iota
	flagHeld
)

// coordinator owns the ring indices and the exclusion flag that serializes
// every change to them.
//
// head and tail are atomics so diagnostics can read them, but they are
// only written by the flag holder and the holder uses relaxed accesses:
// acquiring the flag orders them.
type coordinator struct {
	_    pad
	flag atomix.Uint64
	_    pad
	head atomix.Uint64 // next slot to read
	tail atomix.Uint64 // next slot to write
	_    pad
	n    uint64
}

func newCoordinator(n int) coordinator {
	return coordinator{n: uint64(n)}
}

// tryAcquire makes one attempt at the exclusion flag.
func (c *coordinator) tryAcquire() bool {
	return c.flag.CompareAndSwapAcqRel(flagFree, flagHeld)
}

// release gives the exclusion flag back. Releasing a flag that is not
// held is a broken invariant.
func (c *coordinator) release() {
	if !c.flag.CompareAndSwapAcqRel(flagHeld, flagFree) {
		panic("slotq: exclusion flag released while not held")
	}
}

// claimPush must be called with the flag held.
func (c *coordinator) claimPush(own ownership) (claim, claimResult) {
	tail := c.tail.LoadRelaxed()
	next := (tail + 1) % c.n
	if next == c.head.LoadRelaxed() {
		return claim{}, claimRefused
	}
	if !own.tryOwn(tail, slotFree, slotWriting) {
		return claim{}, claimBusy
	}
	c.tail.StoreRelaxed(next)
	return claim{index: tail, role: rolePush}, claimOK
}

// claimPop must be called with the flag held.
func (c *coordinator) claimPop(own ownership) (claim, claimResult) {
	head := c.head.LoadRelaxed()
	if head == c.tail.LoadRelaxed() {
		return claim{}, claimRefused
	}
	// A producer that claimed head but has not committed yet keeps the
	// slot in writing; the consumer must not read it.
	if !own.tryOwn(head, slotReady, slotReading) {
		return claim{}, claimBusy
	}
	c.head.StoreRelaxed((head + 1) % c.n)
	return claim{index: head, role: rolePop}, claimOK
}

// indices returns a snapshot of head and tail.
func (c *coordinator) indices() (head, tail uint64) {
	return c.head.LoadAcquire(), c.tail.LoadAcquire()
}
