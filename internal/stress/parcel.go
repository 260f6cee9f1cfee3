// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stress

import (
	"errors"
	"fmt"

	"code.hybscloud.com/atomix"
)

// Delivery failures reported by a run. Each is wrapped with a count.
var (
	ErrDuplicate  = errors.New("stress: parcel popped more than once")
	ErrLost       = errors.New("stress: parcel pushed but never popped")
	ErrReordered  = errors.New("stress: parcels of one producer popped out of order")
	ErrNotDrained = errors.New("stress: queue not idle after drain")
)

// Parcel is a uniquely tagged payload. Producer and Seq identify it; the
// pop counter records every delivery.
type Parcel struct {
	Producer int
	Seq      uint64
	pops     atomix.Int32
}

// MarkPopped records a delivery and reports whether it was the first.
func (p *Parcel) MarkPopped() bool {
	return p.pops.Add(1) == 1
}

// Pops returns how many times the parcel was delivered.
func (p *Parcel) Pops() int32 {
	return p.pops.Load()
}

// Ledger records every parcel that was successfully pushed.
//
// Each producer owns one shard and is the only writer to it, so Record
// takes no lock. Verify must run after all producers have returned.
type Ledger struct {
	shards [][]*Parcel
}

// NewLedger returns a ledger with one shard per producer.
func NewLedger(producers int) *Ledger {
	return &Ledger{shards: make([][]*Parcel, producers)}
}

// Record adds p to its producer's shard.
func (l *Ledger) Record(p *Parcel) {
	l.shards[p.Producer] = append(l.shards[p.Producer], p)
}

// Len returns the number of recorded parcels.
func (l *Ledger) Len() int {
	n := 0
	for _, s := range l.shards {
		n += len(s)
	}
	return n
}

// Verify checks that every recorded parcel was popped exactly once.
func (l *Ledger) Verify() error {
	var dup, lost int
	for _, s := range l.shards {
		for _, p := range s {
			switch n := p.Pops(); {
			case n == 0:
				lost++
			case n > 1:
				dup++
			}
		}
	}
	var errs []error
	if dup > 0 {
		errs = append(errs, fmt.Errorf("%w: %d parcels", ErrDuplicate, dup))
	}
	if lost > 0 {
		errs = append(errs, fmt.Errorf("%w: %d parcels", ErrLost, lost))
	}
	return errors.Join(errs...)
}
