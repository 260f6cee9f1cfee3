// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotq

import (
	"fmt"

	"code.hybscloud.com/atomix"
)

// pending tracks stored items and outstanding work for HasData and
// HasWork. Nothing in the push/pop protocol reads these counters.
//
// A push reserves two units of work when it begins: one for itself and
// one for the pop that will eventually consume its item. Work therefore
// stays positive from the moment a push starts until its item has been
// popped.
type pending struct {
	_    pad
	data atomix.Int64 // committed, unread items
	_    pad
	work atomix.Int64 // pushes in flight + pops in flight + unread items
	_    pad
}

func (p *pending) beginPush() { p.work.AddAcqRel(2) }

// commitPush runs before the slot is published so data never lags behind
// a consumer that has already taken the item.
func (p *pending) commitPush() {
	p.data.AddAcqRel(1)
	p.sub(&p.work, 1, "work")
}

func (p *pending) abortPush() { p.sub(&p.work, 2, "work") }

func (p *pending) beginPop() { p.work.AddAcqRel(1) }

func (p *pending) commitPop() {
	p.sub(&p.data, 1, "data")
	p.sub(&p.work, 2, "work")
}

func (p *pending) abortPop() { p.sub(&p.work, 1, "work") }

func (p *pending) hasData() bool { return p.data.Load() > 0 }

func (p *pending) hasWork() bool { return p.work.Load() > 0 }

func (p *pending) sub(c *atomix.Int64, d int64, name string) {
	if v := c.AddAcqRel(-d); v < 0 {
		panic(fmt.Sprintf("slotq: pending %s counter went negative (%d)", name, v))
	}
}
