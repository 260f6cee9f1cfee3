// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotq

import "code.hybscloud.com/atomix"

// Stats is a snapshot of a queue's operation counters.
//
// Counters are only maintained when the queue was built with
// [Builder.Stats]; otherwise every field is zero.
type Stats struct {
	Pushed    uint64 // successful pushes
	Popped    uint64 // successful pops
	Full      uint64 // pushes refused because the queue was full
	Empty     uint64 // pops refused because the queue was empty
	Contended uint64 // failed attempts at the exclusion flag
	Busy      uint64 // claims retried because the slot was still owned
}

type stats struct {
	pushed    atomix.Uint64
	_         padShort
	popped    atomix.Uint64
	_         padShort
	full      atomix.Uint64
	empty     atomix.Uint64
	contended atomix.Uint64
	busy      atomix.Uint64
}

// The nil receiver is the disabled state.

func (s *stats) incPushed() {
	if s != nil {
		s.pushed.AddAcqRel(1)
	}
}

func (s *stats) incPopped() {
	if s != nil {
		s.popped.AddAcqRel(1)
	}
}

func (s *stats) incRefused(r role) {
	if s == nil {
		return
	}
	if r == rolePush {
		s.full.AddAcqRel(1)
	} else {
		s.empty.AddAcqRel(1)
	}
}

func (s *stats) incContended() {
	if s != nil {
		s.contended.AddAcqRel(1)
	}
}

func (s *stats) incBusy() {
	if s != nil {
		s.busy.AddAcqRel(1)
	}
}

func (s *stats) snapshot() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		Pushed:    s.pushed.LoadAcquire(),
		Popped:    s.popped.LoadAcquire(),
		Full:      s.full.LoadAcquire(),
		Empty:     s.empty.LoadAcquire(),
		Contended: s.contended.LoadAcquire(),
		Busy:      s.busy.LoadAcquire(),
	}
}
