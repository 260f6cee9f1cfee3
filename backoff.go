// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotq

import (
	"runtime"
	"time"

	"code.hybscloud.com/spin"
)

// Backoff is the delay policy used while a goroutine contends on the queue.
//
// The delay starts at Start and grows by Step on every wait until it
// reaches Max. At Max it either saturates or, when Wrap is set, starts
// over from Start.
//
// A negative Start is a spin budget: while the delay is negative each wait
// is a single CPU pause with no yield and no sleep. With Step = 1µs and
// Start = -8µs the first eight waits are pure spins.
//
//	b := slotq.Backoff{Start: -8 * time.Microsecond, Step: time.Microsecond, Max: 50 * time.Microsecond}
//	q := slotq.Build[Event](slotq.New(1024).Backoff(b))
type Backoff struct {
	Start time.Duration
	Step  time.Duration
	Max   time.Duration
	Wrap  bool
}

// DefaultBackoff spins eight times, then yields and sleeps for 1µs, 2µs,
// and so on up to 50µs.
var DefaultBackoff = Backoff{
	Start: -8 * time.Microsecond,
	Step:  time.Microsecond,
	Max:   50 * time.Microsecond,
}

// Next returns the delay that follows prev. It has no side effects.
func (b Backoff) Next(prev time.Duration) time.Duration {
	if prev < b.Max {
		next := prev + b.Step
		if next > b.Max {
			return b.Max
		}
		return next
	}
	if b.Wrap {
		return b.Start
	}
	return b.Max
}

// Waiter returns a fresh Waiter driven by b.
func (b Backoff) Waiter() Waiter {
	return Waiter{policy: b, delay: b.Start}
}

func (b Backoff) validate() {
	switch {
	case b.Step <= 0:
		panic("slotq: backoff step must be > 0")
	case b.Max < 0:
		panic("slotq: backoff max must be >= 0")
	case b.Start > b.Max:
		panic("slotq: backoff start must be <= max")
	}
}

// Waiter carries the state of one backoff sequence.
//
// A Waiter is owned by a single goroutine. The zero value never sleeps:
// every Wait only yields the processor.
type Waiter struct {
	policy Backoff
	delay  time.Duration
	sw     spin.Wait
}

// Wait pauses for the current delay and advances it.
func (w *Waiter) Wait() {
	switch {
	case w.delay < 0:
		w.sw.Once()
	case w.delay == 0:
		runtime.Gosched()
	default:
		runtime.Gosched()
		time.Sleep(w.delay)
	}
	if w.policy.Step > 0 {
		w.delay = w.policy.Next(w.delay)
	}
}

// Reset restarts the sequence from the policy's Start delay.
func (w *Waiter) Reset() {
	w.delay = w.policy.Start
	w.sw = spin.Wait{}
}

// Delay reports the delay the next Wait will use.
func (w *Waiter) Delay() time.Duration {
	return w.delay
}
