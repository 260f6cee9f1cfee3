// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotq

// Options configures queue creation.
type Options struct {
	// Physical slot count; usable capacity is one less
	capacity int

	// Contention policy
	backoff Backoff

	// Maintain operation counters
	stats bool
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Default backoff, no counters
//	q := slotq.Build[Event](slotq.New(1024))
//
//	// Tuned backoff and counters for a metrics exporter
//	q := slotq.Build[*Request](slotq.New(4096).
//	    Backoff(slotq.Backoff{Step: 2 * time.Microsecond, Max: 100 * time.Microsecond}).
//	    Stats())
type Builder struct {
	opts Options
}

// New creates a queue builder with the given number of physical slots.
//
// The capacity is used as is; it is not rounded to a power of 2. The
// queue holds at most capacity-1 items.
//
// Panics if capacity < 2.
func New(capacity int) *Builder {
	if capacity < 2 {
		panic("slotq: capacity must be >= 2")
	}
	return &Builder{opts: Options{capacity: capacity, backoff: DefaultBackoff}}
}

// Backoff sets the delay policy used while contending.
// Panics if the policy's Step is not positive or Start exceeds Max.
func (b *Builder) Backoff(p Backoff) *Builder {
	p.validate()
	b.opts.backoff = p
	return b
}

// Stats enables the operation counters reported by [Queue.Stats].
func (b *Builder) Stats() *Builder {
	b.opts.stats = true
	return b
}

// Build creates a Queue[T] from the builder's configuration.
func Build[T any](b *Builder) *Queue[T] {
	q := &Queue[T]{
		coord:   newCoordinator(b.opts.capacity),
		store:   newSlotStore[T](b.opts.capacity),
		backoff: b.opts.backoff,
	}
	if b.opts.stats {
		q.stats = new(stats)
	}
	return q
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
