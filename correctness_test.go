// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotq_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/slotq"
)

// =============================================================================
// Exactly-Once Delivery
// =============================================================================

// tag packs a producer id and a per-producer sequence into one value.
func tag(producer, seq int) int { return producer<<32 | seq }

func untag(v int) (producer, seq int) { return v >> 32, v & (1<<32 - 1) }

// TestMPMCExactlyOnce runs 8 producers pushing 10,000 tagged values each
// into a 100-slot queue while 8 consumers pop, then checks that every value
// was delivered exactly once and the queue reports idle.
func TestMPMCExactlyOnce(t *testing.T) {
	if slotq.RaceEnabled {
		t.Skip("skip: slot ownership ordering is invisible to the race detector")
	}

	const (
		producers   = 8
		consumers   = 8
		perProducer = 10000
		total       = producers * perProducer
	)
	if testing.Short() {
		t.Skip("skip: long-running stress test")
	}

	q := slotq.NewQueue[int](100)

	var (
		prodWg   sync.WaitGroup
		consWg   sync.WaitGroup
		stop     atomix.Bool
		consumed atomix.Int64
		perCons  [consumers][]int
	)

	for c := range consumers {
		consWg.Add(1)
		go func(id int) {
			defer consWg.Done()
			backoff := iox.Backoff{}
			for !stop.LoadAcquire() || q.HasData() {
				v, err := q.Dequeue()
				if err != nil {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				perCons[id] = append(perCons[id], v)
				consumed.Add(1)
			}
		}(c)
	}

	for p := range producers {
		prodWg.Add(1)
		go func(id int) {
			defer prodWg.Done()
			backoff := iox.Backoff{}
			for i := range perProducer {
				v := tag(id, i)
				for q.Enqueue(&v) != nil {
					backoff.Wait()
				}
				backoff.Reset()
			}
		}(p)
	}

	prodWg.Wait()
	stop.StoreRelease(true)
	consWg.Wait()

	if got := consumed.Load(); got != total {
		t.Fatalf("consumed %d, want %d", got, total)
	}

	// Every tag exactly once
	var all []int
	for _, vs := range perCons {
		all = append(all, vs...)
	}
	slices.Sort(all)
	want := make([]int, 0, total)
	for p := range producers {
		for i := range perProducer {
			want = append(want, tag(p, i))
		}
	}
	slices.Sort(want)
	for i := range want {
		if all[i] != want[i] {
			t.Fatalf("value %d: got %#x, want %#x", i, all[i], want[i])
		}
	}

	// Per-producer order seen by each consumer
	for c, vs := range perCons {
		last := make(map[int]int)
		for _, v := range vs {
			p, seq := untag(v)
			if prev, ok := last[p]; ok && seq <= prev {
				t.Fatalf("consumer %d: producer %d seq %d after %d", c, p, seq, prev)
			}
			last[p] = seq
		}
	}

	if q.HasData() || q.HasWork() {
		t.Fatalf("after drain: HasData=%v HasWork=%v", q.HasData(), q.HasWork())
	}
	if n := q.CommittedSlots(); n != 0 {
		t.Fatalf("after drain: %d committed slots", n)
	}
	if n := q.OwnedSlots(); n != 0 {
		t.Fatalf("after drain: %d owned slots", n)
	}
}

// TestSingleProducerFIFO verifies that one producer's items come out in
// push order while several consumers compete.
func TestSingleProducerFIFO(t *testing.T) {
	if slotq.RaceEnabled {
		t.Skip("skip: slot ownership ordering is invisible to the race detector")
	}

	const n = 20000
	q := slotq.NewQueue[int](7)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen []int
		stop atomix.Bool
	)

	// Consumers hold the mutex across the pop, so the recorded order is
	// the dequeue order.
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.LoadAcquire() || q.HasData() {
				mu.Lock()
				v, err := q.Dequeue()
				if err == nil {
					seen = append(seen, v)
				}
				mu.Unlock()
				if err != nil {
					time.Sleep(time.Microsecond)
				}
			}
		}()
	}

	backoff := iox.Backoff{}
	for i := range n {
		for !q.Push(i) {
			backoff.Wait()
		}
		backoff.Reset()
	}
	stop.StoreRelease(true)
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("popped %d, want %d", len(seen), n)
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("pop %d: got %d, want %d", i, v, i)
		}
	}
}

// TestBoundedOccupancy checks that committed slots never exceed N-1 while
// producers hammer a slowly drained queue.
func TestBoundedOccupancy(t *testing.T) {
	if slotq.RaceEnabled {
		t.Skip("skip: slot ownership ordering is invisible to the race detector")
	}

	q := slotq.NewQueue[int](9)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	for p := range 4 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; ctx.Err() == nil; i++ {
				q.Push(tag(id, i))
			}
		}(p)
	}

	for ctx.Err() == nil {
		if n := q.CommittedSlots(); n > q.Cap() {
			t.Fatalf("committed slots %d exceed capacity %d", n, q.Cap())
		}
		q.Pop()
	}
	wg.Wait()

	for {
		if _, ok := q.Pop(); !ok {
			break
		}
	}
	if q.HasWork() {
		t.Fatalf("HasWork after drain: work=%d", q.PendingWork())
	}
}

// =============================================================================
// Wait Variants
// =============================================================================

// TestEnqueueWaitCanceled verifies a producer stuck on a full queue is
// released by its context.
func TestEnqueueWaitCanceled(t *testing.T) {
	q := slotq.NewQueue[int](2)
	q.Push(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	v := 2
	err := q.EnqueueWait(ctx, &v)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("EnqueueWait: got %v, want DeadlineExceeded", err)
	}
	// Only the committed item remains outstanding
	if q.PendingWork() != 1 || q.PendingData() != 1 {
		t.Fatalf("pending: data=%d work=%d, want 1 and 1", q.PendingData(), q.PendingWork())
	}
	if got, _ := q.Pop(); got != 1 {
		t.Fatalf("Pop: got %d, want 1", got)
	}
}

// TestDequeueWaitCanceled verifies a consumer on an empty queue is released.
func TestDequeueWaitCanceled(t *testing.T) {
	q := slotq.NewQueue[int](4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.DequeueWait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("DequeueWait: got %v, want Canceled", err)
	}
	if q.HasWork() {
		t.Fatal("HasWork after canceled DequeueWait")
	}
}

// TestWaitHandoff pairs EnqueueWait and DequeueWait across goroutines.
func TestWaitHandoff(t *testing.T) {
	if slotq.RaceEnabled {
		t.Skip("skip: slot ownership ordering is invisible to the race detector")
	}

	const n = 5000
	q := slotq.NewQueue[int](3)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		for i := range n {
			v := i
			if err := q.EnqueueWait(ctx, &v); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for i := range n {
		v, err := q.DequeueWait(ctx)
		if err != nil {
			t.Fatalf("DequeueWait(%d): %v", i, err)
		}
		if v != i {
			t.Fatalf("DequeueWait(%d): got %d", i, v)
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("EnqueueWait: %v", err)
	}
}
