// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// This file contains examples with concurrent producer/consumer goroutines.
// Items are ordered by atomix operations on the slot markers, which Go's
// race detector cannot see, so the examples are excluded from race testing.

package slotq_test

import (
	"fmt"
	"slices"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/slotq"
)

// Example_drain shows consumers draining with HasData after producers stop.
func Example_drain() {
	q := slotq.NewQueue[int](16)

	var (
		prodWg  sync.WaitGroup
		consWg  sync.WaitGroup
		stopped atomix.Bool
		mu      sync.Mutex
		got     []int
	)

	for c := range 3 {
		consWg.Add(1)
		go func(id int) {
			defer consWg.Done()
			backoff := iox.Backoff{}
			for !stopped.LoadAcquire() || q.HasData() {
				v, err := q.Dequeue()
				if err != nil {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				mu.Lock()
				got = append(got, v)
				mu.Unlock()
			}
		}(c)
	}

	for p := range 4 {
		prodWg.Add(1)
		go func(id int) {
			defer prodWg.Done()
			backoff := iox.Backoff{}
			for i := range 5 {
				v := id*10 + i
				for q.Enqueue(&v) != nil {
					backoff.Wait()
				}
				backoff.Reset()
			}
		}(p)
	}

	prodWg.Wait()
	stopped.StoreRelease(true)
	consWg.Wait()

	slices.Sort(got)
	fmt.Println(len(got), got[0], got[len(got)-1])
	fmt.Println(q.HasData(), q.HasWork())

	// Output:
	// 20 0 34
	// false false
}

// Example_workerPool fans jobs out to workers; the producer retries with a Waiter.
func Example_workerPool() {
	type Job struct {
		ID    int
		Input int
	}

	jobs := slotq.NewQueue[Job](8)
	results := make([]int, 5)
	var wg sync.WaitGroup
	var completed atomix.Int32

	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for completed.Load() < 5 {
				job, err := jobs.Dequeue()
				if err != nil {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				results[job.ID] = job.Input * job.Input
				completed.Add(1)
			}
		}()
	}

	w := slotq.DefaultBackoff.Waiter()
	for i := range 5 {
		job := Job{ID: i, Input: i + 1}
		for jobs.Enqueue(&job) != nil {
			w.Wait()
		}
		w.Reset()
	}

	wg.Wait()
	for i, r := range results {
		fmt.Printf("Job %d: %d² = %d\n", i, i+1, r)
	}

	// Output:
	// Job 0: 1² = 1
	// Job 1: 2² = 4
	// Job 2: 3² = 9
	// Job 3: 4² = 16
	// Job 4: 5² = 25
}
