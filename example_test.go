// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotq_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.hybscloud.com/slotq"
)

// ExampleNewQueue shows the full/empty contract on a four-slot queue.
func ExampleNewQueue() {
	q := slotq.NewQueue[string](4)

	for _, v := range []string{"A", "B", "C", "D"} {
		fmt.Println("push", v, q.Push(v))
	}
	for range 4 {
		v, ok := q.Pop()
		fmt.Println("pop", v, ok)
	}

	// Output:
	// push A true
	// push B true
	// push C true
	// push D false
	// pop A true
	// pop B true
	// pop C true
	// pop  false
}

// ExampleQueue_Enqueue shows backpressure as ErrWouldBlock.
func ExampleQueue_Enqueue() {
	q := slotq.NewQueue[int](2)

	v := 1
	fmt.Println(q.Enqueue(&v))
	err := q.Enqueue(&v)
	fmt.Println(slotq.IsWouldBlock(err))

	// Output:
	// <nil>
	// true
}

// ExampleQueue_EnqueueWait shows a producer released by its context.
func ExampleQueue_EnqueueWait() {
	q := slotq.NewQueue[int](2)
	q.Push(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	v := 2
	err := q.EnqueueWait(ctx, &v)
	fmt.Println(errors.Is(err, context.DeadlineExceeded))

	// Output:
	// true
}

// ExampleBuild configures backoff and counters.
func ExampleBuild() {
	q := slotq.Build[int](slotq.New(8).
		Backoff(slotq.Backoff{Start: -4 * time.Microsecond, Step: time.Microsecond, Max: 20 * time.Microsecond}).
		Stats())

	for i := range 10 {
		q.Push(i)
	}
	fmt.Printf("%+v\n", q.Stats())

	// Output:
	// {Pushed:7 Popped:0 Full:3 Empty:0 Contended:0 Busy:0}
}

// ExampleBackoff_Next walks a saturating policy.
func ExampleBackoff_Next() {
	b := slotq.Backoff{Start: 0, Step: 2 * time.Microsecond, Max: 5 * time.Microsecond}
	d := b.Start
	for range 4 {
		d = b.Next(d)
		fmt.Println(d)
	}

	// Output:
	// 2µs
	// 4µs
	// 5µs
	// 5µs
}
