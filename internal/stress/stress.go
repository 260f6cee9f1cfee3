// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stress drives producers and consumers against one queue and
// checks that every pushed parcel is delivered exactly once.
package stress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/slotq"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Result summarizes one run.
type Result struct {
	ID       string        `json:"id"`
	Config   Config        `json:"config"`
	Pushed   int64         `json:"pushed"`
	Popped   int64         `json:"popped"`
	Retired  int64         `json:"retired"` // parcels dropped by producers stopped against a full queue
	Elapsed  time.Duration `json:"elapsed"`
	Stats    slotq.Stats   `json:"stats"`
	Reorders int64         `json:"reorders"`
}

// NsPerOp returns elapsed nanoseconds per delivered parcel.
func (r Result) NsPerOp() float64 {
	if r.Popped == 0 {
		return 0
	}
	return float64(r.Elapsed.Nanoseconds()) / float64(r.Popped)
}

// run holds the shared state of one Run call.
type run struct {
	cfg    Config
	q      *slotq.Queue[*Parcel]
	ledger *Ledger
	log    zerolog.Logger

	producing atomix.Bool
	consuming atomix.Bool

	pushed   atomix.Int64
	popped   atomix.Int64
	retired  atomix.Int64
	reorders atomix.Int64
}

// Run executes one stress run and verifies delivery.
//
// Producers push until their quota is met, the configured duration
// elapses, or ctx is done. A producer stopped while its parcel is refused
// by a full queue retires the parcel. Consumers pop until every producer
// has returned, then drain while the queue reports data. The queue must
// report neither data nor work afterwards.
//
// The returned Result is filled in even when an error is returned.
func Run(ctx context.Context, cfg Config, logger zerolog.Logger) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{Config: cfg}, err
	}

	r := &run{
		cfg:    cfg,
		q:      slotq.Build[*Parcel](slotq.New(cfg.Capacity).Stats()),
		ledger: NewLedger(cfg.Producers),
	}
	id := uuid.NewString()
	r.log = logger.With().Str("run", id).Logger()
	if cfg.OnQueue != nil {
		cfg.OnQueue(r.q)
	}

	start := time.Now()
	runCtx, cancel := runContext(ctx, cfg.Duration)
	defer cancel()

	r.producing.StoreRelease(true)
	r.consuming.StoreRelease(true)
	go func() {
		<-runCtx.Done()
		r.producing.StoreRelease(false)
	}()

	r.log.Info().
		Int("producers", cfg.Producers).
		Int("consumers", cfg.Consumers).
		Int("capacity", cfg.Capacity).
		Dur("duration", cfg.Duration).
		Int("items_per_producer", cfg.ItemsPerProducer).
		Msg("stress run started")

	var consumers errgroup.Group
	for c := range cfg.Consumers {
		consumers.Go(func() error { return r.consume(c) })
	}
	var producers errgroup.Group
	for p := range cfg.Producers {
		producers.Go(func() error { return r.produce(p) })
	}

	_ = producers.Wait()
	r.consuming.StoreRelease(false)
	_ = consumers.Wait()
	cancel()

	res := Result{
		ID:       id,
		Config:   cfg,
		Pushed:   r.pushed.Load(),
		Popped:   r.popped.Load(),
		Retired:  r.retired.Load(),
		Elapsed:  time.Since(start),
		Stats:    r.q.Stats(),
		Reorders: r.reorders.Load(),
	}

	err := r.verify(res)
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("stress: run interrupted: %w", ctx.Err())
	}

	level := zerolog.InfoLevel
	if err != nil {
		level = zerolog.ErrorLevel
	}
	r.log.WithLevel(level).Err(err).
		Int64("pushed", res.Pushed).
		Int64("popped", res.Popped).
		Int64("retired", res.Retired).
		Dur("elapsed", res.Elapsed).
		Float64("ns_per_op", res.NsPerOp()).
		Uint64("contended", res.Stats.Contended).
		Uint64("busy", res.Stats.Busy).
		Msg("stress run finished")

	return res, err
}

func runContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func (r *run) produce(id int) error {
	w := slotq.DefaultBackoff.Waiter()
	for seq := uint64(0); r.cfg.ItemsPerProducer == 0 || seq < uint64(r.cfg.ItemsPerProducer); seq++ {
		if !r.producing.LoadAcquire() {
			break
		}
		p := &Parcel{Producer: id, Seq: seq}
		for r.q.Enqueue(&p) != nil {
			if !r.producing.LoadAcquire() {
				r.retired.Add(1)
				r.log.Debug().Int("producer", id).Uint64("seq", seq).Msg("parcel retired")
				return nil
			}
			w.Wait()
		}
		w.Reset()
		r.ledger.Record(p)
		r.pushed.Add(1)
	}
	r.log.Debug().Int("producer", id).Msg("producer done")
	return nil
}

func (r *run) consume(id int) error {
	w := slotq.DefaultBackoff.Waiter()
	last := make([]int64, r.cfg.Producers)
	for i := range last {
		last[i] = -1
	}

	take := func() bool {
		p, err := r.q.Dequeue()
		if err != nil {
			return false
		}
		if !p.MarkPopped() {
			r.log.Warn().Int("producer", p.Producer).Uint64("seq", p.Seq).Msg("parcel popped twice")
		}
		if int64(p.Seq) <= last[p.Producer] {
			r.reorders.Add(1)
		}
		last[p.Producer] = int64(p.Seq)
		r.popped.Add(1)
		return true
	}

	for r.consuming.LoadAcquire() {
		if take() {
			w.Reset()
			continue
		}
		w.Wait()
	}
	for r.q.HasData() {
		if take() {
			w.Reset()
			continue
		}
		w.Wait()
	}
	r.log.Debug().Int("consumer", id).Msg("consumer done")
	return nil
}

func (r *run) verify(res Result) error {
	var errs []error
	if err := r.ledger.Verify(); err != nil {
		errs = append(errs, err)
	}
	if res.Reorders > 0 {
		errs = append(errs, fmt.Errorf("%w: %d pops", ErrReordered, res.Reorders))
	}
	if r.q.HasData() || r.q.HasWork() {
		errs = append(errs, fmt.Errorf("%w: has data %v, has work %v",
			ErrNotDrained, r.q.HasData(), r.q.HasWork()))
	}
	return errors.Join(errs...)
}

// Repeat runs cfg n times, calling onIter after each run, and stops at the
// first failing run. It returns the results collected so far.
func Repeat(ctx context.Context, cfg Config, n int, logger zerolog.Logger, onIter func(i int, res Result)) ([]Result, error) {
	results := make([]Result, 0, n)
	for i := range n {
		res, err := Run(ctx, cfg, logger.With().Int("iteration", i).Logger())
		results = append(results, res)
		if onIter != nil {
			onIter(i, res)
		}
		if err != nil {
			return results, fmt.Errorf("iteration %d: %w", i, err)
		}
	}
	return results, nil
}
