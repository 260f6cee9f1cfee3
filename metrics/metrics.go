// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports slotq queue counters to Prometheus.
//
//	q := slotq.Build[Job](slotq.New(1024).Stats())
//	prometheus.MustRegister(metrics.NewCollector("jobs", q))
//
// Counters are read from [slotq.Queue.Stats] at scrape time, so the queue
// must be built with counters enabled for them to move.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"code.hybscloud.com/slotq"
)

const namespace = "slotq"

// Source is the part of a queue the collector reads.
type Source interface {
	Stats() slotq.Stats
	HasData() bool
	HasWork() bool
	Cap() int
}

var _ Source = (*slotq.Queue[int])(nil)

// Collector reads one queue on every scrape.
type Collector struct {
	src Source

	pushed    *prometheus.Desc
	popped    *prometheus.Desc
	full      *prometheus.Desc
	empty     *prometheus.Desc
	contended *prometheus.Desc
	busy      *prometheus.Desc
	items     *prometheus.Desc
	capacity  *prometheus.Desc
	hasData   *prometheus.Desc
	hasWork   *prometheus.Desc
}

// NewCollector returns a collector for src. Every metric carries a
// constant queue label set to name.
func NewCollector(name string, src Source) *Collector {
	labels := prometheus.Labels{"queue": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", metric), help, nil, labels)
	}
	return &Collector{
		src:       src,
		pushed:    desc("pushed_total", "Items successfully pushed."),
		popped:    desc("popped_total", "Items successfully popped."),
		full:      desc("full_total", "Pushes refused because the queue was full."),
		empty:     desc("empty_total", "Pops refused because the queue was empty."),
		contended: desc("lock_contended_total", "Failed attempts to take the exclusion flag."),
		busy:      desc("slot_busy_total", "Slot claims retried because the slot was still owned."),
		items:     desc("items", "Items pushed and not yet popped."),
		capacity:  desc("capacity", "Usable capacity of the queue."),
		hasData:   desc("has_data", "1 if committed items are waiting to be popped."),
		hasWork:   desc("has_work", "1 if any push or pop is in flight or any item is unread."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pushed
	ch <- c.popped
	ch <- c.full
	ch <- c.empty
	ch <- c.contended
	ch <- c.busy
	ch <- c.items
	ch <- c.capacity
	ch <- c.hasData
	ch <- c.hasWork
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()

	counter(ch, c.pushed, s.Pushed)
	counter(ch, c.popped, s.Popped)
	counter(ch, c.full, s.Full)
	counter(ch, c.empty, s.Empty)
	counter(ch, c.contended, s.Contended)
	counter(ch, c.busy, s.Busy)

	var items float64
	if s.Pushed > s.Popped {
		items = float64(s.Pushed - s.Popped)
	}
	gauge(ch, c.items, items)
	gauge(ch, c.capacity, float64(c.src.Cap()))
	gauge(ch, c.hasData, boolValue(c.src.HasData()))
	gauge(ch, c.hasWork, boolValue(c.src.HasWork()))
}

func counter(ch chan<- prometheus.Metric, d *prometheus.Desc, v uint64) {
	ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
}

func gauge(ch chan<- prometheus.Metric, d *prometheus.Desc, v float64) {
	ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
