// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stress

import (
	"errors"
	"fmt"
	"time"

	"code.hybscloud.com/slotq"
)

// ErrInvalidConfig is wrapped by every Config validation error.
var ErrInvalidConfig = errors.New("stress: invalid config")

// Config describes one stress run.
type Config struct {
	Producers        int           `json:"producers"`
	Consumers        int           `json:"consumers"`
	Capacity         int           `json:"capacity"` // physical slots
	Duration         time.Duration `json:"duration"` // zero runs until every quota is met
	ItemsPerProducer int           `json:"items_per_producer"` // zero means unlimited

	// OnQueue, if set, is called with the queue before workers start.
	OnQueue func(q *slotq.Queue[*Parcel]) `json:"-"`
}

// DefaultConfig is the 8 by 8 run over 100 slots for five seconds.
func DefaultConfig() Config {
	return Config{
		Producers: 8,
		Consumers: 8,
		Capacity:  100,
		Duration:  5 * time.Second,
	}
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	switch {
	case c.Producers < 1:
		return fmt.Errorf("%w: producers must be >= 1, got %d", ErrInvalidConfig, c.Producers)
	case c.Consumers < 1:
		return fmt.Errorf("%w: consumers must be >= 1, got %d", ErrInvalidConfig, c.Consumers)
	case c.Capacity < 2:
		return fmt.Errorf("%w: capacity must be >= 2, got %d", ErrInvalidConfig, c.Capacity)
	case c.Duration < 0:
		return fmt.Errorf("%w: duration must not be negative, got %s", ErrInvalidConfig, c.Duration)
	case c.ItemsPerProducer < 0:
		return fmt.Errorf("%w: items per producer must not be negative, got %d", ErrInvalidConfig, c.ItemsPerProducer)
	case c.Duration == 0 && c.ItemsPerProducer == 0:
		return fmt.Errorf("%w: need a duration or an item quota", ErrInvalidConfig)
	}
	return nil
}
