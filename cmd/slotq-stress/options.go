// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"code.hybscloud.com/slotq/internal/stress"
)

const (
	envPrefix      = "SLOTQ_"
	defaultEnvFile = ".env"
)

// options holds the flags of the run command.
type options struct {
	Producers   int
	Consumers   int
	Capacity    int
	Duration    time.Duration
	Items       int
	Iterations  int
	JSONFile    string
	MetricsAddr string
	LogLevel    string
	LogFormat   string
	Progress    bool
	EnvFile     string
}

// defaultOptions mirrors the classic run: 8 producers and 8 consumers on
// 100 slots for five seconds, repeated 24 times.
func defaultOptions() *options {
	d := stress.DefaultConfig()
	return &options{
		Producers:  d.Producers,
		Consumers:  d.Consumers,
		Capacity:   d.Capacity,
		Duration:   d.Duration,
		Iterations: 24,
		LogLevel:   "info",
		LogFormat:  "auto",
	}
}

func (o *options) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&o.Producers, "producers", "p", o.Producers, "producer goroutines")
	f.IntVarP(&o.Consumers, "consumers", "c", o.Consumers, "consumer goroutines")
	f.IntVarP(&o.Capacity, "capacity", "n", o.Capacity, "physical slots; the queue holds one less")
	f.DurationVarP(&o.Duration, "duration", "d", o.Duration, "length of each run (0 runs until the item quota is met)")
	f.IntVar(&o.Items, "items", o.Items, "items per producer (0 means unlimited)")
	f.IntVarP(&o.Iterations, "iterations", "i", o.Iterations, "number of runs")
	f.StringVar(&o.JSONFile, "json", o.JSONFile, "append the session to this JSON file")
	f.StringVar(&o.MetricsAddr, "metrics-addr", o.MetricsAddr, "serve Prometheus metrics on this address while running")
	f.StringVar(&o.LogLevel, "log-level", o.LogLevel, "trace, debug, info, warn, error or disabled")
	f.StringVar(&o.LogFormat, "log-format", o.LogFormat, "json, console or auto")
	f.BoolVar(&o.Progress, "progress", o.Progress, "show a progress bar over iterations")
	f.StringVar(&o.EnvFile, "env-file", o.EnvFile, "load SLOTQ_ variables from this file (default .env if present)")
}

// load applies the environment to flags the user did not set and
// validates the result. An explicit --env-file must exist; the default
// .env is optional. Variables already in the environment win over the
// file.
func (o *options) load(cmd *cobra.Command) error {
	if o.EnvFile == "" {
		o.EnvFile = os.Getenv(envPrefix + "ENV_FILE")
	}
	switch {
	case o.EnvFile != "":
		if err := godotenv.Load(o.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", o.EnvFile, err)
		}
	default:
		if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", defaultEnvFile, err)
		}
	}

	var errs []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "help" || f.Name == "version" {
			return
		}
		name := envName(f.Name)
		v, ok := os.LookupEnv(name)
		if !ok {
			return
		}
		if err := f.Value.Set(v); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", name, v, err))
		}
	})
	if err := errors.Join(errs...); err != nil {
		return err
	}

	if o.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be >= 1, got %d", stress.ErrInvalidConfig, o.Iterations)
	}
	return o.config().Validate()
}

func (o *options) config() stress.Config {
	return stress.Config{
		Producers:        o.Producers,
		Consumers:        o.Consumers,
		Capacity:         o.Capacity,
		Duration:         o.Duration,
		ItemsPerProducer: o.Items,
	}
}

// envName maps a flag name to its variable: metrics-addr → SLOTQ_METRICS_ADDR.
func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}
