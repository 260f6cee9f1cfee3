// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"code.hybscloud.com/slotq"
	"code.hybscloud.com/slotq/internal/logging"
	"code.hybscloud.com/slotq/internal/report"
	"code.hybscloud.com/slotq/internal/stress"
	"code.hybscloud.com/slotq/metrics"
)

const metricsShutdownTimeout = 5 * time.Second

func runStress(cmd *cobra.Command, o *options) error {
	logger := logging.Init(logging.Config{
		Format:    o.LogFormat,
		Level:     o.LogLevel,
		Component: "slotq-stress",
		Out:       cmd.ErrOrStderr(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	live := &liveQueue{}
	cfg := o.config()
	cfg.OnQueue = live.set

	if o.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(metrics.NewCollector("stress", live))
		startMetricsServer(ctx, o.MetricsAddr, reg, logger)
	}

	var bar *progressbar.ProgressBar
	if o.Progress {
		bar = progressbar.NewOptions(o.Iterations,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("stress"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
		)
	}

	session := report.Session{
		ID:     uuid.NewString(),
		Time:   time.Now().UTC(),
		System: report.GatherSystemInfo(ctx),
	}
	logger.Info().
		Str("session", session.ID).
		Int("iterations", o.Iterations).
		Str("cpu", session.System.CPUModel).
		Int("gomaxprocs", session.System.GOMAXPROCS).
		Msg("stress session started")

	var failed int
	results, runErr := stress.Repeat(ctx, cfg, o.Iterations, logger, func(i int, res stress.Result) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})
	for i, res := range results {
		var err error
		if runErr != nil && i == len(results)-1 {
			err = runErr
			failed++
		}
		session.Runs = append(session.Runs, report.NewRun(res, err))
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := report.WriteTable(cmd.OutOrStdout(), session); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if o.JSONFile != "" {
		if err := report.Append(o.JSONFile, session); err != nil {
			return err
		}
		logger.Info().Str("file", o.JSONFile).Msg("session appended")
	}

	logger.Info().
		Str("session", session.ID).
		Int("runs", len(session.Runs)).
		Int("failed", failed).
		Msg("stress session finished")
	return runErr
}

// liveQueue exposes whichever queue the current run is using to the
// metrics collector. Between runs it reports the last queue.
type liveQueue struct {
	q atomic.Pointer[slotq.Queue[*stress.Parcel]]
}

func (l *liveQueue) set(q *slotq.Queue[*stress.Parcel]) { l.q.Store(q) }

func (l *liveQueue) Stats() slotq.Stats {
	if q := l.q.Load(); q != nil {
		return q.Stats()
	}
	return slotq.Stats{}
}

func (l *liveQueue) HasData() bool {
	q := l.q.Load()
	return q != nil && q.HasData()
}

func (l *liveQueue) HasWork() bool {
	q := l.q.Load()
	return q != nil && q.HasWork()
}

func (l *liveQueue) Cap() int {
	if q := l.q.Load(); q != nil {
		return q.Cap()
	}
	return 0
}

func startMetricsServer(ctx context.Context, addr string, reg *prometheus.Registry, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn().Err(err).Msg("Failed to shut down metrics server cleanly")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("Metrics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn().Err(err).Msg("Metrics server stopped unexpectedly")
		}
	}()
}
