// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command worker drains the summary generation queue.
//
// # Startup Sequence
//
//  1. Initialize structured logger and load configuration.
//  2. Connect to PostgreSQL and Redis.
//  3. Build the text generator and the source resolver.
//  4. Run the stream consumer, the poll loop and the metrics listener until
//     SIGINT/SIGTERM.
//
// Migrations are owned by the API process; the worker only needs the schema
// to exist.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/briefly/internal/core/book"
	"github.com/taibuivan/briefly/internal/generation"
	"github.com/taibuivan/briefly/internal/platform/ai"
	"github.com/taibuivan/briefly/internal/platform/config"
	"github.com/taibuivan/briefly/internal/platform/constants"
	"github.com/taibuivan/briefly/internal/platform/metrics"
	pgstore "github.com/taibuivan/briefly/internal/platform/postgres"
	redisstore "github.com/taibuivan/briefly/internal/platform/redis"
)

const (
	workerName = "briefly-worker"

	// One stream reader, one poll loop and the processor's transactions.
	workerConns = 5
)

func main() {
	// ── 1. Logger & Configuration ─────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 2. Storage ────────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log,
		pgstore.WithApplicationName(workerName),
		pgstore.WithMaxConns(workerConns),
	)
	must(log, err, "connect to postgres")
	defer pool.Close()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log,
		redisstore.WithClientName(workerName),
		redisstore.WithPoolSize(workerConns),
	)
	must(log, err, "connect to redis")
	defer func() {
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 3. Generation Dependencies ────────────────────────────────────────
	// Without a key the worker still claims requests and fails them with an
	// explicit message instead of leaving them pending forever.
	var generator ai.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiGenerator(startupCtx, cfg.GeminiAPIKey, ai.Options{Model: cfg.GeminiModel})
		must(log, err, "initialize gemini")
		defer gemini.Close()
		generator = gemini
	} else {
		log.Warn("generator_disabled", slog.String("reason", "GEMINI_API_KEY is not set"))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	processor := generation.NewProcessor(
		generation.NewPostgresRepository(pool),
		book.NewPostgresRepository(pool),
		generator,
		generation.NewHTTPSource(constants.SourceFetchTimeout, constants.MaxSourceBytes),
		collector,
		log,
	)

	queue := generation.NewQueue(rdb, cfg.GenerationStream, cfg.GenerationGroup, log)
	worker := generation.NewWorker(queue, processor, consumerName(), cfg.GenerationPollInterval, log)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           metrics.SetupMetricsRoute(registry),
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
	}

	// ── 4. Run ────────────────────────────────────────────────────────────
	log.Info("worker_starting",
		slog.String("stream", cfg.GenerationStream),
		slog.String("group", cfg.GenerationGroup),
		slog.Duration("poll_interval", cfg.GenerationPollInterval),
	)

	group, groupCtx := errgroup.WithContext(rootCtx)

	group.Go(func() error {
		return worker.Run(groupCtx)
	})

	group.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics listener: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker_stopped_with_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("worker_stopped_cleanly")
}

// consumerName identifies this process inside the consumer group. The name
// is stable across restarts on the same host so that entries delivered but
// never acknowledged are replayed on the next start.
func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "worker"
	}
	return "worker-" + host
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", workerName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
