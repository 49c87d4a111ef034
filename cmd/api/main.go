// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Briefly HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the platform adapters (storage, narration, payments, metrics).
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/taibuivan/briefly/internal/api"
	"github.com/taibuivan/briefly/internal/billing"
	"github.com/taibuivan/briefly/internal/core/author"
	"github.com/taibuivan/briefly/internal/core/book"
	"github.com/taibuivan/briefly/internal/core/category"
	"github.com/taibuivan/briefly/internal/core/summary"
	"github.com/taibuivan/briefly/internal/dashboard"
	"github.com/taibuivan/briefly/internal/entitlement"
	"github.com/taibuivan/briefly/internal/generation"
	"github.com/taibuivan/briefly/internal/library"
	"github.com/taibuivan/briefly/internal/platform/config"
	"github.com/taibuivan/briefly/internal/platform/constants"
	"github.com/taibuivan/briefly/internal/platform/metrics"
	"github.com/taibuivan/briefly/internal/platform/migration"
	"github.com/taibuivan/briefly/internal/platform/payment"
	pgstore "github.com/taibuivan/briefly/internal/platform/postgres"
	redisstore "github.com/taibuivan/briefly/internal/platform/redis"
	"github.com/taibuivan/briefly/internal/platform/sanitize"
	"github.com/taibuivan/briefly/internal/platform/sec"
	"github.com/taibuivan/briefly/internal/platform/speech"
	"github.com/taibuivan/briefly/internal/platform/storage"
	"github.com/taibuivan/briefly/internal/users/auth"
	"github.com/taibuivan/briefly/internal/users/profile"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[Briefly] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
		slog.Bool("narration", cfg.NarrationEnabled()),
		slog.Bool("billing", cfg.BillingEnabled()),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Process context; cancelling it stops background goroutines such as
	// the rate limiter sweeper.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log, pgstore.WithApplicationName(constants.AppName))
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log, redisstore.WithClientName(constants.AppName))
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Platform Adapters ──────────────────────────────────────────────
	verifier, err := sec.NewVerifier(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthAudience)
	must(log, err, "initialize token verifier")

	objects, err := storage.New(startupCtx, cfg)
	must(log, err, "initialize object storage")

	// Optional adapters stay nil interfaces when unconfigured so that the
	// services can report the feature as unavailable.
	var narrator speech.Synthesizer
	if cfg.NarrationEnabled() {
		synthesizer, err := speech.NewGoogleSynthesizer(startupCtx, cfg.TTSCredentialsFile, speech.Voice{
			LanguageCode: cfg.TTSLanguage,
			Name:         cfg.TTSVoice,
		})
		must(log, err, "initialize text-to-speech")
		narrator = synthesizer
	} else {
		log.Warn("narration_disabled", slog.String("reason", "TTS_CREDENTIALS_FILE is not set"))
	}

	var payments payment.Provider
	if cfg.BillingEnabled() {
		payments = payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		log.Warn("billing_disabled", slog.String("reason", "STRIPE_SECRET_KEY is not set"))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(context context.Context) error {
			return pgstore.Ping(context, pool)
		},
		CheckCache: func(context context.Context) error {
			return redisstore.Ping(context, rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(verifier, auth.NewRevocationStore(rdb), log)

	billingRepository := billing.NewPostgresRepository(pool)
	statusProvider := billing.NewStatusProvider(billingRepository, rdb, cfg.SubscriptionCacheTTL, log)
	billingService := billing.NewService(billingRepository, statusProvider, payments, collector, cfg.FrontendURL, log)

	profileService := profile.NewService(profile.NewPostgresRepository(pool), objects, log)

	authorService := author.NewService(author.NewPostgresRepository(pool), log)
	categoryService := category.NewService(category.NewPostgresRepository(pool), log)
	bookRepository := book.NewPostgresRepository(pool)
	bookService := book.NewService(bookRepository, authorService, objects, collector, log)

	summaryService := summary.NewService(summary.NewPostgresRepository(pool), summary.Dependencies{
		Gate:      entitlement.NewEvaluator(statusProvider, collector),
		Status:    statusProvider,
		Sanitizer: sanitize.New(),
		Narrator:  narrator,
		Objects:   objects,
		Metrics:   collector,
	}, log)
	summaryHandler := summary.NewHandler(summaryService)

	libraryService := library.NewService(library.NewPostgresRepository(pool), log)

	queue := generation.NewQueue(rdb, cfg.GenerationStream, cfg.GenerationGroup, log)
	generationService := generation.NewService(generation.NewPostgresRepository(pool), bookRepository, queue, collector, log)

	dashboardService := dashboard.NewService(profileService, billingService, libraryService, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Metrics:    metrics.Handler(registry),
		Auth:       auth.NewHandler(authService),
		Profile:    profile.NewHandler(profileService),
		Author:     author.NewHandler(authorService),
		Category:   category.NewHandler(categoryService),
		Book:       book.NewHandler(bookService, summaryHandler.ListForBook),
		Summary:    summaryHandler,
		Library:    library.NewHandler(libraryService),
		Billing:    billing.NewHandler(billingService),
		Generation: generation.NewHandler(generationService),
		Dashboard:  dashboard.NewHandler(dashboardService),
	}

	server := api.NewServer(rootCtx, cfg, log, collector, authService, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the process-wide JSON logger tagged with the app name.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", "briefly"))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
