// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/briefly/internal/billing"
	"github.com/taibuivan/briefly/internal/core/author"
	"github.com/taibuivan/briefly/internal/core/book"
	"github.com/taibuivan/briefly/internal/core/category"
	"github.com/taibuivan/briefly/internal/core/summary"
	"github.com/taibuivan/briefly/internal/dashboard"
	"github.com/taibuivan/briefly/internal/generation"
	"github.com/taibuivan/briefly/internal/library"
	"github.com/taibuivan/briefly/internal/platform/config"
	"github.com/taibuivan/briefly/internal/platform/constants"
	"github.com/taibuivan/briefly/internal/platform/middleware"
	"github.com/taibuivan/briefly/internal/users/auth"
	"github.com/taibuivan/briefly/internal/users/profile"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here and a mount in [NewServer].
type Handlers struct {
	// Liveness is the /health handler and always returns 200 if the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler and returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Metrics exposes the Prometheus registry on /metrics.
	Metrics http.Handler

	// Auth exposes the caller session and logout.
	Auth *auth.Handler

	// Profile serves /me and the public /profiles view.
	Profile *profile.Handler

	// Author and Category are the catalogue reference data.
	Author   *author.Handler
	Category *category.Handler

	// Book handles the catalogue and nests the book's summaries.
	Book *book.Handler

	// Summary serves reading, search and narration.
	Summary *summary.Handler

	// Library covers reading progress, bookmarks and collections.
	Library *library.Handler

	// Billing covers plans, checkout, cancellation and the payment webhook.
	Billing *billing.Handler

	// Generation is the admin view of AI summary requests.
	Generation *generation.Handler

	// Dashboard aggregates the caller's home screen.
	Dashboard *dashboard.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, observer middleware.RequestObserver, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.Metrics(observer))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/me", h.Profile.Routes())
		api.Mount("/profiles", h.Profile.PublicRoutes())

		api.Mount("/authors", h.Author.Routes())
		api.Mount("/categories", h.Category.Routes())
		api.Mount("/books", h.Book.Routes())
		api.Mount("/summaries", h.Summary.Routes())
		api.Get("/search", h.Summary.Search)

		api.Mount("/library", h.Library.Routes())
		api.Mount("/collections", h.Library.PublicRoutes())
		api.Mount("/billing", h.Billing.Routes())
		api.Mount("/dashboard", h.Dashboard.Routes())

		api.Mount("/admin/generation-requests", h.Generation.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the fully wired router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
