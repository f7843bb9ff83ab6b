// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-notevault.
//
// go-notevault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeremyhahn/go-notevault/internal/note"
	"github.com/jeremyhahn/go-notevault/internal/storage"
	"github.com/jeremyhahn/go-notevault/pkg/metrics"
	"github.com/jeremyhahn/go-notevault/pkg/passkey"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Port is the TCP port to listen on.
	Port int

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum time to wait for the next request on a
	// keep-alive connection.
	IdleTimeout time.Duration

	// SecureCookies controls the Secure flag on issued cookies. Disable
	// only for plain-HTTP development.
	SecureCookies bool
}

// DefaultConfig returns a server configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:          8443,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   120 * time.Second,
		SecureCookies: true,
	}
}

// Server is the notevault HTTP server.
type Server struct {
	config   *Config
	passkeys *passkey.Service
	notes    *note.Service
	store    storage.Store
	logger   *slog.Logger
	router   chi.Router
	server   *http.Server
}

// ServerParams contains the dependencies required to create a Server.
type ServerParams struct {
	Config   *Config
	Passkeys *passkey.Service
	Notes    *note.Service
	Store    storage.Store
	Logger   *slog.Logger
}

// NewServer creates a new HTTP server with the given dependencies.
func NewServer(params ServerParams) (*Server, error) {
	if params.Passkeys == nil {
		return nil, fmt.Errorf("passkey service is required")
	}
	if params.Notes == nil {
		return nil, fmt.Errorf("note service is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	config := params.Config
	if config == nil {
		config = DefaultConfig()
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   config,
		passkeys: params.Passkeys,
		notes:    params.Notes,
		store:    params.Store,
		logger:   logger,
	}
	s.setupRouter()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s, nil
}

// setupRouter configures all routes and middleware.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(s.RecoveryMiddleware())
	r.Use(s.CorrelationMiddleware())
	r.Use(s.LoggingMiddleware())
	r.Use(metrics.HTTPMiddleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register-request", s.handleRegisterRequest)
		r.Post("/verify-registration", s.handleVerifyRegistration)
		r.Get("/login-request", s.handleLoginRequest)
		r.Post("/verify-login", s.handleVerifyLogin)
		r.Get("/logout", s.handleLogout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.SessionMiddleware())

		r.Get("/me", s.handleMe)
		r.Get("/me/quick-note", s.handleGetQuickNote)
		r.Put("/me/quick-note", s.handlePutQuickNote)
		r.Post("/me/promote-quick-note", s.handlePromoteQuickNote)

		r.Route("/note", func(r chi.Router) {
			r.Post("/create", s.handleCreateNote)
			r.Get("/tree", s.handleTree)
			r.Get("/categories", s.handleCategories)
			r.Post("/create-category", s.handleCreateCategory)
			r.Get("/{noteID}", s.handleGetNote)
			r.Put("/{noteID}", s.handleUpdateNote)
			r.Delete("/{noteID}", s.handleDeleteNote)
		})
	})

	s.router = r
}

// Handler returns the server's root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests. It blocks until the server
// is stopped or fails.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", slog.Int("port", s.config.Port))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server, waiting for in-flight requests
// to complete or the context to expire.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth reports liveness and storage reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("Health check failed", slog.Any("error", err))
		s.writeJSON(w, HealthResponse{Status: "unavailable"}, http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, HealthResponse{Status: "ok"}, http.StatusOK)
}
