// Package server wires handlers, middleware, and routes together and owns
// the HTTP server lifecycle. It is the composition root: every dependency
// is constructed here, and each layer receives only the interfaces it
// needs.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/maragia/motalk-server/internal/auth"
	"github.com/maragia/motalk-server/internal/handler"
	"github.com/maragia/motalk-server/internal/middleware"
	sqliteRepo "github.com/maragia/motalk-server/internal/repository/sqlite"
	"github.com/maragia/motalk-server/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port               int
	DBPath             string
	UploadsDir         string
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

// Server owns the router, the database connection, and the token service
// used by the auth middleware. The database is closed during shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	tokens *auth.TokenService
}

// New assembles the full dependency chain: database → services →
// handlers → routes. Returns an error rather than exiting so main can
// decide what to do.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		tokens: tokens,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// Route map:
//
//	POST /signup                    register (public)
//	POST /login                     email/password login (public)
//	POST /google-login              Google ID-token login (public)
//	GET  /auth/google/login         browser OAuth entry (public)
//	GET  /auth/google/callback      browser OAuth return (public)
//	POST /logout                    clear session cookie (public)
//	GET  /api/me                    own profile (auth)
//	POST /api/me/image              upload profile image (auth)
//	GET  /api/me/image              fetch profile image (auth)
//	GET  /api/news                  list feed (auth)
//	GET  /api/news/{id}             get feed item (auth)
//	POST /api/news                  create feed item (admin)
//	PUT  /api/news/{id}             update feed item (admin)
//	DELETE /api/news/{id}           delete feed item (admin)
//	POST /api/news/{id}/image       attach feed image (admin)
//	GET  /api/admin/users           list users (admin)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordService()

	// Google sign-in needs an OAuth client ID. Without one the server still
	// runs; the Google routes are simply not registered.
	var (
		verifier *auth.GoogleVerifier
		google   *auth.GoogleProvider
	)
	if s.config.GoogleClientID != "" {
		var err error
		verifier, err = auth.NewGoogleVerifier(s.config.GoogleClientID)
		if err != nil {
			return fmt.Errorf("creating Google verifier: %w", err)
		}
		google = auth.NewGoogleProvider(
			s.config.GoogleClientID,
			s.config.GoogleClientSecret,
			s.config.GoogleCallbackURL,
		)
	} else {
		s.logger.Warn("GOOGLE_CLIENT_ID not set, Google sign-in routes disabled")
	}

	authService := service.NewAuthService(s.db.Users(), s.tokens, passwords, s.logger)
	newsService := service.NewNewsService(s.db.News(), s.logger)

	authHandler := handler.NewAuthHandler(authService, verifier, google, s.logger)
	newsHandler := handler.NewNewsHandler(newsService)
	uploadHandler := handler.NewUploadHandler(authService, newsService, s.config.UploadsDir, s.logger)

	// Public routes.
	s.router.Post("/signup", authHandler.HandleSignup)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Post("/logout", authHandler.HandleLogout)
	if verifier != nil {
		s.router.Post("/google-login", authHandler.HandleGoogleLogin)
		s.router.Get("/auth/google/login", authHandler.HandleGoogleWebLogin)
		s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	}

	// Authenticated routes.
	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(s.tokens))

		r.Get("/me", authHandler.HandleMe)
		r.Post("/me/image", uploadHandler.HandleUploadProfileImage)
		r.Get("/me/image", uploadHandler.HandleGetProfileImage)

		r.Get("/news", newsHandler.HandleList)
		r.Get("/news/{id}", newsHandler.HandleGet)

		// Admin-only routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin())

			r.Post("/news", newsHandler.HandleCreate)
			r.Put("/news/{id}", newsHandler.HandleUpdate)
			r.Delete("/news/{id}", newsHandler.HandleDelete)
			r.Post("/news/{id}/image", uploadHandler.HandleAttachNewsImage)

			r.Get("/admin/users", authHandler.HandleListUsers)
		})
	})

	return nil
}

// Router exposes the configured router for httptest-based tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
