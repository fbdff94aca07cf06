// Package server is the composition root: it wires the store driver, the
// services, the handlers and the routes together, and owns startup and
// graceful shutdown.
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

	"github.com/ahh-git/DIU-CPC/internal/auth"
	"github.com/ahh-git/DIU-CPC/internal/handler"
	"github.com/ahh-git/DIU-CPC/internal/middleware"
	"github.com/ahh-git/DIU-CPC/internal/repository"
	"github.com/ahh-git/DIU-CPC/internal/repository/jsonfile"
	"github.com/ahh-git/DIU-CPC/internal/repository/sqlite"
	"github.com/ahh-git/DIU-CPC/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port        int
	StoreDriver string // "json" (default) or "sqlite"
	StorePath   string
	EmailDomain string // required suffix, e.g. "@diu.edu.bd"
	AdminKey    string // shared admin secret; empty disables the console
	BKashNumber string // payment recipient shown to members
	JWTSecret   string
}

// Server owns the router and, when the sqlite driver is in use, the
// database handle that must be closed on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	closer interface{ Close() error } // nil for the jsonfile driver
}

// New assembles the dependency graph: store driver → services → handlers →
// routes. Each layer only receives what it needs; handlers never see the
// repository, services never see HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	var (
		users  repository.UserRepository
		closer interface{ Close() error }
	)
	switch cfg.StoreDriver {
	case "", "json":
		store, err := jsonfile.New(cfg.StorePath, logger)
		if err != nil {
			return nil, fmt.Errorf("opening json store: %w", err)
		}
		users = store
	case "sqlite":
		db, err := sqlite.New(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		users = db
		closer = db
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		closer: closer,
	}
	s.setupRoutes(users, tokens)
	return s, nil
}

func (s *Server) setupRoutes(users repository.UserRepository, tokens *auth.TokenService) {
	passwords := auth.NewPasswordService()

	accounts := service.NewAccountService(users, passwords, s.config.EmailDomain, s.logger)
	registration := service.NewRegistrationService(users, s.config.BKashNumber, s.logger)
	admins := service.NewAdminService(users, s.config.AdminKey, s.logger)
	match := service.NewMatchService(users, s.logger)

	authHandler := handler.NewAuthHandler(accounts, tokens, s.logger)
	registrationHandler := handler.NewRegistrationHandler(registration, accounts, s.logger)
	profileHandler := handler.NewProfileHandler(match, s.logger)
	adminHandler := handler.NewAdminHandler(admins, tokens, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/admin/login", adminHandler.HandleLogin)

		// Member routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Get("/registration", registrationHandler.HandleStatus)
			r.Post("/registration/id", registrationHandler.HandleSubmitID)
			r.Delete("/registration/id", registrationHandler.HandleEditID)
			r.Post("/registration/payment", registrationHandler.HandleSubmitPayment)
			r.Put("/profile/bio", profileHandler.HandleUpdateBio)
			r.Get("/match", profileHandler.HandleSuggestTeammate)
		})

		// Admin console
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(tokens))

			r.Get("/admin/users", adminHandler.HandleListAll)
			r.Get("/admin/pending", adminHandler.HandleListPending)
			r.Get("/admin/stats", adminHandler.HandleStats)
			r.Post("/admin/approve", adminHandler.HandleApprove)
			r.Post("/admin/remove", adminHandler.HandleRemove)
		})
	})
}

// Router exposes the configured routes, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the store handle.
func (s *Server) Start() error {
	defer func() {
		if s.closer != nil {
			if err := s.closer.Close(); err != nil {
				s.logger.Error("closing store", slog.String("error", err.Error()))
			}
		}
	}()

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
			slog.String("store", s.config.StorePath),
			slog.String("driver", s.config.StoreDriver),
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
