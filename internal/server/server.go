// Package server is the composition root: it wires the store, services,
// handlers, and middleware into a chi router and runs the HTTP server with
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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sakif/event-planner/internal/auth"
	"github.com/sakif/event-planner/internal/handler"
	"github.com/sakif/event-planner/internal/metrics"
	"github.com/sakif/event-planner/internal/middleware"
	sqliteRepo "github.com/sakif/event-planner/internal/repository/sqlite"
	"github.com/sakif/event-planner/internal/service"
)

// Config holds server configuration, loaded from the environment by
// cmd/server.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
}

// Server owns the router and the resources that must be released on
// shutdown: the database connection and the rate limiter's cleanup
// goroutine.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	limiter *middleware.RateLimiter
}

// New assembles the full dependency chain. Each layer receives only what
// it needs: services get repository interfaces, handlers get services,
// the router gets handlers.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		limiter: middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(), logger),
	}

	s.setupRoutes(tokens)

	return s, nil
}

// Handler exposes the router, mainly for tests that drive the full stack
// through httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(tokens *auth.TokenService) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Global middleware, in execution order.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(collector))

	passwords := auth.NewPasswordService()

	notificationService := service.NewNotificationService(s.db, s.logger)
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, s.db, passwords, notificationService, s.logger)
	eventService := service.NewEventService(s.db, notificationService, s.logger)
	postService := service.NewPostService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, collector, s.logger)
	userHandler := handler.NewUserHandler(userService, notificationService, s.logger)
	eventHandler := handler.NewEventHandler(eventService, postService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db)
	throttled := s.limiter.Middleware()

	s.router.Handle("/metrics", metrics.Handler(registry))

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Credential endpoints run before authentication and are
			// the bruteforce surface, hence the rate limit.
			r.With(throttled).Post("/signup", authHandler.HandleSignup)
			r.With(throttled).Post("/login", authHandler.HandleLogin)
			r.Get("/refresh", authHandler.HandleRefresh)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", authHandler.HandleLogout)
				r.Get("/current", authHandler.HandleCurrent)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.HandleList)
			r.Get("/{id}", eventHandler.HandleGet)
			r.Get("/{id}/posts", eventHandler.HandleListPosts)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", eventHandler.HandleCreate)
				r.Put("/{id}", eventHandler.HandleUpdate)
				r.Delete("/{id}", eventHandler.HandleDelete)
				r.Post("/{id}/participate", eventHandler.HandleParticipate)
				r.Post("/{id}/posts", eventHandler.HandleCreatePost)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/{id}", postHandler.HandleUpdate)
			r.Delete("/{id}", postHandler.HandleDelete)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(requireAuth)
			r.Patch("/", userHandler.HandleUpdate)
			r.Delete("/", userHandler.HandleDelete)
			r.Get("/friends", userHandler.HandleListFriends)
			r.Post("/friends", userHandler.HandleAddFriend)
			r.Delete("/friends/{id}", userHandler.HandleRemoveFriend)
			r.Get("/notifications", userHandler.HandleListNotifications)
		})

		r.With(requireAuth).Get("/users/{id}", userHandler.HandleGet)
	})
}

// Close releases the database connection and the limiter's cleanup
// goroutine. Start calls it on its own; tests that never Start call it
// directly.
func (s *Server) Close() {
	s.limiter.Stop()
	s.db.Close()
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests, release resources.
func (s *Server) Start() error {
	defer s.Close()

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
