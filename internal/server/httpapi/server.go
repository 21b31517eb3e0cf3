// Package httpapi exposes the application over HTTP: cookie-authenticated
// JSON endpoints for accounts and profile management plus multipart upload,
// listing, download and deletion of medical documents.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/hfiles/backend/internal/logging"
	"github.com/hfiles/backend/internal/server/config"
	"github.com/hfiles/backend/internal/server/services"
	"github.com/hfiles/backend/internal/server/sessions"
)

type Server struct {
	config   *config.Config
	logger   logging.Logger
	users    *services.UserService
	files    *services.FileService
	sessions sessions.Store

	httpServer *http.Server
}

func NewServer(cfg *config.Config, logger logging.Logger, users *services.UserService, files *services.FileService, store sessions.Store) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger.With("module", "http_server"),
		users:    users,
		files:    files,
		sessions: store,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.EndpointAddrHTTP,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.config.CORSAllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
		})

		// Everything below requires a live session.
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Route("/medical-files", func(r chi.Router) {
				r.Get("/", s.handleListFiles)
				r.Post("/upload", s.handleUploadFile)
				r.Delete("/{id}", s.handleDeleteFile)
				r.Get("/{id}/download", s.handleDownloadFile)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", s.handleGetProfile)
				r.Put("/", s.handleUpdateProfile)
				r.Post("/upload-profile-image", s.handleUploadProfileImage)
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
