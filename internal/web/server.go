// Package web exposes the import wizard as a JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/JonMunkholm/txnimport/internal/config"
	"github.com/JonMunkholm/txnimport/internal/core"
	"github.com/JonMunkholm/txnimport/internal/logging"
	mw "github.com/JonMunkholm/txnimport/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the import API.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	sessions *sessionStore
	limiter  *core.ImportLimiter
	rate     *rateLimiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires the routes around service.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		sessions: newSessionStore(cfg.Upload.SessionTTL, cfg.Upload.MaxSessions),
		limiter:  core.NewImportLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.rate = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.rate.middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/imports", s.handleOpenImport)
		r.Route("/imports/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetImport)
			r.Delete("/", s.handleDiscardImport)
			r.Put("/mapping", s.handleApplyMapping)
			r.Post("/transform", s.handleTransform)
			r.Patch("/candidates/{index}", s.handlePatchCandidate)
			r.Post("/commit", s.handleCommit)
		})

		r.Get("/configurations", s.handleListConfigurations)
		r.Delete("/configurations", s.handleDeleteConfiguration)

		r.Get("/history", s.handleHistory)
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	logging.FromContext(context.Background()).Info("server listening", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown waits for running imports, then stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	if st := s.limiter.Status(); st.Active > 0 {
		logger.Info("waiting for imports to finish", "active", st.Active)
		if err := s.limiter.WaitForDrain(ctx); err != nil {
			logger.Warn("imports did not finish in time", "error", err)
		}
	}
	if s.rate != nil {
		s.rate.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
