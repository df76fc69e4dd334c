// Package backend is the development statistics service: the player search
// endpoint the scouting client talks to, served from a local store.
package backend

import (
	"context"
	"log"
	"net/http"
	"time"

	"playerscout/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Version is reported by the welcome route
const Version = "1.0.0"

// Server routes the statistics API over a player store
type Server struct {
	router   *chi.Mux
	handler  *Handler
	requests time.Duration
}

// NewServer wires the routes. analyzer may be nil, in which case records are
// served exactly as stored.
func NewServer(store ports.PlayerRepository, analyzer ports.OverviewAnalyzer, origins []string) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		handler:  NewHandler(store, analyzer),
		requests: 30 * time.Second,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.requests))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/", s.handler.Welcome)
	s.router.Get("/health", s.handler.HealthCheck)
	s.router.Route("/api/player", func(r chi.Router) {
		r.Get("/search", s.handler.SearchPlayer)
	})
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.requests + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Backend] Statistics service listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[Backend] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
