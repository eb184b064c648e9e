package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"clubratings/ingestion/internal/cache"
	"clubratings/ingestion/internal/config"
	"clubratings/ingestion/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Server serves the paginated read API over the ingested data
type Server struct {
	cfg   *config.Config
	db    *repository.Database
	state *cache.RedisCache // nil when Redis is unavailable
	srv   *http.Server
}

// NewServer creates and configures the read API server. state may be nil.
func NewServer(cfg *config.Config, db *repository.Database, state *cache.RedisCache) *Server {
	s := &Server{cfg: cfg, db: db, state: state}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuth(cfg.APIToken))
		r.Get("/ratings", s.handleListRatings)
		r.Get("/clubs", s.handleListClubs)
		r.Get("/clubs/{identityKey}/ratings", s.handleClubHistory)
		r.Get("/fixtures", s.handleListFixtures)
		r.Get("/imports/status", s.handleImportStatus)
	})

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start runs the server until Shutdown is called
func (s *Server) Start() error {
	log.Info().Int("port", s.cfg.APIPort).Msg("Read API listening")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
