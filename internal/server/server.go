// Package server exposes lead scoring and daily suggestions over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/config"
	"github.com/sells-group/lead-cli/internal/pipeline"
	"github.com/sells-group/lead-cli/internal/suggest"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators a Server routes to.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Selector *suggest.Selector
	// Metrics may be nil. When set, Gatherer serves /metrics.
	Metrics  *Metrics
	Gatherer prometheus.Gatherer
}

// Server is the HTTP surface. Each request is handled independently; no
// lead data is kept between requests.
type Server struct {
	cfg      config.ServerConfig
	pipeline *pipeline.Pipeline
	selector *suggest.Selector
	metrics  *Metrics
	gatherer prometheus.Gatherer
}

// New creates a Server.
func New(cfg config.ServerConfig, deps Deps) *Server {
	return &Server{
		cfg:      cfg,
		pipeline: deps.Pipeline,
		selector: deps.Selector,
		metrics:  deps.Metrics,
		gatherer: deps.Gatherer,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(RequestID)
	r.Use(Logger(s.metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(api chi.Router) {
		api.Use(RateLimit(s.cfg.RateLimit))
		api.Post("/leads/score", s.handleScore)
		api.Post("/leads/manual", s.handleManual)
		api.Get("/suggestions", s.handleSuggestions)
		api.Get("/options", s.handleOptions)
	})

	return r
}

// Run serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server: listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- eris.Wrap(err, "server: listen")
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return <-errCh
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
