// Package server exposes the identify pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ppiankov/trackmatch/internal/model"
)

// Identifier is the part of the pipeline the API drives
type Identifier interface {
	Identify(ctx context.Context, url string) (*model.Report, error)
	Run(ctx context.Context, page model.Page) *model.Report
	Select(ctx context.Context, candidate model.SearchCandidate) (*model.AddResult, error)
}

// Server is the HTTP server for the trackmatch API
type Server struct {
	pipeline Identifier
	config   *model.ServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies
func NewServer(pipeline Identifier, cfg *model.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		pipeline: pipeline,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/identify", s.handleIdentify)
	r.Post("/api/v1/resolve", s.handleResolve)
	r.Post("/api/v1/select", s.handleSelect)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
