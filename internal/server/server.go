// Package server exposes the analysis pipeline over HTTP.
//
// Routes:
//
//	GET  /          service info and endpoint list
//	POST /query     load a road network snapshot for an extent
//	POST /junction  analyze junctions in the loaded extent and persist results
//	POST /network   evaluate compliance criteria and return the largest network
//	GET  /healthz   liveness probe
//
// A /query call establishes the working extent: it fetches the snapshot
// and clears previously stored analysis documents. /junction and
// /network operate on that extent.
package server

import (
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	apperrors "github.com/urbanpilot/oddnet/pkg/errors"
	"github.com/urbanpilot/oddnet/pkg/pipeline"
	"github.com/urbanpilot/oddnet/pkg/provider"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger

	// Defaults applies operator configuration (thresholds, predefined
	// criteria) to every request; request bodies override per-field.
	defaults pipeline.Options

	mu     sync.RWMutex
	graph  *roadnet.Graph
	extent *provider.Extent
}

// New creates a server around the given runner.
func New(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:   runner,
		logger:   logger,
		defaults: defaults,
	}
}

// Routes builds the chi router with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(s.logger))
	r.Use(logMiddleware(s.logger))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Post("/query", s.handleQuery)
	r.Post("/junction", s.handleJunction)
	r.Post("/network", s.handleNetwork)
	return r
}

// loadedGraph returns the working graph, or an error when no extent
// has been loaded yet.
func (s *Server) loadedGraph() (*roadnet.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.graph == nil {
		return nil, apperrors.New(apperrors.ErrCodeExtentNotLoaded, "no extent loaded, call /query first")
	}
	return s.graph, nil
}

// setGraph installs a new working graph and extent.
func (s *Server) setGraph(g *roadnet.Graph, extent provider.Extent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	s.extent = &extent
}
