// Package server implements the flowgrid HTTP layout service.
//
// The service exposes the layout engine to out-of-process consumers: a
// client POSTs a graph document plus options and receives the computed
// node anchors and edge polylines. Responses are cached through pkg/cache
// keyed by a hash of the request, so repeated layouts of an unchanged
// graph are served without running the engine.
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/flowgrid-dev/flowgrid/pkg/cache"
	"github.com/flowgrid-dev/flowgrid/pkg/layout"
)

// cacheTTL bounds how long a computed layout stays cached. Layouts are
// deterministic, so the TTL only caps storage growth.
const cacheTTL = 24 * time.Hour

// Server holds the service dependencies: a logger, a result cache, and
// the default layout options applied when a request carries none.
type Server struct {
	logger   *log.Logger
	cache    cache.Cache
	defaults layout.Options
}

// New creates a server. A nil cache disables caching; a nil logger
// discards output.
func New(logger *log.Logger, c cache.Cache, defaults layout.Options) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Server{
		logger:   logger,
		cache:    cache.NewScoped(c, "flowgrid"),
		defaults: defaults,
	}
}

// Handler returns the service's HTTP handler with all routes and
// middleware attached.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.recoverPanics)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/layout", s.handleLayout)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
