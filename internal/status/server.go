// Package status serves the coordinator's HTTP observability surface:
// a JSON snapshot of the search state, a liveness probe, and the
// Prometheus metrics endpoint.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Itay01/Distributed-MD5-Cracker/internal/coordinator"
	"github.com/Itay01/Distributed-MD5-Cracker/internal/logger"
)

// Server provides the HTTP status interface
type Server struct {
	coord  *coordinator.Coordinator
	addr   string
	server *http.Server
	router *httprouter.Router
}

// NewServer creates a status server for the given coordinator
func NewServer(coord *coordinator.Coordinator, addr string) *Server {
	s := &Server{
		coord:  coord,
		addr:   addr,
		router: httprouter.New(),
	}

	s.setupRoutes()
	return s
}

// Start starts the HTTP server and blocks until it is shut down
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	logger.Info("Status endpoint listening on %s", s.addr)
	return s.server.ListenAndServe()
}

// Stop shuts down the HTTP server
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Router exposes the route table (for tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/status", s.handleStatus)
	s.router.GET("/healthz", s.handleHealth)
	s.router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap := s.coord.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		logger.Error("Failed to encode status snapshot: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
