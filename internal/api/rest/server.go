package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server represents the REST API server
type Server struct {
	port   string
	server *http.Server
	router *mux.Router
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler, runHandler *RunHandler, logger *logrus.Entry) *Server {
	router := NewRouter(handler, runHandler, logger)

	return &Server{
		port:   port,
		router: router,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter registers every API route on a fresh router
func NewRouter(handler *Handler, runHandler *RunHandler, logger *logrus.Entry) *mux.Router {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Valuations
	api.HandleFunc("/players/{playerID}/values", handler.GetPlayerValues).Methods("GET")
	api.HandleFunc("/games/{gameID}/values", handler.GetGameValues).Methods("GET")
	api.HandleFunc("/features", handler.GetFeatures).Methods("GET")

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/{abbr}/features", handler.GetTeamFeatures).Methods("GET")

	// Scheduler
	api.HandleFunc("/scheduler/status", handler.GetSchedulerStatus).Methods("GET")

	// Valuation runs
	if runHandler != nil {
		api.HandleFunc("/runs", runHandler.HandleRunRequest).Methods("POST")
		api.HandleFunc("/runs", runHandler.HandleRunStatus).Methods("GET")
		api.HandleFunc("/runs/{runID}", runHandler.HandleGetRun).Methods("GET")
	}

	return router
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
