package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/moneta/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RunEvent is pushed to subscribers when a valuation run finishes
type RunEvent struct {
	Type string              `json:"type"`
	Run  *store.ValuationRun `json:"run"`
	Sent time.Time           `json:"sent_at"`
}

// Server represents the WebSocket server
type Server struct {
	port    string
	server  *http.Server
	handler http.Handler
	hub     *Hub
	logger  *logrus.Entry
}

// NewServer creates a WebSocket server and starts its hub
func NewServer(logger *logrus.Entry) *Server {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	logger = logger.WithField("component", "websocket")

	s := &Server{
		hub:    NewHub(logger),
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/runs", s.handleRuns)
	mux.HandleFunc("/ws/health", s.handleHealth)
	s.handler = mux

	go s.hub.Run()
	return s
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the WebSocket server
func (s *Server) Start(port string) error {
	s.port = port
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// handleRuns handles WebSocket connections for run notifications
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// ClientCount returns the number of connected subscribers
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// RunFinished broadcasts a finished run to every subscriber
func (s *Server) RunFinished(_ context.Context, run *store.ValuationRun) {
	payload, err := json.Marshal(RunEvent{Type: "run_finished", Run: run, Sent: time.Now().UTC()})
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode run event")
		return
	}
	s.hub.Broadcast(payload)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
