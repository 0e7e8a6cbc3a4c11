package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/voyagehq/journeyd/internal/chat"
	"github.com/voyagehq/journeyd/internal/domain"
	"github.com/voyagehq/journeyd/internal/marketplace"
	"github.com/voyagehq/journeyd/internal/mutator"
)

// Store interface for journey persistence operations
type Store interface {
	GetJourney(ctx context.Context, id string) (domain.Journey, error)
	CreateJourney(ctx context.Context, title string) (domain.Journey, error)
	ListJourneys(ctx context.Context) ([]domain.Summary, error)
}

// Server is the HTTP API server
type Server struct {
	store   Store
	runner  *mutator.Runner
	chat    *chat.Service
	catalog *marketplace.Catalog
	addr    string
	mux     *http.ServeMux
	sseHub  *SSEHub
}

// NewServer creates a new API server
func NewServer(store Store, runner *mutator.Runner, chatSvc *chat.Service, catalog *marketplace.Catalog, addr string) *Server {
	s := &Server{
		store:   store,
		runner:  runner,
		chat:    chatSvc,
		catalog: catalog,
		addr:    addr,
		mux:     http.NewServeMux(),
		sseHub:  NewSSEHub(),
	}
	s.setupRoutes()
	go s.sseHub.Run()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/status", s.statusHandler())
	s.mux.HandleFunc("/api/journeys", s.journeysHandler())
	s.mux.HandleFunc("/api/journeys/", s.journeyHandler())
	s.mux.HandleFunc("/api/agents", s.listAgentsHandler())
	s.mux.HandleFunc("/api/agents/", s.agentActionHandler())
	s.mux.HandleFunc("/api/events", s.sseHandler())
}

// Handler returns the server's root handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return http.ListenAndServe(s.addr, s.mux)
}

// Broadcast sends an event to all SSE clients
func (s *Server) Broadcast(event SSEEvent) {
	s.sseHub.Broadcast(event)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// errorStatus maps domain error kinds onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case err == domain.ErrMutationTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
