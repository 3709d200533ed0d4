// Package httpapi exposes the orchestrator over HTTP. It owns the message
// transcript for each conversation; the orchestrator persists only the state
// snapshot, so the transcript lives here next to the transport.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/windrose-ai/windrose"
	"github.com/windrose-ai/windrose/internal/logging"
	"github.com/windrose-ai/windrose/pkg/domain"
)

// Server handles the conversation HTTP API.
type Server struct {
	orc    *windrose.Orchestrator
	logger *slog.Logger

	mu        sync.Mutex
	histories map[string][]domain.Message
}

// NewServer wraps an orchestrator.
func NewServer(orc *windrose.Orchestrator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		orc:       orc,
		logger:    logger,
		histories: make(map[string][]domain.Message),
	}
}

// Handler builds the chi router for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/conversations/{conversationID}", func(r chi.Router) {
		r.Post("/messages", s.postMessage)
		r.Get("/", s.getConversation)
		r.Delete("/", s.deleteConversation)
	})

	return r
}

type messageRequest struct {
	CustomerID string `json:"customer_id,omitempty"`
	Message    string `json:"message"`
}

type messageResponse struct {
	Response    string           `json:"response"`
	Suggestions []string         `json:"suggestions,omitempty"`
	State       *domain.Snapshot `json:"state"`
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	s.mu.Lock()
	history := s.histories[conversationID]
	s.mu.Unlock()

	resp, err := s.orc.ProcessTurn(r.Context(), windrose.TurnRequest{
		ConversationID: conversationID,
		CustomerID:     req.CustomerID,
		Message:        req.Message,
		History:        history,
	})
	if err != nil {
		s.logger.Error("turn failed", "conversation_id", conversationID, "err", err)
		writeError(w, http.StatusInternalServerError, "could not process message")
		return
	}

	s.mu.Lock()
	s.histories[conversationID] = resp.Messages
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, messageResponse{
		Response:    resp.AssistantText,
		Suggestions: resp.Suggestions,
		State:       resp.State,
	})
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	snap, err := s.orc.State(r.Context(), conversationID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		s.logger.Error("state lookup failed", "conversation_id", conversationID, "err", err)
		writeError(w, http.StatusInternalServerError, "could not load conversation")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) deleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	if err := s.orc.EndConversation(r.Context(), conversationID); err != nil {
		s.logger.Error("delete failed", "conversation_id", conversationID, "err", err)
		writeError(w, http.StatusInternalServerError, "could not delete conversation")
		return
	}

	s.mu.Lock()
	delete(s.histories, conversationID)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("response encoding failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
