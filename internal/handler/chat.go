package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nexuscampus/campusmap/internal/infrastructure/llm"
	"github.com/nexuscampus/campusmap/internal/observability/metrics"
	"github.com/nexuscampus/campusmap/internal/security/authz"
	"github.com/nexuscampus/campusmap/internal/security/middleware"
	"github.com/nexuscampus/campusmap/internal/service"
)

// ChatHandler handles the campus-guide chat endpoint
type ChatHandler struct {
	chat   *service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

// ChatRequest represents a chat message
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// ChatResponse represents a model answer
type ChatResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversationId"`
}

// Chat handles POST /api/chat. Authenticated users only.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := authz.RequireAuthenticated(principal); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	start := time.Now()
	answer, conversationID, err := h.chat.Ask(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			metrics.ObserveExternalRequest("chat", "failure", time.Since(start))
			writeError(w, http.StatusServiceUnavailable, "chat model unavailable")
			return
		}
		writeServiceError(h.logger, w, err)
		return
	}

	metrics.ObserveExternalRequest("chat", "success", time.Since(start))
	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:         answer,
		ConversationID: conversationID,
	})
}
