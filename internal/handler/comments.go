package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/nexuscampus/campusmap/internal/domain"
	"github.com/nexuscampus/campusmap/internal/security/middleware"
	"github.com/nexuscampus/campusmap/internal/service"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentHandler{
		comments: comments,
		logger:   logger,
	}
}

// CommentView is a comment as the client sees it. IsMine is computed per
// request against the current principal so the client can show its own
// delete button without knowing author ids.
type CommentView struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"userName"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	IsMine    bool      `json:"isMine"`
}

func toView(c *domain.Comment, principal *domain.User) CommentView {
	return CommentView{
		ID:        c.ID,
		UserName:  c.UserName,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		IsMine:    principal != nil && principal.ID == c.UserID,
	}
}

// List handles GET /api/events/{id}/comments. Public; IsMine is false for
// anonymous readers.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	comments, err := h.comments.ListByEvent(eventID)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, toView(c, principal))
	}
	writeJSON(w, http.StatusOK, views)
}

// AddCommentRequest represents a new comment
type AddCommentRequest struct {
	Content string `json:"content"`
}

// Add handles POST /api/events/{id}/comments
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	eventID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	comment, err := h.comments.Add(principal, eventID, req.Content)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(comment, principal))
}

// Delete handles DELETE /api/comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := h.comments.Delete(principal, id); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}
