package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nexuscampus/campusmap/internal/security/middleware"
	"github.com/nexuscampus/campusmap/internal/service"
)

// AdminHandler handles the admin panel endpoints. Role checks live in the
// services; the handler only shapes requests and responses.
type AdminHandler struct {
	users  *service.UserService
	events *service.EventService
	logger *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(users *service.UserService, events *service.EventService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		users:  users,
		events: events,
		logger: logger,
	}
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	users, err := h.users.List(principal)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateRoleRequest represents a role change
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole handles PUT /api/admin/users/{id}/role
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.users.UpdateRole(principal, id, req.Role); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "role updated"})
}

// PendingEvents handles GET /api/admin/events/pending
func (h *AdminHandler) PendingEvents(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	events, err := h.events.Pending(principal)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// ApproveEvent handles PUT /api/admin/events/{id}/approve
func (h *AdminHandler) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := h.events.Approve(principal, id); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "event approved"})
}
