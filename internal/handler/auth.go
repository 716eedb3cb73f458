package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nexuscampus/campusmap/internal/domain"
	"github.com/nexuscampus/campusmap/internal/observability/metrics"
	"github.com/nexuscampus/campusmap/internal/security/auth"
	"github.com/nexuscampus/campusmap/internal/service"
)

// AuthHandler handles signup and login
type AuthHandler struct {
	users  *service.UserService
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *service.UserService, tokens *auth.TokenManager, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// SignupRequest represents a registration request
type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Language string `json:"language"`
	Role     string `json:"role"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token plus display fields for the client
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	UserRole string `json:"userRole"`
	Language string `json:"language"`
}

// Signup handles POST /api/users/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode signup request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, username, and password are required")
		return
	}
	if req.Role == "" {
		req.Role = string(domain.RoleUser)
	}

	user, err := h.users.Register(req.Email, req.Username, req.Password, req.Language, req.Role)
	if err != nil {
		h.logger.Info("registration failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		writeServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "user registered successfully",
		"userId":  user.ID,
	})
}

// Login handles POST /api/users/login. A failed login returns the same
// generic message for unknown email and wrong password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		metrics.ObserveLogin("failure")
		writeServiceError(h.logger, w, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("failed to issue token",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	metrics.ObserveLogin("success")
	h.logger.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		UserRole: string(user.Role),
		Language: user.Language,
	})
}
