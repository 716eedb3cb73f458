package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nexuscampus/campusmap/internal/infrastructure/translate"
	"github.com/nexuscampus/campusmap/internal/observability/metrics"
	"github.com/nexuscampus/campusmap/internal/security/authz"
	"github.com/nexuscampus/campusmap/internal/security/middleware"
)

// Translator detects and translates text
type Translator interface {
	Detect(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, target string) (string, error)
}

// TranslateHandler proxies translation requests so the API key never
// reaches the browser.
type TranslateHandler struct {
	translator Translator
	logger     *slog.Logger
}

// NewTranslateHandler creates a new translate handler
func NewTranslateHandler(translator Translator, logger *slog.Logger) *TranslateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslateHandler{
		translator: translator,
		logger:     logger,
	}
}

// TranslateRequest carries an event title and description to translate
type TranslateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetLang  string `json:"targetLang"`
}

// TranslateResponse represents a translation result
type TranslateResponse struct {
	TranslatedTitle       string `json:"translatedTitle"`
	TranslatedDescription string `json:"translatedDescription"`
	DetectedLanguage      string `json:"detectedLanguage"`
}

// Translate handles POST /api/translate. Authenticated users only; the
// target language defaults to the user's profile language. The source
// language is detected from the title; when it already matches the target
// both fields are echoed back untranslated.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := authz.RequireAuthenticated(principal); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.TargetLang == "" {
		req.TargetLang = principal.Language
	}
	if req.TargetLang == "" {
		req.TargetLang = "en"
	}

	start := time.Now()
	detected, err := h.translator.Detect(r.Context(), req.Title)
	if err != nil {
		metrics.ObserveExternalRequest("translate", "failure", time.Since(start))
		h.writeTranslateError(w, err)
		return
	}

	// Nothing to do when the event is already in the target language.
	if detected == req.TargetLang {
		metrics.ObserveExternalRequest("translate", "success", time.Since(start))
		writeJSON(w, http.StatusOK, TranslateResponse{
			TranslatedTitle:       req.Title,
			TranslatedDescription: req.Description,
			DetectedLanguage:      detected,
		})
		return
	}

	title, err := h.translator.Translate(r.Context(), req.Title, req.TargetLang)
	if err != nil {
		metrics.ObserveExternalRequest("translate", "failure", time.Since(start))
		h.writeTranslateError(w, err)
		return
	}

	description := req.Description
	if description != "" {
		description, err = h.translator.Translate(r.Context(), req.Description, req.TargetLang)
		if err != nil {
			metrics.ObserveExternalRequest("translate", "failure", time.Since(start))
			h.writeTranslateError(w, err)
			return
		}
	}

	metrics.ObserveExternalRequest("translate", "success", time.Since(start))
	writeJSON(w, http.StatusOK, TranslateResponse{
		TranslatedTitle:       title,
		TranslatedDescription: description,
		DetectedLanguage:      detected,
	})
}

func (h *TranslateHandler) writeTranslateError(w http.ResponseWriter, err error) {
	if errors.Is(err, translate.ErrUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "translation service unavailable")
		return
	}
	h.logger.Error("translation failed", slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal server error")
}
