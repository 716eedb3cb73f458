package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nexuscampus/campusmap/internal/domain"
	"github.com/nexuscampus/campusmap/internal/security/middleware"
	"github.com/nexuscampus/campusmap/internal/service"
)

// eventDateLayout is the wire format for event start and end times.
const eventDateLayout = "2006-01-02T15:04"

// EventHandler handles event CRUD endpoints
type EventHandler struct {
	events         *service.EventService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *service.EventService, maxUploadMB int, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{
		events:         events,
		maxUploadBytes: int64(maxUploadMB) << 20,
		logger:         logger,
	}
}

// List handles GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List()
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// Get handles GET /api/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.events.Get(id)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Create handles POST /api/events. Accepts multipart form data so an image
// can ride along with the event fields, or a plain JSON body without one.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	event, file, filename, ok := h.parseEventBody(w, r)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	var image io.Reader
	if file != nil {
		image = file
	}
	if err := h.events.Create(principal, event, image, filename); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Update handles PUT /api/events/{id}. Accepts either multipart form data
// (to replace the image) or a plain JSON body.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, file, filename, ok := h.parseEventBody(w, r)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	var image io.Reader
	if file != nil {
		image = file
	}
	updated, err := h.events.Update(principal, id, event, image, filename)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := h.events.Delete(principal, id); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// eventJSONRequest is the JSON update body
type eventJSONRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	StartsAt    string  `json:"startsAt"`
	EndsAt      string  `json:"endsAt"`
}

func (req *eventJSONRequest) toEvent(w http.ResponseWriter) (*domain.Event, bool) {
	if req.Title == "" || req.Description == "" {
		writeError(w, http.StatusBadRequest, "title and description are required")
		return nil, false
	}

	event := &domain.Event{
		Title:       req.Title,
		Description: req.Description,
		Lat:         req.Lat,
		Lon:         req.Lon,
	}
	for _, f := range []struct {
		raw  string
		dest **time.Time
	}{
		{req.StartsAt, &event.StartsAt},
		{req.EndsAt, &event.EndsAt},
	} {
		if f.raw == "" {
			continue
		}
		t, err := time.Parse(eventDateLayout, f.raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want "+eventDateLayout)
			return nil, false
		}
		*f.dest = &t
	}
	return event, true
}

// parseEventBody reads the event fields from either a multipart form (with
// an optional image file) or a plain JSON body. On failure it writes the
// error response and returns ok=false.
func (h *EventHandler) parseEventBody(w http.ResponseWriter, r *http.Request) (*domain.Event, multipart.File, string, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return h.parseEventForm(w, r)
	}

	var req eventJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return nil, nil, "", false
	}
	event, ok := req.toEvent(w)
	return event, nil, "", ok
}

func (h *EventHandler) parseEventForm(w http.ResponseWriter, r *http.Request) (*domain.Event, multipart.File, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.logger.Warn("failed to parse multipart form", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid or oversized form data")
		return nil, nil, "", false
	}

	req := eventJSONRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		StartsAt:    r.FormValue("startsAt"),
		EndsAt:      r.FormValue("endsAt"),
	}
	for _, f := range []struct {
		name string
		dest *float64
	}{
		{"lat", &req.Lat},
		{"lon", &req.Lon},
	} {
		raw := r.FormValue(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+f.name)
			return nil, nil, "", false
		}
		*f.dest = v
	}

	event, ok := req.toEvent(w)
	if !ok {
		return nil, nil, "", false
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return event, nil, "", true
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image upload")
		return nil, nil, "", false
	}
	return event, file, header.Filename, true
}
