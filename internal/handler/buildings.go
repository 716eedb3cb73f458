package handler

import (
	"log/slog"
	"net/http"

	"github.com/nexuscampus/campusmap/internal/domain"
)

// BuildingHandler serves the static campus building dataset
type BuildingHandler struct {
	buildings domain.BuildingRepository
	logger    *slog.Logger
}

// NewBuildingHandler creates a new building handler
func NewBuildingHandler(buildings domain.BuildingRepository, logger *slog.Logger) *BuildingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildingHandler{
		buildings: buildings,
		logger:    logger,
	}
}

// List handles GET /api/buildings
func (h *BuildingHandler) List(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.buildings.List()
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildings)
}
