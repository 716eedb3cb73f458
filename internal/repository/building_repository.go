package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nexuscampus/campusmap/internal/domain"
)

// PostgresBuildingRepository implements domain.BuildingRepository using PostgreSQL
type PostgresBuildingRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresBuildingRepository creates a new building repository
func NewPostgresBuildingRepository(db *sql.DB, logger *slog.Logger) *PostgresBuildingRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBuildingRepository{db: db, logger: logger}
}

// List returns all buildings
func (r *PostgresBuildingRepository) List() ([]*domain.Building, error) {
	query := `
		SELECT id, name, short_name, departments, description, facilities, lat, lon, open_hours, phone
		FROM buildings
		ORDER BY name ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("failed to list buildings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	defer rows.Close()

	var buildings []*domain.Building
	for rows.Next() {
		b := &domain.Building{}
		err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.ShortName,
			&b.Departments,
			&b.Description,
			&b.Facilities,
			&b.Lat,
			&b.Lon,
			&b.OpenHours,
			&b.Phone,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan building: %w", err)
		}
		buildings = append(buildings, b)
	}

	return buildings, rows.Err()
}
