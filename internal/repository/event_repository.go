package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nexuscampus/campusmap/internal/domain"
)

// PostgresEventRepository implements domain.EventRepository using PostgreSQL
type PostgresEventRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresEventRepository creates a new event repository
func NewPostgresEventRepository(db *sql.DB, logger *slog.Logger) *PostgresEventRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEventRepository{db: db, logger: logger}
}

const eventColumns = `id, title, description, lat, lon, starts_at, ends_at, image_url, creator_id, creator_name, approved, created_at`

// Create inserts a new event
func (r *PostgresEventRepository) Create(event *domain.Event) error {
	query := `
		INSERT INTO events (title, description, lat, lon, starts_at, ends_at, image_url, creator_id, creator_name, approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		event.Title,
		event.Description,
		event.Lat,
		event.Lon,
		event.StartsAt,
		event.EndsAt,
		nullString(event.ImageURL),
		event.CreatorID,
		event.CreatorName,
		event.Approved,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create event",
			slog.String("title", event.Title),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// Update persists changes to an existing event. CreatorID is deliberately
// not part of the statement: ownership is set once at creation.
func (r *PostgresEventRepository) Update(event *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, lat = $3, lon = $4, starts_at = $5, ends_at = $6, image_url = $7
		WHERE id = $8
	`

	result, err := r.db.Exec(
		query,
		event.Title,
		event.Description,
		event.Lat,
		event.Lon,
		event.StartsAt,
		event.EndsAt,
		nullString(event.ImageURL),
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes an event
func (r *PostgresEventRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// List returns all events, newest first
func (r *PostgresEventRepository) List() ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	return r.list(query)
}

// ListPending returns events awaiting admin approval, oldest first
func (r *PostgresEventRepository) ListPending() ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE approved = false ORDER BY created_at ASC`
	return r.list(query)
}

func (r *PostgresEventRepository) list(query string) ([]*domain.Event, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("failed to list events", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// Approve marks an event as approved
func (r *PostgresEventRepository) Approve(id int64) error {
	result, err := r.db.Exec(`UPDATE events SET approved = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to approve event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	event := &domain.Event{}
	var imageURL sql.NullString

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Lat,
		&event.Lon,
		&event.StartsAt,
		&event.EndsAt,
		&imageURL,
		&event.CreatorID,
		&event.CreatorName,
		&event.Approved,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.ImageURL = imageURL.String
	return event, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
