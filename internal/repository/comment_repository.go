package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nexuscampus/campusmap/internal/domain"
)

// PostgresCommentRepository implements domain.CommentRepository using PostgreSQL
type PostgresCommentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCommentRepository creates a new comment repository
func NewPostgresCommentRepository(db *sql.DB, logger *slog.Logger) *PostgresCommentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCommentRepository{db: db, logger: logger}
}

// Create inserts a new comment
func (r *PostgresCommentRepository) Create(comment *domain.Comment) error {
	query := `
		INSERT INTO comments (event_id, user_id, user_name, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		comment.EventID,
		comment.UserID,
		comment.UserName,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create comment",
			slog.Int64("event_id", comment.EventID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by ID
func (r *PostgresCommentRepository) GetByID(id int64) (*domain.Comment, error) {
	comment := &domain.Comment{}

	query := `
		SELECT id, event_id, user_id, user_name, content, created_at
		FROM comments
		WHERE id = $1
	`

	err := r.db.QueryRow(query, id).Scan(
		&comment.ID,
		&comment.EventID,
		&comment.UserID,
		&comment.UserName,
		&comment.Content,
		&comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return comment, nil
}

// ListByEvent returns an event's comments, oldest first
func (r *PostgresCommentRepository) ListByEvent(eventID int64) ([]*domain.Comment, error) {
	query := `
		SELECT id, event_id, user_id, user_name, content, created_at
		FROM comments
		WHERE event_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		comment := &domain.Comment{}
		err := rows.Scan(
			&comment.ID,
			&comment.EventID,
			&comment.UserID,
			&comment.UserName,
			&comment.Content,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

// Delete removes a comment
func (r *PostgresCommentRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
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

// DeleteByEvent removes all comments of an event (cascade on event delete)
func (r *PostgresCommentRepository) DeleteByEvent(eventID int64) error {
	if _, err := r.db.Exec(`DELETE FROM comments WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to delete comments for event: %w", err)
	}
	return nil
}
