package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nexuscampus/campusmap/internal/domain"
	"github.com/nexuscampus/campusmap/internal/security/authz"
)

// MaxCommentLen caps comment length in characters.
const MaxCommentLen = 500

// CommentService handles event comments.
type CommentService struct {
	commentRepo domain.CommentRepository
	eventRepo   domain.EventRepository
	logger      *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(commentRepo domain.CommentRepository, eventRepo domain.EventRepository, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		commentRepo: commentRepo,
		eventRepo:   eventRepo,
		logger:      logger,
	}
}

// ListByEvent returns an event's comments, oldest first
func (s *CommentService) ListByEvent(eventID int64) ([]*domain.Comment, error) {
	return s.commentRepo.ListByEvent(eventID)
}

// Add attaches a comment to an event. Any authenticated user may comment;
// the author identity comes from the principal, not the payload.
func (s *CommentService) Add(author *domain.User, eventID int64, content string) (*domain.Comment, error) {
	if err := authz.RequireAuthenticated(author); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", domain.ErrInvalidInput)
	}
	if len([]rune(content)) > MaxCommentLen {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", domain.ErrInvalidInput, MaxCommentLen)
	}

	if _, err := s.eventRepo.GetByID(eventID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		EventID:  eventID,
		UserID:   author.ID,
		UserName: author.Username,
		Content:  content,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment added",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("event_id", eventID),
		slog.Int64("user_id", author.ID),
	)
	return comment, nil
}

// Delete removes a comment. Allowed for the comment's author or an admin.
func (s *CommentService) Delete(actor *domain.User, commentID int64) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return err
	}

	if err := authz.RequireOwner(actor, comment.UserID); err != nil {
		s.logger.Warn("comment delete denied",
			slog.Int64("comment_id", commentID),
			slog.Int64("actor_id", actorID(actor)),
		)
		return err
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		return err
	}

	s.logger.Info("comment deleted",
		slog.Int64("comment_id", commentID),
		slog.Int64("actor_id", actor.ID),
	)
	return nil
}
