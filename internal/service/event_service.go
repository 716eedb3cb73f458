package service

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/nexuscampus/campusmap/internal/domain"
	"github.com/nexuscampus/campusmap/internal/security/authz"
	"github.com/nexuscampus/campusmap/internal/storage"
)

// EventService applies role and ownership rules while mutating events.
type EventService struct {
	eventRepo   domain.EventRepository
	commentRepo domain.CommentRepository
	images      *storage.ImageStore
	autoApprove bool
	logger      *slog.Logger
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo domain.EventRepository,
	commentRepo domain.CommentRepository,
	images *storage.ImageStore,
	autoApprove bool,
	logger *slog.Logger,
) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		eventRepo:   eventRepo,
		commentRepo: commentRepo,
		images:      images,
		autoApprove: autoApprove,
		logger:      logger,
	}
}

// List returns all events, newest first
func (s *EventService) List() ([]*domain.Event, error) {
	return s.eventRepo.List()
}

// Get returns one event
func (s *EventService) Get(id int64) (*domain.Event, error) {
	return s.eventRepo.GetByID(id)
}

// Create stores a new event. The creator identity is bound from the
// authenticated principal here, never taken from the request body. Requires
// the STAFF or ADMIN role.
func (s *EventService) Create(creator *domain.User, event *domain.Event, image io.Reader, imageName string) error {
	if err := authz.RequireRole(creator, domain.RoleStaff, domain.RoleAdmin); err != nil {
		return err
	}
	if event.Title == "" || event.Description == "" {
		return fmt.Errorf("%w: title and description are required", domain.ErrInvalidInput)
	}

	event.CreatorID = creator.ID
	event.CreatorName = creator.Username
	event.Approved = s.autoApprove || creator.Role == domain.RoleAdmin

	if image != nil {
		imageURL, err := s.images.Save(image, imageName)
		if err != nil {
			return fmt.Errorf("failed to save image: %w", err)
		}
		event.ImageURL = imageURL
	}

	// If this insert fails after the image write above succeeded, the file
	// is orphaned. The two stores share no transaction.
	if err := s.eventRepo.Create(event); err != nil {
		return err
	}

	s.logger.Info("event created",
		slog.Int64("event_id", event.ID),
		slog.Int64("creator_id", event.CreatorID),
		slog.Bool("approved", event.Approved),
	)
	return nil
}

// Update modifies an existing event. The event is loaded first; ownership
// is checked against the loaded instance, and only then are fields applied.
func (s *EventService) Update(actor *domain.User, id int64, updated *domain.Event, image io.Reader, imageName string) (*domain.Event, error) {
	existing, err := s.eventRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := authz.RequireOwner(actor, existing.CreatorID); err != nil {
		s.logger.Warn("event update denied",
			slog.Int64("event_id", id),
			slog.Int64("actor_id", actorID(actor)),
			slog.Int64("owner_id", existing.CreatorID),
		)
		return nil, err
	}

	existing.Title = updated.Title
	existing.Description = updated.Description
	existing.Lat = updated.Lat
	existing.Lon = updated.Lon
	if updated.StartsAt != nil {
		existing.StartsAt = updated.StartsAt
	}
	if updated.EndsAt != nil {
		existing.EndsAt = updated.EndsAt
	}

	if image != nil {
		if existing.ImageURL != "" {
			s.images.Remove(existing.ImageURL)
		}
		imageURL, err := s.images.Save(image, imageName)
		if err != nil {
			return nil, fmt.Errorf("failed to save image: %w", err)
		}
		existing.ImageURL = imageURL
	}

	if err := s.eventRepo.Update(existing); err != nil {
		return nil, err
	}

	s.logger.Info("event updated",
		slog.Int64("event_id", id),
		slog.Int64("actor_id", actor.ID),
	)
	return existing, nil
}

// Delete removes an event, its comments and its image file. The row and
// comments go first; file removal afterwards is best effort.
func (s *EventService) Delete(actor *domain.User, id int64) error {
	existing, err := s.eventRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := authz.RequireOwner(actor, existing.CreatorID); err != nil {
		s.logger.Warn("event delete denied",
			slog.Int64("event_id", id),
			slog.Int64("actor_id", actorID(actor)),
			slog.Int64("owner_id", existing.CreatorID),
		)
		return err
	}

	if err := s.commentRepo.DeleteByEvent(id); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(id); err != nil {
		return err
	}
	if existing.ImageURL != "" {
		s.images.Remove(existing.ImageURL)
	}

	s.logger.Info("event deleted",
		slog.Int64("event_id", id),
		slog.Int64("actor_id", actor.ID),
	)
	return nil
}

// actorID is safe to call with an anonymous (nil) actor.
func actorID(u *domain.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

// Pending returns events awaiting approval. Admin only.
func (s *EventService) Pending(actor *domain.User) ([]*domain.Event, error) {
	if err := authz.RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.eventRepo.ListPending()
}

// Approve marks an event approved. Admin only.
func (s *EventService) Approve(actor *domain.User, id int64) error {
	if err := authz.RequireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.eventRepo.Approve(id); err != nil {
		return err
	}
	s.logger.Info("event approved",
		slog.Int64("event_id", id),
		slog.Int64("actor_id", actor.ID),
	)
	return nil
}
