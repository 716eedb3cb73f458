package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nexuscampus/campusmap/internal/domain"
	"github.com/nexuscampus/campusmap/internal/security/authz"
	"github.com/nexuscampus/campusmap/internal/storage"
)

func newEventService(t *testing.T, autoApprove bool) (*EventService, *memEventRepo, *memCommentRepo, *storage.ImageStore) {
	t.Helper()
	events := newMemEventRepo()
	comments := newMemCommentRepo()
	images, err := storage.NewImageStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewImageStore failed: %v", err)
	}
	return NewEventService(events, comments, images, autoApprove, nil), events, comments, images
}

func staffUser(id int64) *domain.User {
	return &domain.User{ID: id, Username: "staff", Role: domain.RoleStaff}
}

func adminUser(id int64) *domain.User {
	return &domain.User{ID: id, Username: "admin", Role: domain.RoleAdmin}
}

func TestCreateRequiresStaffOrAdmin(t *testing.T) {
	s, _, _, _ := newEventService(t, false)
	event := &domain.Event{Title: "Fair", Description: "Open day"}

	if err := s.Create(nil, event, nil, ""); !errors.Is(err, authz.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	plain := &domain.User{ID: 1, Role: domain.RoleUser}
	if err := s.Create(plain, event, nil, ""); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for USER, got %v", err)
	}
	if err := s.Create(staffUser(2), event, nil, ""); err != nil {
		t.Fatalf("staff create failed: %v", err)
	}
}

func TestCreateBindsCreatorFromPrincipal(t *testing.T) {
	s, events, _, _ := newEventService(t, false)

	// A spoofed creator id in the payload must be overwritten.
	event := &domain.Event{Title: "Fair", Description: "Open day", CreatorID: 999, CreatorName: "mallory"}
	creator := staffUser(7)
	if err := s.Create(creator, event, nil, ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, _ := events.GetByID(event.ID)
	if stored.CreatorID != 7 || stored.CreatorName != "staff" {
		t.Fatalf("creator not bound from principal: %+v", stored)
	}
}

func TestCreateApprovalRules(t *testing.T) {
	t.Run("staff events need approval", func(t *testing.T) {
		s, _, _, _ := newEventService(t, false)
		event := &domain.Event{Title: "Fair", Description: "d"}
		if err := s.Create(staffUser(1), event, nil, ""); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if event.Approved {
			t.Fatalf("expected staff event to start unapproved")
		}
	})

	t.Run("admin events are approved immediately", func(t *testing.T) {
		s, _, _, _ := newEventService(t, false)
		event := &domain.Event{Title: "Fair", Description: "d"}
		if err := s.Create(adminUser(1), event, nil, ""); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if !event.Approved {
			t.Fatalf("expected admin event to be approved")
		}
	})

	t.Run("auto-approve flag approves everything", func(t *testing.T) {
		s, _, _, _ := newEventService(t, true)
		event := &domain.Event{Title: "Fair", Description: "d"}
		if err := s.Create(staffUser(1), event, nil, ""); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if !event.Approved {
			t.Fatalf("expected auto-approved event")
		}
	})
}

func TestCreateWithImage(t *testing.T) {
	s, events, _, images := newEventService(t, false)

	event := &domain.Event{Title: "Fair", Description: "d"}
	if err := s.Create(staffUser(1), event, strings.NewReader("png-bytes"), "poster.png"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, _ := events.GetByID(event.ID)
	if !strings.HasPrefix(stored.ImageURL, "/uploads/") || !strings.HasSuffix(stored.ImageURL, ".png") {
		t.Fatalf("unexpected image url %q", stored.ImageURL)
	}

	path := filepath.Join(images.Dir(), filepath.Base(stored.ImageURL))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("image file missing: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected image content %q", data)
	}
}

func TestUpdateOwnership(t *testing.T) {
	s, events, _, _ := newEventService(t, false)
	owner := staffUser(7)
	event := &domain.Event{Title: "Fair", Description: "d"}
	if err := s.Create(owner, event, nil, ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	changed := &domain.Event{Title: "New title", Description: "new"}

	otherStaff := staffUser(8)
	if _, err := s.Update(otherStaff, event.ID, changed, nil, ""); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner staff, got %v", err)
	}
	if _, err := s.Update(nil, event.ID, changed, nil, ""); !errors.Is(err, authz.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	updated, err := s.Update(owner, event.ID, changed, nil, "")
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Title != "New title" {
		t.Fatalf("update not applied: %+v", updated)
	}
	// Ownership survives updates
	if updated.CreatorID != 7 {
		t.Fatalf("creator id changed to %d", updated.CreatorID)
	}

	if _, err := s.Update(adminUser(9), event.ID, changed, nil, ""); err != nil {
		t.Fatalf("admin update failed: %v", err)
	}

	stored, _ := events.GetByID(event.ID)
	if stored.CreatorID != 7 {
		t.Fatalf("creator id changed after admin update: %d", stored.CreatorID)
	}
}

func TestUpdateMissingEventIsNotFound(t *testing.T) {
	s, _, _, _ := newEventService(t, false)
	_, err := s.Update(adminUser(1), 12345, &domain.Event{Title: "t", Description: "d"}, nil, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCascadesAndChecksOwnership(t *testing.T) {
	s, events, comments, images := newEventService(t, false)
	owner := staffUser(7)

	event := &domain.Event{Title: "Fair", Description: "d"}
	if err := s.Create(owner, event, strings.NewReader("img"), "a.jpg"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	comments.Create(&domain.Comment{EventID: event.ID, UserID: 1, Content: "nice"})
	comments.Create(&domain.Comment{EventID: event.ID, UserID: 2, Content: "cool"})

	if err := s.Delete(staffUser(8), event.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	stored, _ := events.GetByID(event.ID)
	imagePath := filepath.Join(images.Dir(), filepath.Base(stored.ImageURL))

	if err := s.Delete(owner, event.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := events.GetByID(event.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("event still present after delete")
	}
	if remaining, _ := comments.ListByEvent(event.ID); len(remaining) != 0 {
		t.Fatalf("expected comments to be cascaded, got %d", len(remaining))
	}
	if _, err := os.Stat(imagePath); !os.IsNotExist(err) {
		t.Fatalf("expected image file to be removed")
	}
}

func TestPendingAndApprove(t *testing.T) {
	s, events, _, _ := newEventService(t, false)

	e1 := &domain.Event{Title: "One", Description: "d"}
	e2 := &domain.Event{Title: "Two", Description: "d"}
	s.Create(staffUser(1), e1, nil, "")
	s.Create(adminUser(2), e2, nil, "") // approved immediately

	if _, err := s.Pending(staffUser(1)); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for staff, got %v", err)
	}

	pending, err := s.Pending(adminUser(2))
	if err != nil {
		t.Fatalf("pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != e1.ID {
		t.Fatalf("expected only the staff event pending, got %+v", pending)
	}

	if err := s.Approve(staffUser(1), e1.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for staff approve, got %v", err)
	}
	if err := s.Approve(adminUser(2), e1.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if stored, _ := events.GetByID(e1.ID); !stored.Approved {
		t.Fatalf("event not approved")
	}
	if err := s.Approve(adminUser(2), 12345); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
