package domain

import "time"

// Comment is attached to an event. UserID is the author and is set once;
// comment deletion is allowed for the author or an admin, independent of
// who owns the parent event.
type Comment struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"-"`
	UserID    int64     `json:"-"`
	UserName  string    `json:"userName"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentRepository defines data access for comments
type CommentRepository interface {
	Create(comment *Comment) error
	GetByID(id int64) (*Comment, error)
	ListByEvent(eventID int64) ([]*Comment, error)
	Delete(id int64) error
	DeleteByEvent(eventID int64) error
}
