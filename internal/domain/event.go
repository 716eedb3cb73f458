package domain

import "time"

// Event is a campus announcement pinned to a map location.
//
// CreatorID is bound from the authenticated principal at creation time and
// is immutable afterwards; it is the only field ownership checks look at.
// CreatorName is a denormalized display copy and carries no authority.
type Event struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	CreatorID   int64      `json:"creatorId"`
	CreatorName string     `json:"creatorName"`
	Approved    bool       `json:"approved"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// EventRepository defines data access for events
type EventRepository interface {
	Create(event *Event) error
	GetByID(id int64) (*Event, error)
	Update(event *Event) error
	Delete(id int64) error
	List() ([]*Event, error)
	ListPending() ([]*Event, error)
	Approve(id int64) error
}
