package service

import (
	"sort"
	"time"

	"github.com/nexuscampus/campusmap/internal/domain"
)

// In-memory repository fakes shared by the service tests.

type memUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]*domain.User{}}
}

func (m *memUserRepo) Create(u *domain.User) error {
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(id int64) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByEmail(email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByUsername(username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) UpdateRole(id int64, role domain.Role) error {
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

func (m *memUserRepo) List() ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memEventRepo struct {
	nextID int64
	events map[int64]*domain.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: map[int64]*domain.Event{}}
}

func (m *memEventRepo) Create(e *domain.Event) error {
	m.nextID++
	e.ID = m.nextID
	e.CreatedAt = time.Now()
	m.events[e.ID] = e
	return nil
}

func (m *memEventRepo) GetByID(id int64) (*domain.Event, error) {
	if e, ok := m.events[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memEventRepo) Update(e *domain.Event) error {
	if _, ok := m.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *e
	m.events[e.ID] = &copied
	return nil
}

func (m *memEventRepo) Delete(id int64) error {
	if _, ok := m.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *memEventRepo) List() ([]*domain.Event, error) {
	out := make([]*domain.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memEventRepo) ListPending() ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range m.events {
		if !e.Approved {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEventRepo) Approve(id int64) error {
	e, ok := m.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Approved = true
	return nil
}

type memCommentRepo struct {
	nextID   int64
	comments map[int64]*domain.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: map[int64]*domain.Comment{}}
}

func (m *memCommentRepo) Create(c *domain.Comment) error {
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.comments[c.ID] = c
	return nil
}

func (m *memCommentRepo) GetByID(id int64) (*domain.Comment, error) {
	if c, ok := m.comments[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memCommentRepo) ListByEvent(eventID int64) ([]*domain.Comment, error) {
	var out []*domain.Comment
	for _, c := range m.comments {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCommentRepo) Delete(id int64) error {
	if _, ok := m.comments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *memCommentRepo) DeleteByEvent(eventID int64) error {
	for id, c := range m.comments {
		if c.EventID == eventID {
			delete(m.comments, id)
		}
	}
	return nil
}

type memBuildingRepo struct {
	buildings []*domain.Building
	err       error
}

func (m *memBuildingRepo) List() ([]*domain.Building, error) {
	return m.buildings, m.err
}
