package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/nexuscampus/campusmap/internal/domain"
	"github.com/nexuscampus/campusmap/internal/security/auth"
	"github.com/nexuscampus/campusmap/internal/security/middleware"
	"github.com/nexuscampus/campusmap/internal/service"
	"github.com/nexuscampus/campusmap/internal/storage"
)

// In-memory repositories backing the handler tests. The full stack above
// them (services, authorization, token manager, routing) is real.

type memUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
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
}

func (m *memBuildingRepo) List() ([]*domain.Building, error) {
	return m.buildings, nil
}

// testEnv wires the real services and handlers over in-memory repositories,
// with the same routes the server registers.
type testEnv struct {
	server *httptest.Server
	users  *memUserRepo
	events *memEventRepo
	tokens *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &memUserRepo{users: map[int64]*domain.User{}}
	events := &memEventRepo{events: map[int64]*domain.Event{}}
	comments := &memCommentRepo{comments: map[int64]*domain.Comment{}}
	buildings := &memBuildingRepo{buildings: []*domain.Building{
		{ID: 1, Name: "Main Library", ShortName: "LIB"},
	}}

	tokens, err := auth.NewTokenManager("0123456789abcdef0123456789abcdef", "campus-map", time.Hour, nil)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	hasher := auth.NewPasswordHasher()

	images, err := storage.NewImageStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewImageStore failed: %v", err)
	}

	userService := service.NewUserService(users, hasher, nil)
	eventService := service.NewEventService(events, comments, images, false, nil)
	commentService := service.NewCommentService(comments, events, nil)

	authHandler := NewAuthHandler(userService, tokens, nil)
	eventHandler := NewEventHandler(eventService, 5, nil)
	commentHandler := NewCommentHandler(commentService, nil)
	adminHandler := NewAdminHandler(userService, eventService, nil)
	buildingHandler := NewBuildingHandler(buildings, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/users/login", authHandler.Login)
	mux.HandleFunc("GET /api/events", eventHandler.List)
	mux.HandleFunc("GET /api/events/{id}", eventHandler.Get)
	mux.HandleFunc("POST /api/events", eventHandler.Create)
	mux.HandleFunc("PUT /api/events/{id}", eventHandler.Update)
	mux.HandleFunc("DELETE /api/events/{id}", eventHandler.Delete)
	mux.HandleFunc("GET /api/events/{id}/comments", commentHandler.List)
	mux.HandleFunc("POST /api/events/{id}/comments", commentHandler.Add)
	mux.HandleFunc("DELETE /api/comments/{id}", commentHandler.Delete)
	mux.HandleFunc("GET /api/buildings", buildingHandler.List)
	mux.HandleFunc("GET /api/admin/users", adminHandler.ListUsers)
	mux.HandleFunc("PUT /api/admin/users/{id}/role", adminHandler.UpdateRole)
	mux.HandleFunc("GET /api/admin/events/pending", adminHandler.PendingEvents)
	mux.HandleFunc("PUT /api/admin/events/{id}/approve", adminHandler.ApproveEvent)

	root := middleware.Authentication(tokens, users, nil)(mux)
	server := httptest.NewServer(root)
	t.Cleanup(server.Close)

	return &testEnv{server: server, users: users, events: events, tokens: tokens}
}

// signup registers a user directly in the repo with the given role and
// returns a valid token for them.
func (e *testEnv) addUser(t *testing.T, email, username string, role domain.Role) (*domain.User, string) {
	t.Helper()
	u := &domain.User{Email: email, Username: username, PasswordHash: "x", Role: role}
	if err := e.users.Create(u); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token, err := e.tokens.Issue(u.ID)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return u, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, body)
	}
}
