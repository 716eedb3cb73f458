package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of authorization roles. Role strings from the
// outside world go through ParseRole so an unknown role is rejected at the
// boundary instead of silently failing a string comparison later.
type Role string

const (
	RoleUser  Role = "USER"
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a raw role string onto the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleStaff:
		return RoleStaff, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// User represents a registered account
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`    // unique, login identifier
	Username     string    `json:"username"` // unique, display name
	PasswordHash string    `json:"-"`        // bcrypt hash, never serialized
	Role         Role      `json:"role"`
	Language     string    `json:"language"` // UI hint only
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(user *User) error
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	GetByUsername(username string) (*User, error)
	UpdateRole(id int64, role Role) error
	List() ([]*User, error)
}
