package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nexuscampus/campusmap/internal/domain"
	"github.com/nexuscampus/campusmap/internal/security/auth"
	"github.com/nexuscampus/campusmap/internal/security/authz"
)

// UserService handles registration, credential checks and admin user
// management.
type UserService struct {
	userRepo domain.UserRepository
	hasher   *auth.PasswordHasher
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository, hasher *auth.PasswordHasher, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger,
	}
}

// Register creates a new account. Email uniqueness is checked before
// username, so a payload that violates both reports the email conflict.
func (s *UserService) Register(email, username, password, language, role string) (*domain.User, error) {
	if email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: email, username, and password are required", domain.ErrInvalidInput)
	}

	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, domain.ErrDuplicateEmail
	}
	if existing, err := s.userRepo.GetByUsername(username); err == nil && existing != nil {
		return nil, domain.ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         parsedRole,
		Language:     language,
	}

	if err := s.userRepo.Create(user); err != nil {
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// Authenticate verifies credentials. The error is the same whether the
// email is unknown or the password wrong, to prevent user enumeration.
func (s *UserService) Authenticate(email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		s.logger.Info("login attempt with unknown email", slog.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

// List returns all users. Admin only.
func (s *UserService) List(actor *domain.User) ([]*domain.User, error) {
	if err := authz.RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.userRepo.List()
}

// UpdateRole changes another user's role. Admin only.
func (s *UserService) UpdateRole(actor *domain.User, userID int64, role string) error {
	if err := authz.RequireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}

	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdateRole(userID, parsedRole); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("user role updated",
		slog.Int64("user_id", userID),
		slog.String("role", string(parsedRole)),
		slog.Int64("actor_id", actor.ID),
	)
	return nil
}
