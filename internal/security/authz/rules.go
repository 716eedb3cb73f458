// Package authz holds the per-operation authorization predicates. Every
// protected operation states its rule explicitly at the boundary instead of
// scattering role string comparisons through the services.
package authz

import (
	"errors"

	"github.com/nexuscampus/campusmap/internal/domain"
)

var (
	// ErrUnauthenticated means no principal is attached to the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the principal exists but lacks the right.
	ErrForbidden = errors.New("insufficient permissions")
)

// RequireAuthenticated passes for any resolved principal.
func RequireAuthenticated(principal *domain.User) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	return nil
}

// RequireRole passes when the principal holds one of the allowed roles.
// Anonymous requests satisfy no role.
func RequireRole(principal *domain.User, roles ...domain.Role) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	for _, r := range roles {
		if principal.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// RequireOwner passes when the principal created the resource or is an
// admin. It must be evaluated after the resource is loaded: ownership is a
// property of the instance, not of the operation. A zero owner id (legacy
// rows that never recorded a creator) fails closed.
func RequireOwner(principal *domain.User, ownerID int64) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	if principal.Role == domain.RoleAdmin {
		return nil
	}
	if ownerID == 0 || principal.ID != ownerID {
		return ErrForbidden
	}
	return nil
}
