package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/query"
)

// UserStore defines the interface for user data persistence.
//
// Every read excludes soft-deleted (inactive) users except the
// reset-token lookup, which operates on the stored token hash alone.
type UserStore interface {
	// Create saves a new user. The caller must have hashed the
	// password already. Returns ErrEmailExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves an active user by ID.
	// Returns ErrUserNotFound if the user does not exist or is inactive.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves an active user by email, including the
	// password hash for credential verification.
	// Returns ErrUserNotFound if the user does not exist or is inactive.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByResetToken retrieves the user holding the given reset-token
	// hash with an expiry still in the future.
	// Returns ErrUserNotFound otherwise.
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)

	// List returns active users shaped by the translated query options
	// plus the total number of matching users.
	List(ctx context.Context, opts *query.Options) ([]*domain.User, int, error)

	// Update persists the full user record (profile, role, password
	// hash, reset fields, active flag).
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists when updating to a taken email.
	Update(ctx context.Context, user *domain.User) error

	// Deactivate soft-deletes the user by clearing the active flag.
	// Returns ErrUserNotFound if the user does not exist.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Delete removes the user record permanently. Admin-only surface.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
