package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/query"
	"github.com/trekora/trek-api/internal/store"
)

// MockUserStore implements store.UserStore for testing.
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn      func(ctx context.Context, email string) (*domain.User, error)
	GetByResetTokenFn func(ctx context.Context, tokenHash string) (*domain.User, error)
	ListFn            func(ctx context.Context, opts *query.Options) ([]*domain.User, int, error)
	UpdateFn          func(ctx context.Context, user *domain.User) error
	DeactivateFn      func(ctx context.Context, id uuid.UUID) error
	DeleteFn          func(ctx context.Context, id uuid.UUID) error

	// Data for the default implementation, keyed by email
	Users map[string]*domain.User
}

// NewMockUserStore creates a mock store with initialized defaults.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{Users: make(map[string]*domain.User)}
}

// Create implements the UserStore interface.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	if _, exists := m.Users[user.Email]; exists {
		return store.ErrEmailExists
	}
	m.Users[user.Email] = user
	return nil
}

// GetByID implements the UserStore interface.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	for _, user := range m.Users {
		if user.ID == id && user.Active {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements the UserStore interface.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	user, exists := m.Users[email]
	if !exists || !user.Active {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// GetByResetToken implements the UserStore interface.
func (m *MockUserStore) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	if m.GetByResetTokenFn != nil {
		return m.GetByResetTokenFn(ctx, tokenHash)
	}

	now := time.Now().UTC()
	for _, user := range m.Users {
		if user.PasswordResetToken == tokenHash && user.PasswordResetExpires.After(now) {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// List implements the UserStore interface.
func (m *MockUserStore) List(ctx context.Context, opts *query.Options) ([]*domain.User, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, opts)
	}

	users := make([]*domain.User, 0, len(m.Users))
	for _, user := range m.Users {
		if user.Active {
			users = append(users, user)
		}
	}
	return users, len(users), nil
}

// Update implements the UserStore interface.
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	for email, existing := range m.Users {
		if existing.ID == user.ID {
			if email != user.Email {
				if _, exists := m.Users[user.Email]; exists {
					return store.ErrEmailExists
				}
				delete(m.Users, email)
			}
			m.Users[user.Email] = user
			return nil
		}
	}
	return store.ErrUserNotFound
}

// Deactivate implements the UserStore interface.
func (m *MockUserStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	if m.DeactivateFn != nil {
		return m.DeactivateFn(ctx, id)
	}

	for _, user := range m.Users {
		if user.ID == id {
			user.Active = false
			return nil
		}
	}
	return store.ErrUserNotFound
}

// Delete implements the UserStore interface.
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	for email, user := range m.Users {
		if user.ID == id {
			delete(m.Users, email)
			return nil
		}
	}
	return store.ErrUserNotFound
}
