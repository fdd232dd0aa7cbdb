package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trekora/trek-api/internal/service/auth"
)

// MockTokenService implements auth.TokenService for testing.
type MockTokenService struct {
	GenerateFn func(ctx context.Context, userID uuid.UUID) (string, time.Time, error)
	ValidateFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when function fields aren't set
	Token       string
	ExpiresAt   time.Time
	GenerateErr error
	Claims      *auth.Claims
	ValidateErr error
}

// Generate implements the auth.TokenService interface.
func (m *MockTokenService) Generate(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, userID)
	}
	return m.Token, m.ExpiresAt, m.GenerateErr
}

// Validate implements the auth.TokenService interface.
func (m *MockTokenService) Validate(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateFn != nil {
		return m.ValidateFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// MockPasswordHasher implements auth.PasswordHasher for testing. The
// default behavior prefixes plaintexts, so hashes stay human-readable
// in assertions.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error

	HashErr    error
	CompareErr error
}

// Hash implements the auth.PasswordHasher interface.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return "hashed:" + password, nil
}

// Compare implements the auth.PasswordHasher interface.
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.CompareErr != nil {
		return m.CompareErr
	}
	if hashedPassword != "hashed:"+password {
		return auth.ErrWrongPassword
	}
	return nil
}
