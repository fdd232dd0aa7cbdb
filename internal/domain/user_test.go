package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		userName  string
		email     string
		password  string
		wantErr   error
		wantEmail string
	}{
		{
			name:      "valid user",
			userName:  "Test User",
			email:     "test@example.com",
			password:  "password123",
			wantEmail: "test@example.com",
		},
		{
			name:      "email is normalized",
			userName:  "Test User",
			email:     "  Upper@Example.COM ",
			password:  "password123",
			wantEmail: "upper@example.com",
		},
		{
			name:     "empty name",
			userName: "",
			email:    "test@example.com",
			password: "password123",
			wantErr:  ErrEmptyName,
		},
		{
			name:     "invalid email",
			userName: "Test User",
			email:    "not-an-email",
			password: "password123",
			wantErr:  ErrInvalidEmail,
		},
		{
			name:     "password too short",
			userName: "Test User",
			email:    "test@example.com",
			password: "short",
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "password too long",
			userName: "Test User",
			email:    "test@example.com",
			password: string(make([]byte, 80)),
			wantErr:  ErrPasswordTooLong,
		},
		{
			name:     "empty password",
			userName: "Test User",
			email:    "test@example.com",
			password: "",
			wantErr:  ErrEmptyPassword,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := NewUser(tt.userName, tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, RoleUser, user.Role)
			assert.True(t, user.Active)
			assert.NotZero(t, user.ID)
			assert.Equal(t, tt.wantEmail, user.Email)
		})
	}
}

func TestUserValidateHashedOnly(t *testing.T) {
	t.Parallel()

	user, err := NewUser("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	// After hashing the plaintext is cleared; the record stays valid.
	user.Password = ""
	user.HashedPassword = "$2a$12$fakefakefakefakefakefake"
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), ErrEmptyPassword)
}

func TestChangedPasswordAfter(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name      string
		changedAt time.Time
		issuedAt  time.Time
		want      bool
	}{
		{
			name:      "never changed",
			changedAt: time.Time{},
			issuedAt:  now,
			want:      false,
		},
		{
			name:      "token issued after change",
			changedAt: now.Add(-time.Hour),
			issuedAt:  now,
			want:      false,
		},
		{
			name:      "token issued before change",
			changedAt: now,
			issuedAt:  now.Add(-time.Hour),
			want:      true,
		},
		{
			name:      "sub-second skew ignored",
			changedAt: now.Truncate(time.Second).Add(500 * time.Millisecond),
			issuedAt:  now.Truncate(time.Second),
			want:      false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user := &User{PasswordChangedAt: tt.changedAt}
			assert.Equal(t, tt.want, user.ChangedPasswordAfter(tt.issuedAt))
		})
	}
}
