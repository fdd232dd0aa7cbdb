package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role controls which protected routes a user may call.
type Role string

// The fixed set of user roles.
const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// Common user validation errors.
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
)

// User represents a registered user of the application.
//
// HashedPassword and the reset-token fields are never serialized; the
// plaintext password only exists transiently during signup and
// password changes and must be hashed before persistence.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Photo          string    `json:"photo,omitempty"`
	Role           Role      `json:"role"`
	Password       string    `json:"-"` // plaintext, transient
	HashedPassword string    `json:"-"`

	// PasswordChangedAt invalidates session tokens issued before the
	// most recent credential change.
	PasswordChangedAt time.Time `json:"-"`

	// PasswordResetToken holds the SHA-256 hash of an outstanding
	// reset token; the raw token is only ever sent by email.
	PasswordResetToken   string    `json:"-"`
	PasswordResetExpires time.Time `json:"-"`

	// Active is the soft-delete flag. Inactive users are excluded from
	// every read.
	Active bool `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a User with the given name, email and plaintext
// password, defaulting the role to RoleUser. The caller is responsible
// for hashing the password before storing the user.
func NewUser(name, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      RoleUser,
		Password:  password,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Name == "" {
		return ErrEmptyName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}

	if !u.Role.Valid() {
		return ErrInvalidRole
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		// bcrypt's practical input limit
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// ChangedPasswordAfter reports whether the user's password was changed
// after the given token issue time. PasswordChangedAt is compared at
// second precision to match the granularity of JWT issued-at claims.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}
