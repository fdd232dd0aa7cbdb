package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/trekora/trek-api/internal/domain"
)

// Request payloads. Validation tags are enforced with
// go-playground/validator before any domain logic runs.

// SignupRequest defines the payload for user registration.
type SignupRequest struct {
	Name            string `json:"name"             validate:"required"`
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// LoginRequest defines the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// ForgotPasswordRequest starts the password-reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the password-reset flow.
type ResetPasswordRequest struct {
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// UpdatePasswordRequest changes the password of a logged-in user.
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"password_current" validate:"required"`
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// UpdateMeRequest updates the calling user's own profile. Password
// fields are declared only so their presence can be rejected with a
// pointer to the dedicated endpoint.
type UpdateMeRequest struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty"  validate:"omitempty,email"`
	Photo           *string `json:"photo,omitempty"`
	Password        *string `json:"password,omitempty"`
	PasswordConfirm *string `json:"password_confirm,omitempty"`
}

// AdminUpdateUserRequest is the admin-only partial user update.
// Passwords are never updated through this surface.
type AdminUpdateUserRequest struct {
	Name   *string      `json:"name,omitempty"`
	Email  *string      `json:"email,omitempty" validate:"omitempty,email"`
	Photo  *string      `json:"photo,omitempty"`
	Role   *domain.Role `json:"role,omitempty"  validate:"omitempty,oneof=user guide lead-guide admin"`
	Active *bool        `json:"active,omitempty"`
}

// LocationPayload mirrors domain.Location for tour payloads.
type LocationPayload struct {
	Latitude    float64 `json:"latitude"  validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
	Address     string  `json:"address,omitempty"`
	Description string  `json:"description,omitempty"`
}

// CreateTourRequest defines the payload for tour creation.
type CreateTourRequest struct {
	Name          string          `json:"name"           validate:"required,min=10,max=40"`
	Duration      int             `json:"duration"       validate:"required,gt=0"`
	MaxGroupSize  int             `json:"max_group_size" validate:"required,gt=0"`
	Difficulty    string          `json:"difficulty"     validate:"required,oneof=easy medium difficult"`
	Price         float64         `json:"price"          validate:"required,gt=0"`
	PriceDiscount float64         `json:"price_discount" validate:"omitempty,gt=0,ltfield=Price"`
	Summary       string          `json:"summary"        validate:"required"`
	Description   string          `json:"description"`
	ImageCover    string          `json:"image_cover"    validate:"required"`
	Images        []string        `json:"images"`
	StartDates    []time.Time     `json:"start_dates"`
	Secret        bool            `json:"secret"`
	StartLocation LocationPayload `json:"start_location"`
}

// UpdateTourRequest is the partial tour update; nil fields are left
// untouched.
type UpdateTourRequest struct {
	Name          *string          `json:"name,omitempty"           validate:"omitempty,min=10,max=40"`
	Duration      *int             `json:"duration,omitempty"       validate:"omitempty,gt=0"`
	MaxGroupSize  *int             `json:"max_group_size,omitempty" validate:"omitempty,gt=0"`
	Difficulty    *string          `json:"difficulty,omitempty"     validate:"omitempty,oneof=easy medium difficult"`
	Price         *float64         `json:"price,omitempty"          validate:"omitempty,gt=0"`
	PriceDiscount *float64         `json:"price_discount,omitempty"`
	Summary       *string          `json:"summary,omitempty"`
	Description   *string          `json:"description,omitempty"`
	ImageCover    *string          `json:"image_cover,omitempty"`
	Images        []string         `json:"images,omitempty"`
	StartDates    []time.Time      `json:"start_dates,omitempty"`
	Secret        *bool            `json:"secret,omitempty"`
	StartLocation *LocationPayload `json:"start_location,omitempty"`
}

// CreateReviewRequest defines the payload for review creation. TourID
// is optional on the nested route, where it comes from the path.
type CreateReviewRequest struct {
	Review string    `json:"review"  validate:"required"`
	Rating float64   `json:"rating"  validate:"required,min=1,max=5"`
	TourID uuid.UUID `json:"tour_id"`
}

// UpdateReviewRequest is the partial review update.
type UpdateReviewRequest struct {
	Review *string  `json:"review,omitempty" validate:"omitempty,min=1"`
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}
