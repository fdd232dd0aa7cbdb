package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common review validation errors.
var (
	ErrEmptyReviewID     = errors.New("review ID cannot be empty")
	ErrEmptyReviewText   = errors.New("review cannot be empty")
	ErrEmptyReviewTour   = errors.New("review must belong to a tour")
	ErrEmptyReviewAuthor = errors.New("review must belong to a user")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
)

// Review is a user-authored rating of a single tour. A user may review
// a given tour at most once; the store enforces the uniqueness.
type Review struct {
	ID     uuid.UUID `json:"id"`
	Review string    `json:"review"`
	Rating float64   `json:"rating"`
	TourID uuid.UUID `json:"tour_id"`
	UserID uuid.UUID `json:"user_id"`

	// Author name and photo are joined in on reads.
	AuthorName  string `json:"author_name,omitempty"`
	AuthorPhoto string `json:"author_photo,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReview creates a Review with a server-assigned ID and timestamps.
// Returns an error if validation fails.
func NewReview(text string, rating float64, tourID, userID uuid.UUID) (*Review, error) {
	now := time.Now().UTC()
	review := &Review{
		ID:        uuid.New(),
		Review:    strings.TrimSpace(text),
		Rating:    rating,
		TourID:    tourID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}

	return review, nil
}

// Validate checks if the Review has valid data.
func (r *Review) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReviewID
	}
	if r.Review == "" {
		return ErrEmptyReviewText
	}
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if r.TourID == uuid.Nil {
		return ErrEmptyReviewTour
	}
	if r.UserID == uuid.Nil {
		return ErrEmptyReviewAuthor
	}
	return nil
}
