package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Difficulty grades how demanding a tour is.
type Difficulty string

// The fixed set of tour difficulties.
const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

// Valid reports whether the difficulty is one of the known grades.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}

// DefaultRatingsAverage is the rating a tour carries before any review
// exists, and the value the aggregate resets to when the last review
// is deleted.
const DefaultRatingsAverage = 4.5

// Common tour validation errors.
var (
	ErrEmptyTourID        = errors.New("tour ID cannot be empty")
	ErrEmptyTourName      = errors.New("a tour must have a name")
	ErrTourNameTooShort   = errors.New("a tour name must have at least 10 characters")
	ErrTourNameTooLong    = errors.New("a tour name must have at most 40 characters")
	ErrInvalidDuration    = errors.New("a tour must have a positive duration")
	ErrInvalidGroupSize   = errors.New("a tour must have a positive group size")
	ErrInvalidDifficulty  = errors.New("difficulty is either easy, medium or difficult")
	ErrInvalidPrice       = errors.New("a tour must have a positive price")
	ErrInvalidDiscount    = errors.New("discount price should be below the regular price")
	ErrEmptySummary       = errors.New("a tour must have a summary")
	ErrEmptyCoverImage    = errors.New("a tour must have a cover image")
	ErrRatingOutOfBounds  = errors.New("rating must be between 1.0 and 5.0")
	ErrInvalidCoordinates = errors.New("coordinates must be valid latitude and longitude")
)

// Location is a geographic point attached to a tour.
type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Address     string  `json:"address,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Valid reports whether the coordinates are within range.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// Tour is a bookable tour record. The ratings aggregate
// (RatingsQuantity, RatingsAverage) is denormalized from reviews and
// recomputed by the review store after each review mutation.
type Tour struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	Duration        int         `json:"duration"`
	MaxGroupSize    int         `json:"max_group_size"`
	Difficulty      Difficulty  `json:"difficulty"`
	Price           float64     `json:"price"`
	PriceDiscount   float64     `json:"price_discount,omitempty"`
	Summary         string      `json:"summary"`
	Description     string      `json:"description,omitempty"`
	ImageCover      string      `json:"image_cover"`
	Images          []string    `json:"images,omitempty"`
	StartDates      []time.Time `json:"start_dates,omitempty"`
	Secret          bool        `json:"-"`
	StartLocation   Location    `json:"start_location"`
	RatingsAverage  float64     `json:"ratings_average"`
	RatingsQuantity int         `json:"ratings_quantity"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	// Reviews is populated on single-tour reads only.
	Reviews []*Review `json:"reviews,omitempty"`
}

// NewTour creates a Tour with server-assigned ID, slug, timestamps and
// aggregate defaults. Returns an error if validation fails.
func NewTour(t Tour) (*Tour, error) {
	now := time.Now().UTC()
	tour := t
	tour.ID = uuid.New()
	tour.Name = strings.TrimSpace(t.Name)
	tour.Slug = Slugify(tour.Name)
	tour.RatingsAverage = DefaultRatingsAverage
	tour.RatingsQuantity = 0
	tour.CreatedAt = now
	tour.UpdatedAt = now

	if err := tour.Validate(); err != nil {
		return nil, err
	}

	return &tour, nil
}

// Validate checks if the Tour has valid data.
func (t *Tour) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTourID
	}

	switch n := len(t.Name); {
	case n == 0:
		return ErrEmptyTourName
	case n < 10:
		return ErrTourNameTooShort
	case n > 40:
		return ErrTourNameTooLong
	}

	if t.Duration <= 0 {
		return ErrInvalidDuration
	}
	if t.MaxGroupSize <= 0 {
		return ErrInvalidGroupSize
	}
	if !t.Difficulty.Valid() {
		return ErrInvalidDifficulty
	}
	if t.Price <= 0 {
		return ErrInvalidPrice
	}
	if t.PriceDiscount != 0 && t.PriceDiscount >= t.Price {
		return ErrInvalidDiscount
	}
	if strings.TrimSpace(t.Summary) == "" {
		return ErrEmptySummary
	}
	if t.ImageCover == "" {
		return ErrEmptyCoverImage
	}
	if t.RatingsAverage < 1 || t.RatingsAverage > 5 {
		return ErrRatingOutOfBounds
	}
	if !t.StartLocation.Valid() {
		return ErrInvalidCoordinates
	}

	return nil
}

// Slugify derives a URL-safe slug from a tour name: lowercase, with
// every run of non-alphanumeric characters collapsed to a single dash.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
