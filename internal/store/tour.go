package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/query"
)

// TourStats is one row of the per-difficulty aggregate report.
type TourStats struct {
	Difficulty domain.Difficulty `json:"difficulty"`
	NumTours   int               `json:"num_tours"`
	NumRatings int               `json:"num_ratings"`
	AvgRating  float64           `json:"avg_rating"`
	AvgPrice   float64           `json:"avg_price"`
	MinPrice   float64           `json:"min_price"`
	MaxPrice   float64           `json:"max_price"`
}

// MonthlyPlanEntry reports how many tours start in a given month of a
// year, along with their names.
type MonthlyPlanEntry struct {
	Month     time.Month `json:"month"`
	NumStarts int        `json:"num_tour_starts"`
	Tours     []string   `json:"tours"`
}

// TourDistance is a tour name paired with its distance from a point.
type TourDistance struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Distance float64   `json:"distance"`
}

// TourStore defines the interface for tour data persistence.
//
// Secret tours are excluded from every read; there is no hidden query
// interception, each implementation applies the predicate explicitly.
type TourStore interface {
	// Create saves a new tour.
	// Returns ErrTourNameExists if the name is already taken.
	Create(ctx context.Context, tour *domain.Tour) error

	// GetByID retrieves a non-secret tour with its reviews eagerly loaded.
	// Returns ErrTourNotFound if the tour does not exist or is secret.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error)

	// List returns non-secret tours shaped by the translated query
	// options plus the total number of matching tours. Returns
	// ErrPageNotFound when a page beyond the first starts at or past
	// the matching total.
	List(ctx context.Context, opts *query.Options) ([]*domain.Tour, int, error)

	// Update persists the full tour record after validation.
	// Returns ErrTourNotFound if the tour does not exist.
	// Returns ErrTourNameExists when renaming to a taken name.
	Update(ctx context.Context, tour *domain.Tour) error

	// Delete removes the tour and, through the schema, its reviews and
	// start dates. Returns ErrTourNotFound if the tour does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateRatings overwrites the denormalized rating aggregate.
	UpdateRatings(ctx context.Context, tourID uuid.UUID, quantity int, average float64) error

	// Stats aggregates non-secret tours with an average rating of at
	// least 4.5, grouped by difficulty.
	Stats(ctx context.Context) ([]TourStats, error)

	// MonthlyPlan groups the year's tour starts by month, busiest first.
	MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error)

	// Within returns tours whose start location lies inside the
	// great-circle radius (in kilometers) around the given point.
	Within(ctx context.Context, lat, lng, radiusKm float64) ([]*domain.Tour, error)

	// Distances returns every tour's distance (in kilometers) from the
	// given point, nearest first.
	Distances(ctx context.Context, lat, lng float64) ([]TourDistance, error)
}
