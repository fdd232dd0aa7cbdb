package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/query"
	"github.com/trekora/trek-api/internal/store"
)

// MockTourStore implements store.TourStore for testing.
type MockTourStore struct {
	CreateFn        func(ctx context.Context, tour *domain.Tour) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.Tour, error)
	ListFn          func(ctx context.Context, opts *query.Options) ([]*domain.Tour, int, error)
	UpdateFn        func(ctx context.Context, tour *domain.Tour) error
	DeleteFn        func(ctx context.Context, id uuid.UUID) error
	UpdateRatingsFn func(ctx context.Context, tourID uuid.UUID, quantity int, average float64) error
	StatsFn         func(ctx context.Context) ([]store.TourStats, error)
	MonthlyPlanFn   func(ctx context.Context, year int) ([]store.MonthlyPlanEntry, error)
	WithinFn        func(ctx context.Context, lat, lng, radiusKm float64) ([]*domain.Tour, error)
	DistancesFn     func(ctx context.Context, lat, lng float64) ([]store.TourDistance, error)

	// Data for the default implementation, keyed by ID
	Tours map[uuid.UUID]*domain.Tour
}

// NewMockTourStore creates a mock store with initialized defaults.
func NewMockTourStore() *MockTourStore {
	return &MockTourStore{Tours: make(map[uuid.UUID]*domain.Tour)}
}

// Create implements the TourStore interface.
func (m *MockTourStore) Create(ctx context.Context, tour *domain.Tour) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, tour)
	}

	for _, existing := range m.Tours {
		if existing.Name == tour.Name {
			return store.ErrTourNameExists
		}
	}
	m.Tours[tour.ID] = tour
	return nil
}

// GetByID implements the TourStore interface.
func (m *MockTourStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	tour, exists := m.Tours[id]
	if !exists || tour.Secret {
		return nil, store.ErrTourNotFound
	}
	return tour, nil
}

// List implements the TourStore interface.
func (m *MockTourStore) List(ctx context.Context, opts *query.Options) ([]*domain.Tour, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, opts)
	}

	tours := make([]*domain.Tour, 0, len(m.Tours))
	for _, tour := range m.Tours {
		if !tour.Secret {
			tours = append(tours, tour)
		}
	}
	return tours, len(tours), nil
}

// Update implements the TourStore interface.
func (m *MockTourStore) Update(ctx context.Context, tour *domain.Tour) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, tour)
	}

	if _, exists := m.Tours[tour.ID]; !exists {
		return store.ErrTourNotFound
	}
	m.Tours[tour.ID] = tour
	return nil
}

// Delete implements the TourStore interface.
func (m *MockTourStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, exists := m.Tours[id]; !exists {
		return store.ErrTourNotFound
	}
	delete(m.Tours, id)
	return nil
}

// UpdateRatings implements the TourStore interface.
func (m *MockTourStore) UpdateRatings(ctx context.Context, tourID uuid.UUID, quantity int, average float64) error {
	if m.UpdateRatingsFn != nil {
		return m.UpdateRatingsFn(ctx, tourID, quantity, average)
	}

	tour, exists := m.Tours[tourID]
	if !exists {
		return store.ErrTourNotFound
	}
	tour.RatingsQuantity = quantity
	tour.RatingsAverage = average
	return nil
}

// Stats implements the TourStore interface.
func (m *MockTourStore) Stats(ctx context.Context) ([]store.TourStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx)
	}
	return nil, nil
}

// MonthlyPlan implements the TourStore interface.
func (m *MockTourStore) MonthlyPlan(ctx context.Context, year int) ([]store.MonthlyPlanEntry, error) {
	if m.MonthlyPlanFn != nil {
		return m.MonthlyPlanFn(ctx, year)
	}
	return nil, nil
}

// Within implements the TourStore interface.
func (m *MockTourStore) Within(ctx context.Context, lat, lng, radiusKm float64) ([]*domain.Tour, error) {
	if m.WithinFn != nil {
		return m.WithinFn(ctx, lat, lng, radiusKm)
	}
	return nil, nil
}

// Distances implements the TourStore interface.
func (m *MockTourStore) Distances(ctx context.Context, lat, lng float64) ([]store.TourDistance, error) {
	if m.DistancesFn != nil {
		return m.DistancesFn(ctx, lat, lng)
	}
	return nil, nil
}
