package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/query"
	"github.com/trekora/trek-api/internal/store"
)

// MockReviewStore implements store.ReviewStore for testing.
type MockReviewStore struct {
	CreateFn  func(ctx context.Context, review *domain.Review) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListFn    func(ctx context.Context, opts *query.Options, tourID *uuid.UUID) ([]*domain.Review, int, error)
	UpdateFn  func(ctx context.Context, review *domain.Review) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	// Data for the default implementation, keyed by ID
	Reviews map[uuid.UUID]*domain.Review
}

// NewMockReviewStore creates a mock store with initialized defaults.
func NewMockReviewStore() *MockReviewStore {
	return &MockReviewStore{Reviews: make(map[uuid.UUID]*domain.Review)}
}

// Create implements the ReviewStore interface.
func (m *MockReviewStore) Create(ctx context.Context, review *domain.Review) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, review)
	}

	for _, existing := range m.Reviews {
		if existing.TourID == review.TourID && existing.UserID == review.UserID {
			return store.ErrDuplicateReview
		}
	}
	m.Reviews[review.ID] = review
	return nil
}

// GetByID implements the ReviewStore interface.
func (m *MockReviewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	review, exists := m.Reviews[id]
	if !exists {
		return nil, store.ErrReviewNotFound
	}
	return review, nil
}

// List implements the ReviewStore interface.
func (m *MockReviewStore) List(ctx context.Context, opts *query.Options, tourID *uuid.UUID) ([]*domain.Review, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, opts, tourID)
	}

	reviews := make([]*domain.Review, 0, len(m.Reviews))
	for _, review := range m.Reviews {
		if tourID == nil || review.TourID == *tourID {
			reviews = append(reviews, review)
		}
	}
	return reviews, len(reviews), nil
}

// Update implements the ReviewStore interface.
func (m *MockReviewStore) Update(ctx context.Context, review *domain.Review) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, review)
	}

	if _, exists := m.Reviews[review.ID]; !exists {
		return store.ErrReviewNotFound
	}
	m.Reviews[review.ID] = review
	return nil
}

// Delete implements the ReviewStore interface.
func (m *MockReviewStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, exists := m.Reviews[id]; !exists {
		return store.ErrReviewNotFound
	}
	delete(m.Reviews, id)
	return nil
}
