package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/query"
)

// ReviewStore defines the interface for review data persistence.
//
// Create, Update and Delete recompute the owning tour's denormalized
// rating aggregate after the write. The recomputation is best-effort:
// it runs as a separate statement pair and a crash in between leaves a
// stale aggregate until the next review mutation.
type ReviewStore interface {
	// Create saves a new review and refreshes the tour's aggregate.
	// Returns ErrDuplicateReview if the user already reviewed the tour
	// and ErrTourNotFound if the tour reference is dangling.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review with its author joined in.
	// Returns ErrReviewNotFound if the review does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)

	// List returns reviews shaped by the translated query options plus
	// the total matching count. A non-nil tourID scopes the listing to
	// that tour's reviews. Returns ErrPageNotFound when a page beyond
	// the first starts at or past the matching total.
	List(ctx context.Context, opts *query.Options, tourID *uuid.UUID) ([]*domain.Review, int, error)

	// Update persists review text and rating, then refreshes the
	// tour's aggregate. Returns ErrReviewNotFound if absent.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes the review, then refreshes the tour's aggregate.
	// Returns ErrReviewNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
}
