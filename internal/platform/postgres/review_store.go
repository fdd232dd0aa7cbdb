package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/platform/logger"
	"github.com/trekora/trek-api/internal/query"
	"github.com/trekora/trek-api/internal/store"
)

// reviewColumns maps exposed field names to reviews table columns for
// filtering and sorting.
var reviewColumns = map[string]string{
	"rating":     "reviews.rating",
	"tour_id":    "reviews.tour_id",
	"user_id":    "reviews.user_id",
	"created_at": "reviews.created_at",
}

const reviewSelectColumns = "reviews.id, reviews.review, reviews.rating, " +
	"reviews.tour_id, reviews.user_id, users.name, users.photo, " +
	"reviews.created_at, reviews.updated_at"

// ratingAggregateQuery recomputes a tour's review aggregate. The
// average falls back to the pre-review default when no reviews remain,
// and is rounded to one decimal.
const ratingAggregateQuery = `
SELECT COUNT(*)::int,
       COALESCE(ROUND(AVG(rating)::numeric, 1), $2)
FROM reviews
WHERE tour_id = $1`

// ReviewStore implements store.ReviewStore using PostgreSQL. A tours
// store is injected so review writes can refresh the denormalized
// rating aggregate.
type ReviewStore struct {
	db    store.DBTX
	tours store.TourStore
}

// NewReviewStore creates a PostgreSQL-backed ReviewStore.
func NewReviewStore(db store.DBTX, tours store.TourStore) *ReviewStore {
	return &ReviewStore{db: db, tours: tours}
}

var _ store.ReviewStore = (*ReviewStore)(nil)

// Create implements store.ReviewStore.Create.
func (s *ReviewStore) Create(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	sqlStr, args, err := psql.Insert("reviews").
		Columns("id", "review", "rating", "tour_id", "user_id", "created_at", "updated_at").
		Values(review.ID, review.Review, review.Rating, review.TourID, review.UserID,
			review.CreatedAt, review.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		switch {
		case isUniqueViolation(err):
			return store.ErrDuplicateReview
		case isForeignKeyViolation(err):
			return store.ErrTourNotFound
		}
		logger.FromContext(ctx).Error("failed to create review", "error", err)
		return fmt.Errorf("failed to create review: %w", err)
	}

	return s.refreshRatings(ctx, review.TourID)
}

// GetByID implements store.ReviewStore.GetByID.
func (s *ReviewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	sqlStr, args, err := psql.Select(reviewSelectColumns).
		From("reviews").
		Join("users ON users.id = reviews.user_id").
		Where(sq.Eq{"reviews.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	review, err := scanReview(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// List implements store.ReviewStore.List.
func (s *ReviewStore) List(ctx context.Context, opts *query.Options, tourID *uuid.UUID) ([]*domain.Review, int, error) {
	var scope sq.Sqlizer = sq.Expr("TRUE")
	if tourID != nil {
		scope = sq.Eq{"reviews.tour_id": *tourID}
	}

	total, err := s.countReviews(ctx, scope, opts)
	if err != nil {
		return nil, 0, err
	}
	if err := checkPage(opts, total); err != nil {
		return nil, 0, err
	}

	b := psql.Select(reviewSelectColumns).
		From("reviews").
		Join("users ON users.id = reviews.user_id").
		Where(scope)
	if b, err = applyFilter(b, opts.Filter, reviewColumns); err != nil {
		return nil, 0, err
	}
	if b, err = applySort(b, opts.Sort, reviewColumns, "reviews.created_at DESC"); err != nil {
		return nil, 0, err
	}
	b = applyPagination(b, opts)

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []*domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, total, nil
}

// Update implements store.ReviewStore.Update. Only text and rating are
// mutable; the tour and author references are fixed at creation.
func (s *ReviewStore) Update(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	review.UpdatedAt = time.Now().UTC()

	sqlStr, args, err := psql.Update("reviews").
		Set("review", review.Review).
		Set("rating", review.Rating).
		Set("updated_at", review.UpdatedAt).
		Where(sq.Eq{"id": review.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		logger.FromContext(ctx).Error("failed to update review", "error", err, "review_id", review.ID)
		return fmt.Errorf("failed to update review: %w", err)
	}
	if err := requireAffected(res, store.ErrReviewNotFound); err != nil {
		return err
	}

	return s.refreshRatings(ctx, review.TourID)
}

// Delete implements store.ReviewStore.Delete.
func (s *ReviewStore) Delete(ctx context.Context, id uuid.UUID) error {
	// The owning tour is needed after the row is gone.
	sqlStr, args, err := psql.Delete("reviews").
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING tour_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	var tourID uuid.UUID
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&tourID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return s.refreshRatings(ctx, tourID)
}

// refreshRatings recomputes the owning tour's rating aggregate from a
// fresh query. Best-effort: it is not transactional with the
// triggering write.
func (s *ReviewStore) refreshRatings(ctx context.Context, tourID uuid.UUID) error {
	var (
		quantity int
		average  float64
	)
	err := s.db.QueryRowContext(ctx, ratingAggregateQuery, tourID, domain.DefaultRatingsAverage).
		Scan(&quantity, &average)
	if err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	if err := s.tours.UpdateRatings(ctx, tourID, quantity, average); err != nil {
		return fmt.Errorf("failed to refresh tour ratings: %w", err)
	}
	return nil
}

func (s *ReviewStore) countReviews(ctx context.Context, scope sq.Sqlizer, opts *query.Options) (int, error) {
	b := psql.Select("COUNT(*)").From("reviews").Where(scope)

	b, err := applyFilter(b, opts.Filter, reviewColumns)
	if err != nil {
		return 0, err
	}

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return total, nil
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var (
		review domain.Review
		photo  sql.NullString
	)
	err := row.Scan(
		&review.ID, &review.Review, &review.Rating,
		&review.TourID, &review.UserID, &review.AuthorName, &photo,
		&review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	review.AuthorPhoto = photo.String
	return &review, nil
}
