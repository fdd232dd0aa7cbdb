package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/platform/logger"
	"github.com/trekora/trek-api/internal/query"
	"github.com/trekora/trek-api/internal/store"
)

// tourColumns maps exposed field names to tours table columns for
// filtering and sorting.
var tourColumns = map[string]string{
	"name":             "name",
	"slug":             "slug",
	"duration":         "duration",
	"max_group_size":   "max_group_size",
	"difficulty":       "difficulty",
	"price":            "price",
	"ratings_average":  "ratings_average",
	"ratings_quantity": "ratings_quantity",
	"created_at":       "created_at",
}

// startDatesSubquery aggregates a tour's start dates into a JSON array
// so listings need a single round trip per page.
const startDatesSubquery = "(SELECT COALESCE(jsonb_agg(d.starts_on ORDER BY d.starts_on), '[]') " +
	"FROM tour_start_dates d WHERE d.tour_id = tours.id)"

var tourSelectColumns = []string{
	"id", "name", "slug", "duration", "max_group_size", "difficulty",
	"price", "price_discount", "summary", "description", "image_cover",
	"images", "secret", "start_lat", "start_lng", "start_address",
	"start_description", "ratings_average", "ratings_quantity",
	"created_at", "updated_at", startDatesSubquery + " AS start_dates",
}

// haversineKm computes the great-circle distance in kilometers between
// the bound point ($lat, $lng placeholders filled by the caller) and a
// tour's start location. 6371 is the Earth's mean radius in km; the
// LEAST guard keeps acos in domain under floating-point noise.
const haversineKm = "6371 * acos(LEAST(1.0, " +
	"cos(radians(%[1]s)) * cos(radians(start_lat)) * cos(radians(start_lng) - radians(%[2]s)) + " +
	"sin(radians(%[1]s)) * sin(radians(start_lat))))"

// TourStore implements store.TourStore using PostgreSQL.
type TourStore struct {
	db store.DBTX
}

// NewTourStore creates a PostgreSQL-backed TourStore.
func NewTourStore(db store.DBTX) *TourStore {
	return &TourStore{db: db}
}

var _ store.TourStore = (*TourStore)(nil)

// Create implements store.TourStore.Create.
func (s *TourStore) Create(ctx context.Context, tour *domain.Tour) error {
	if err := tour.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	images, err := json.Marshal(tour.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}

	sqlStr, args, err := psql.Insert("tours").
		Columns("id", "name", "slug", "duration", "max_group_size", "difficulty",
			"price", "price_discount", "summary", "description", "image_cover",
			"images", "secret", "start_lat", "start_lng", "start_address",
			"start_description", "ratings_average", "ratings_quantity",
			"created_at", "updated_at").
		Values(tour.ID, tour.Name, tour.Slug, tour.Duration, tour.MaxGroupSize, tour.Difficulty,
			tour.Price, nullFloat(tour.PriceDiscount), tour.Summary, tour.Description, tour.ImageCover,
			images, tour.Secret, tour.StartLocation.Latitude, tour.StartLocation.Longitude,
			tour.StartLocation.Address, tour.StartLocation.Description,
			tour.RatingsAverage, tour.RatingsQuantity, tour.CreatedAt, tour.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if isUniqueViolation(err) {
			return store.ErrTourNameExists
		}
		logger.FromContext(ctx).Error("failed to create tour", "error", err)
		return fmt.Errorf("failed to create tour: %w", err)
	}

	return s.replaceStartDates(ctx, tour.ID, tour.StartDates)
}

// GetByID implements store.TourStore.GetByID. Reviews are eagerly
// loaded with their authors joined in.
func (s *TourStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error) {
	sqlStr, args, err := psql.Select(tourSelectColumns...).
		From("tours").
		Where(sq.Eq{"id": id, "secret": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	tour, err := scanTour(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}

	if tour.Reviews, err = s.loadReviews(ctx, id); err != nil {
		return nil, err
	}
	return tour, nil
}

// List implements store.TourStore.List. Secret tours are excluded
// explicitly; there is no hidden query interception.
func (s *TourStore) List(ctx context.Context, opts *query.Options) ([]*domain.Tour, int, error) {
	visible := sq.Eq{"secret": false}

	total, err := countMatching(ctx, s.db, "tours", visible, opts.Filter, tourColumns)
	if err != nil {
		return nil, 0, err
	}
	if err := checkPage(opts, total); err != nil {
		return nil, 0, err
	}

	b := psql.Select(tourSelectColumns...).From("tours").Where(visible)
	if b, err = applyFilter(b, opts.Filter, tourColumns); err != nil {
		return nil, 0, err
	}
	if b, err = applySort(b, opts.Sort, tourColumns, "created_at DESC"); err != nil {
		return nil, 0, err
	}
	b = applyPagination(b, opts)

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tours: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tours []*domain.Tour
	for rows.Next() {
		tour, err := scanTour(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan tour: %w", err)
		}
		tours = append(tours, tour)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list tours: %w", err)
	}

	return tours, total, nil
}

// Update implements store.TourStore.Update.
func (s *TourStore) Update(ctx context.Context, tour *domain.Tour) error {
	if err := tour.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	images, err := json.Marshal(tour.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}

	tour.UpdatedAt = time.Now().UTC()

	sqlStr, args, err := psql.Update("tours").
		Set("name", tour.Name).
		Set("slug", tour.Slug).
		Set("duration", tour.Duration).
		Set("max_group_size", tour.MaxGroupSize).
		Set("difficulty", tour.Difficulty).
		Set("price", tour.Price).
		Set("price_discount", nullFloat(tour.PriceDiscount)).
		Set("summary", tour.Summary).
		Set("description", tour.Description).
		Set("image_cover", tour.ImageCover).
		Set("images", images).
		Set("secret", tour.Secret).
		Set("start_lat", tour.StartLocation.Latitude).
		Set("start_lng", tour.StartLocation.Longitude).
		Set("start_address", tour.StartLocation.Address).
		Set("start_description", tour.StartLocation.Description).
		Set("updated_at", tour.UpdatedAt).
		Where(sq.Eq{"id": tour.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrTourNameExists
		}
		logger.FromContext(ctx).Error("failed to update tour", "error", err, "tour_id", tour.ID)
		return fmt.Errorf("failed to update tour: %w", err)
	}
	if err := requireAffected(res, store.ErrTourNotFound); err != nil {
		return err
	}

	return s.replaceStartDates(ctx, tour.ID, tour.StartDates)
}

// Delete implements store.TourStore.Delete. Reviews and start dates go
// with the tour via ON DELETE CASCADE.
func (s *TourStore) Delete(ctx context.Context, id uuid.UUID) error {
	sqlStr, args, err := psql.Delete("tours").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}
	return requireAffected(res, store.ErrTourNotFound)
}

// UpdateRatings implements store.TourStore.UpdateRatings.
func (s *TourStore) UpdateRatings(ctx context.Context, tourID uuid.UUID, quantity int, average float64) error {
	sqlStr, args, err := psql.Update("tours").
		Set("ratings_quantity", quantity).
		Set("ratings_average", average).
		Where(sq.Eq{"id": tourID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to update tour ratings: %w", err)
	}
	return nil
}

const tourStatsQuery = `
SELECT difficulty,
       COUNT(*) AS num_tours,
       COALESCE(SUM(ratings_quantity), 0) AS num_ratings,
       ROUND(AVG(ratings_average)::numeric, 2) AS avg_rating,
       ROUND(AVG(price)::numeric, 2) AS avg_price,
       MIN(price) AS min_price,
       MAX(price) AS max_price
FROM tours
WHERE NOT secret AND ratings_average >= 4.5
GROUP BY difficulty
ORDER BY avg_price`

// Stats implements store.TourStore.Stats.
func (s *TourStore) Stats(ctx context.Context) ([]store.TourStats, error) {
	rows, err := s.db.QueryContext(ctx, tourStatsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query tour stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []store.TourStats
	for rows.Next() {
		var st store.TourStats
		if err := rows.Scan(&st.Difficulty, &st.NumTours, &st.NumRatings,
			&st.AvgRating, &st.AvgPrice, &st.MinPrice, &st.MaxPrice); err != nil {
			return nil, fmt.Errorf("failed to scan tour stats: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query tour stats: %w", err)
	}
	return stats, nil
}

const monthlyPlanQuery = `
SELECT EXTRACT(MONTH FROM d.starts_on)::int AS month,
       COUNT(*) AS num_tour_starts,
       COALESCE(jsonb_agg(t.name ORDER BY t.name), '[]') AS tours
FROM tour_start_dates d
JOIN tours t ON t.id = d.tour_id
WHERE NOT t.secret AND EXTRACT(YEAR FROM d.starts_on)::int = $1
GROUP BY month
ORDER BY num_tour_starts DESC, month`

// MonthlyPlan implements store.TourStore.MonthlyPlan.
func (s *TourStore) MonthlyPlan(ctx context.Context, year int) ([]store.MonthlyPlanEntry, error) {
	rows, err := s.db.QueryContext(ctx, monthlyPlanQuery, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly plan: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var plan []store.MonthlyPlanEntry
	for rows.Next() {
		var (
			entry    store.MonthlyPlanEntry
			month    int
			rawTours []byte
		)
		if err := rows.Scan(&month, &entry.NumStarts, &rawTours); err != nil {
			return nil, fmt.Errorf("failed to scan monthly plan: %w", err)
		}
		entry.Month = time.Month(month)
		if err := json.Unmarshal(rawTours, &entry.Tours); err != nil {
			return nil, fmt.Errorf("failed to decode monthly plan tours: %w", err)
		}
		plan = append(plan, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query monthly plan: %w", err)
	}
	return plan, nil
}

// Within implements store.TourStore.Within.
func (s *TourStore) Within(ctx context.Context, lat, lng, radiusKm float64) ([]*domain.Tour, error) {
	distance := fmt.Sprintf(haversineKm, "$1", "$2")
	sqlStr := "SELECT " + joinColumns(tourSelectColumns) +
		" FROM tours WHERE NOT secret AND " + distance + " <= $3"

	rows, err := s.db.QueryContext(ctx, sqlStr, lat, lng, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to query tours within radius: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tours []*domain.Tour
	for rows.Next() {
		tour, err := scanTour(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tour: %w", err)
		}
		tours = append(tours, tour)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query tours within radius: %w", err)
	}
	return tours, nil
}

// Distances implements store.TourStore.Distances.
func (s *TourStore) Distances(ctx context.Context, lat, lng float64) ([]store.TourDistance, error) {
	distance := fmt.Sprintf(haversineKm, "$1", "$2")
	sqlStr := "SELECT id, name, " + distance + " AS distance" +
		" FROM tours WHERE NOT secret ORDER BY distance"

	rows, err := s.db.QueryContext(ctx, sqlStr, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("failed to query tour distances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var distances []store.TourDistance
	for rows.Next() {
		var td store.TourDistance
		if err := rows.Scan(&td.ID, &td.Name, &td.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan tour distance: %w", err)
		}
		distances = append(distances, td)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query tour distances: %w", err)
	}
	return distances, nil
}

// replaceStartDates rewrites the child start-date rows for a tour.
func (s *TourStore) replaceStartDates(ctx context.Context, tourID uuid.UUID, dates []time.Time) error {
	delStr, delArgs, err := psql.Delete("tour_start_dates").Where(sq.Eq{"tour_id": tourID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, delStr, delArgs...); err != nil {
		return fmt.Errorf("failed to clear start dates: %w", err)
	}

	if len(dates) == 0 {
		return nil
	}

	b := psql.Insert("tour_start_dates").Columns("tour_id", "starts_on")
	for _, d := range dates {
		b = b.Values(tourID, d.UTC())
	}

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to insert start dates: %w", err)
	}
	return nil
}

// loadReviews fetches a tour's reviews with author name and photo.
func (s *TourStore) loadReviews(ctx context.Context, tourID uuid.UUID) ([]*domain.Review, error) {
	sqlStr, args, err := psql.Select(reviewSelectColumns).
		From("reviews").
		Join("users ON users.id = reviews.user_id").
		Where(sq.Eq{"reviews.tour_id": tourID}).
		OrderBy("reviews.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load tour reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []*domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load tour reviews: %w", err)
	}
	return reviews, nil
}

func scanTour(row rowScanner) (*domain.Tour, error) {
	var (
		tour      domain.Tour
		discount  sql.NullFloat64
		descr     sql.NullString
		address   sql.NullString
		locDescr  sql.NullString
		rawImages []byte
		rawDates  []byte
	)
	err := row.Scan(
		&tour.ID, &tour.Name, &tour.Slug, &tour.Duration, &tour.MaxGroupSize,
		&tour.Difficulty, &tour.Price, &discount, &tour.Summary, &descr,
		&tour.ImageCover, &rawImages, &tour.Secret,
		&tour.StartLocation.Latitude, &tour.StartLocation.Longitude,
		&address, &locDescr, &tour.RatingsAverage, &tour.RatingsQuantity,
		&tour.CreatedAt, &tour.UpdatedAt, &rawDates,
	)
	if err != nil {
		return nil, err
	}

	tour.PriceDiscount = discount.Float64
	tour.Description = descr.String
	tour.StartLocation.Address = address.String
	tour.StartLocation.Description = locDescr.String

	if len(rawImages) > 0 {
		if err := json.Unmarshal(rawImages, &tour.Images); err != nil {
			return nil, fmt.Errorf("failed to decode images: %w", err)
		}
	}
	if len(rawDates) > 0 {
		if err := json.Unmarshal(rawDates, &tour.StartDates); err != nil {
			return nil, fmt.Errorf("failed to decode start dates: %w", err)
		}
	}
	return &tour, nil
}

// joinColumns renders a select column list for hand-written SQL.
func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}
