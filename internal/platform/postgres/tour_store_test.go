package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/store"
)

func storedTour(t *testing.T) *domain.Tour {
	t.Helper()
	tour, err := domain.NewTour(domain.Tour{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   domain.DifficultyEasy,
		Price:        397,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
		StartLocation: domain.Location{
			Latitude:  51.178,
			Longitude: -115.571,
			Address:   "Banff, CAN",
		},
	})
	require.NoError(t, err)
	return tour
}

var tourRowColumns = []string{
	"id", "name", "slug", "duration", "max_group_size", "difficulty",
	"price", "price_discount", "summary", "description", "image_cover",
	"images", "secret", "start_lat", "start_lng", "start_address",
	"start_description", "ratings_average", "ratings_quantity",
	"created_at", "updated_at", "start_dates",
}

func tourRow(tour *domain.Tour) *sqlmock.Rows {
	return sqlmock.NewRows(tourRowColumns).AddRow(
		tour.ID, tour.Name, tour.Slug, tour.Duration, tour.MaxGroupSize,
		tour.Difficulty, tour.Price, nil, tour.Summary, nil, tour.ImageCover,
		[]byte("[]"), tour.Secret, tour.StartLocation.Latitude,
		tour.StartLocation.Longitude, tour.StartLocation.Address, nil,
		tour.RatingsAverage, tour.RatingsQuantity,
		tour.CreatedAt, tour.UpdatedAt, []byte("[]"),
	)
}

func TestTourStoreCreate(t *testing.T) {
	t.Parallel()

	t.Run("success rewrites start dates", func(t *testing.T) {
		t.Parallel()

		db, mock := newMock(t)
		s := NewTourStore(db)
		tour := storedTour(t)
		tour.StartDates = []time.Time{time.Date(2026, 4, 25, 9, 0, 0, 0, time.UTC)}

		mock.ExpectExec("INSERT INTO tours").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM tour_start_dates").
			WithArgs(tour.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO tour_start_dates").
			WithArgs(tour.ID, tour.StartDates[0]).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), tour))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate name", func(t *testing.T) {
		t.Parallel()

		db, mock := newMock(t)
		s := NewTourStore(db)

		mock.ExpectExec("INSERT INTO tours").
			WillReturnError(pgError(pgerrcode.UniqueViolation))

		assert.ErrorIs(t, s.Create(context.Background(), storedTour(t)), store.ErrTourNameExists)
	})

	t.Run("no insert for empty start dates", func(t *testing.T) {
		t.Parallel()

		db, mock := newMock(t)
		s := NewTourStore(db)
		tour := storedTour(t)

		mock.ExpectExec("INSERT INTO tours").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM tour_start_dates").
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, s.Create(context.Background(), tour))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTourStoreGetByID(t *testing.T) {
	t.Parallel()

	t.Run("found with reviews", func(t *testing.T) {
		t.Parallel()

		db, mock := newMock(t)
		s := NewTourStore(db)
		tour := storedTour(t)
		review := storedReview(t)

		mock.ExpectQuery("SELECT .+ FROM tours").
			WithArgs(tour.ID, false).
			WillReturnRows(tourRow(tour))
		mock.ExpectQuery("SELECT .+ FROM reviews JOIN users").
			WithArgs(tour.ID).
			WillReturnRows(reviewRow(review))

		got, err := s.GetByID(context.Background(), tour.ID)
		require.NoError(t, err)
		assert.Equal(t, tour.Name, got.Name)
		assert.Equal(t, domain.DefaultRatingsAverage, got.RatingsAverage)
		require.Len(t, got.Reviews, 1)
		assert.Equal(t, review.Review, got.Reviews[0].Review)
	})

	t.Run("hidden or missing", func(t *testing.T) {
		t.Parallel()

		db, mock := newMock(t)
		s := NewTourStore(db)

		mock.ExpectQuery("SELECT .+ FROM tours").
			WillReturnRows(sqlmock.NewRows(tourRowColumns))

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrTourNotFound)
	})
}

func TestTourStoreList(t *testing.T) {
	t.Parallel()

	t.Run("filtered listing", func(t *testing.T) {
		t.Parallel()

		db, mock := newMock(t)
		s := NewTourStore(db)
		tour := storedTour(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tours`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT .+ FROM tours").
			WillReturnRows(tourRow(tour))

		tours, total, err := s.List(context.Background(), parseOpts(t, "difficulty=easy&sort=price"))
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, tours, 1)
		assert.Equal(t, tour.Slug, tours[0].Slug)
	})

	t.Run("page beyond results", func(t *testing.T) {
		t.Parallel()

		db, mock := newMock(t)
		s := NewTourStore(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tours`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(15))

		_, _, err := s.List(context.Background(), parseOpts(t, "page=3&limit=10"))
		assert.ErrorIs(t, err, store.ErrPageNotFound)
		// No listing query should follow the count.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown filter field", func(t *testing.T) {
		t.Parallel()

		db, _ := newMock(t)
		s := NewTourStore(db)

		_, _, err := s.List(context.Background(), parseOpts(t, "bogus=1"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestTourStoreUpdate(t *testing.T) {
	t.Parallel()

	t.Run("missing tour", func(t *testing.T) {
		t.Parallel()

		db, mock := newMock(t)
		s := NewTourStore(db)

		mock.ExpectExec("UPDATE tours SET").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(context.Background(), storedTour(t)), store.ErrTourNotFound)
	})

	t.Run("renamed to taken name", func(t *testing.T) {
		t.Parallel()

		db, mock := newMock(t)
		s := NewTourStore(db)

		mock.ExpectExec("UPDATE tours SET").
			WillReturnError(pgError(pgerrcode.UniqueViolation))

		assert.ErrorIs(t, s.Update(context.Background(), storedTour(t)), store.ErrTourNameExists)
	})

	t.Run("success rewrites start dates", func(t *testing.T) {
		t.Parallel()

		db, mock := newMock(t)
		s := NewTourStore(db)
		tour := storedTour(t)

		mock.ExpectExec("UPDATE tours SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM tour_start_dates").
			WithArgs(tour.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		before := tour.UpdatedAt
		require.NoError(t, s.Update(context.Background(), tour))
		assert.True(t, tour.UpdatedAt.After(before) || tour.UpdatedAt.Equal(before))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTourStoreDelete(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewTourStore(db)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM tours").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM tours").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.Delete(context.Background(), id))
	assert.ErrorIs(t, s.Delete(context.Background(), uuid.New()), store.ErrTourNotFound)
}

func TestTourStoreUpdateRatings(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewTourStore(db)
	id := uuid.New()

	mock.ExpectExec("UPDATE tours SET ratings_quantity").
		WithArgs(7, 4.3, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.UpdateRatings(context.Background(), id, 7, 4.3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTourStoreStats(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewTourStore(db)

	rows := sqlmock.NewRows([]string{
		"difficulty", "num_tours", "num_ratings", "avg_rating",
		"avg_price", "min_price", "max_price",
	}).
		AddRow("easy", 3, 120, 4.7, 410.5, 297.0, 497.0).
		AddRow("difficult", 1, 40, 4.8, 997.0, 997.0, 997.0)

	mock.ExpectQuery("SELECT difficulty").WillReturnRows(rows)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, domain.DifficultyEasy, stats[0].Difficulty)
	assert.Equal(t, 3, stats[0].NumTours)
	assert.Equal(t, 4.8, stats[1].AvgRating)
}

func TestTourStoreMonthlyPlan(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewTourStore(db)

	rows := sqlmock.NewRows([]string{"month", "num_tour_starts", "tours"}).
		AddRow(7, 3, []byte(`["The Forest Hiker","The Sea Explorer"]`)).
		AddRow(4, 1, []byte(`["The Snow Adventurer"]`))

	mock.ExpectQuery(`EXTRACT\(MONTH FROM`).
		WithArgs(2026).
		WillReturnRows(rows)

	plan, err := s.MonthlyPlan(context.Background(), 2026)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, time.July, plan[0].Month)
	assert.Equal(t, 3, plan[0].NumStarts)
	assert.Equal(t, []string{"The Snow Adventurer"}, plan[1].Tours)
}

func TestTourStoreWithin(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewTourStore(db)
	tour := storedTour(t)

	mock.ExpectQuery("6371").
		WithArgs(34.11, -118.11, 321.868).
		WillReturnRows(tourRow(tour))

	tours, err := s.Within(context.Background(), 34.11, -118.11, 321.868)
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.Equal(t, tour.Name, tours[0].Name)
}

func TestTourStoreDistances(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewTourStore(db)

	near := uuid.New()
	far := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "distance"}).
		AddRow(near, "The Forest Hiker", 12.4).
		AddRow(far, "The Sea Explorer", 584.9)

	mock.ExpectQuery("ORDER BY distance").
		WithArgs(34.11, -118.11).
		WillReturnRows(rows)

	distances, err := s.Distances(context.Background(), 34.11, -118.11)
	require.NoError(t, err)
	require.Len(t, distances, 2)
	assert.Equal(t, near, distances[0].ID)
	assert.InDelta(t, 584.9, distances[1].Distance, 0.001)
}
