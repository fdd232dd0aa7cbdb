package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trekora/trek-api/internal/api/shared"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/mocks"
)

func seedReview(t *testing.T, reviews *mocks.MockReviewStore, tourID, userID uuid.UUID) *domain.Review {
	t.Helper()
	review, err := domain.NewReview("Loved every minute.", 5, tourID, userID)
	require.NoError(t, err)
	reviews.Reviews[review.ID] = review
	return review
}

func reviewRequest(t *testing.T, method, target string, payload any, principal *domain.User, params map[string]string) *http.Request {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	if principal != nil {
		req = req.WithContext(shared.WithPrincipal(req.Context(), principal))
	}
	if params != nil {
		req = withURLParams(req, params)
	}
	return req
}

func TestCreateReview(t *testing.T) {
	t.Parallel()

	tourID := uuid.New()

	t.Run("tour from body", func(t *testing.T) {
		t.Parallel()

		users := mocks.NewMockUserStore()
		user := seedUser(t, users)
		reviews := mocks.NewMockReviewStore()
		handler := NewReviewHandler(reviews)

		rec := httptest.NewRecorder()
		handler.CreateReview(rec, reviewRequest(t, "POST", "/api/v1/reviews", map[string]any{
			"review":  "Fantastic trip",
			"rating":  5,
			"tour_id": tourID,
		}, user, nil))

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, reviews.Reviews, 1)
		for _, created := range reviews.Reviews {
			assert.Equal(t, user.ID, created.UserID)
			assert.Equal(t, tourID, created.TourID)
		}
	})

	t.Run("nested route path overrides body", func(t *testing.T) {
		t.Parallel()

		users := mocks.NewMockUserStore()
		user := seedUser(t, users)
		reviews := mocks.NewMockReviewStore()
		handler := NewReviewHandler(reviews)

		pathTour := uuid.New()
		rec := httptest.NewRecorder()
		handler.CreateReview(rec, reviewRequest(t, "POST", "/api/v1/tours/x/reviews", map[string]any{
			"review":  "Fantastic trip",
			"rating":  4,
			"tour_id": tourID,
		}, user, map[string]string{"tourId": pathTour.String()}))

		require.Equal(t, http.StatusCreated, rec.Code)
		for _, created := range reviews.Reviews {
			assert.Equal(t, pathTour, created.TourID)
		}
	})

	t.Run("missing tour", func(t *testing.T) {
		t.Parallel()

		users := mocks.NewMockUserStore()
		user := seedUser(t, users)
		handler := NewReviewHandler(mocks.NewMockReviewStore())

		rec := httptest.NewRecorder()
		handler.CreateReview(rec, reviewRequest(t, "POST", "/api/v1/reviews", map[string]any{
			"review": "Fantastic trip",
			"rating": 4,
		}, user, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate review", func(t *testing.T) {
		t.Parallel()

		users := mocks.NewMockUserStore()
		user := seedUser(t, users)
		reviews := mocks.NewMockReviewStore()
		seedReview(t, reviews, tourID, user.ID)
		handler := NewReviewHandler(reviews)

		rec := httptest.NewRecorder()
		handler.CreateReview(rec, reviewRequest(t, "POST", "/api/v1/reviews", map[string]any{
			"review":  "Trying again",
			"rating":  3,
			"tour_id": tourID,
		}, user, nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(mocks.NewMockReviewStore())

		rec := httptest.NewRecorder()
		handler.CreateReview(rec, reviewRequest(t, "POST", "/api/v1/reviews", map[string]any{
			"review":  "Fantastic trip",
			"rating":  5,
			"tour_id": tourID,
		}, nil, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestListReviewsNested(t *testing.T) {
	t.Parallel()

	tourID := uuid.New()
	reviews := mocks.NewMockReviewStore()
	seedReview(t, reviews, tourID, uuid.New())
	seedReview(t, reviews, uuid.New(), uuid.New())
	handler := NewReviewHandler(reviews)

	rec := httptest.NewRecorder()
	handler.ListReviews(rec, reviewRequest(t, "GET", "/api/v1/tours/x/reviews", nil, nil,
		map[string]string{"tourId": tourID.String()}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":1`)
}

func TestUpdateReviewOwnership(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		callerRole domain.Role
		owner      bool
		wantStatus int
	}{
		{name: "author may edit", callerRole: domain.RoleUser, owner: true, wantStatus: http.StatusOK},
		{name: "admin may edit", callerRole: domain.RoleAdmin, owner: false, wantStatus: http.StatusOK},
		{name: "stranger may not edit", callerRole: domain.RoleUser, owner: false, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			users := mocks.NewMockUserStore()
			caller := seedUser(t, users)
			caller.Role = tt.callerRole

			authorID := uuid.New()
			if tt.owner {
				authorID = caller.ID
			}

			reviews := mocks.NewMockReviewStore()
			review := seedReview(t, reviews, uuid.New(), authorID)
			handler := NewReviewHandler(reviews)

			rec := httptest.NewRecorder()
			handler.UpdateReview(rec, reviewRequest(t, "PATCH", "/api/v1/reviews/"+review.ID.String(),
				map[string]any{"rating": 2},
				caller, map[string]string{"id": review.ID.String()}))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, 2.0, review.Rating)
			} else {
				assert.Equal(t, 5.0, review.Rating)
			}
		})
	}
}

func TestDeleteReviewOwnership(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	caller := seedUser(t, users)

	reviews := mocks.NewMockReviewStore()
	review := seedReview(t, reviews, uuid.New(), uuid.New())
	handler := NewReviewHandler(reviews)

	rec := httptest.NewRecorder()
	handler.DeleteReview(rec, reviewRequest(t, "DELETE", "/api/v1/reviews/"+review.ID.String(),
		nil, caller, map[string]string{"id": review.ID.String()}))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, reviews.Reviews, 1)

	// The author can delete their own review.
	review.UserID = caller.ID
	rec = httptest.NewRecorder()
	handler.DeleteReview(rec, reviewRequest(t, "DELETE", "/api/v1/reviews/"+review.ID.String(),
		nil, caller, map[string]string{"id": review.ID.String()}))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, reviews.Reviews)
}
