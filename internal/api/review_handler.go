package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trekora/trek-api/internal/api/shared"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/query"
	"github.com/trekora/trek-api/internal/store"
)

// ReviewHandler handles review CRUD, both on the flat /reviews routes
// and nested under a tour.
type ReviewHandler struct {
	reviews  store.ReviewStore
	validate *validator.Validate
}

// NewReviewHandler creates a ReviewHandler with the given dependencies.
func NewReviewHandler(reviews store.ReviewStore) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, validate: validator.New()}
}

// ListReviews handles GET /reviews and GET /tours/{tourId}/reviews.
// On the nested route the listing is scoped to that tour.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	var tourID *uuid.UUID
	if raw := chi.URLParam(r, "tourId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("tourId", "has invalid format", domain.ErrInvalidID))
			return
		}
		tourID = &id
	}

	opts, err := query.Parse(r.URL.Query())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	reviews, _, err := h.reviews.List(r.Context(), opts, tourID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithList(w, r, http.StatusOK, shapeAll(reviews, opts.Fields), len(reviews))
}

// GetReview handles GET /reviews/{id}.
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	getOne(w, r, "id", h.reviews.GetByID)
}

// CreateReview handles POST /reviews and POST /tours/{tourId}/reviews.
// The author is always the authenticated user; on the nested route the
// tour comes from the path and overrides any body value.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.Principal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "You are not logged in. Please log in to get access.")
		return
	}

	var req CreateReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	tourID := req.TourID
	if raw := chi.URLParam(r, "tourId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("tourId", "has invalid format", domain.ErrInvalidID))
			return
		}
		tourID = id
	}
	if tourID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Review must belong to a tour")
		return
	}

	review, err := domain.NewReview(req.Review, req.Rating, tourID, user.ID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reviews.Create(r.Context(), review); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, review)
}

// UpdateReview handles PATCH /reviews/{id}. Only the review text and
// rating can change; a non-admin may only touch their own review.
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req UpdateReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	review, err := h.fetchOwned(w, r, id)
	if err != nil {
		return
	}

	if req.Review != nil {
		review.Review = *req.Review
	}
	if req.Rating != nil {
		review.Rating = *req.Rating
	}

	if err := review.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reviews.Update(r.Context(), review); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, review)
}

// DeleteReview handles DELETE /reviews/{id}, with the same ownership
// rule as updates.
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if _, err := h.fetchOwned(w, r, id); err != nil {
		return
	}

	if err := h.reviews.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondNoContent(w)
}

// fetchOwned loads a review and enforces that the caller is its author
// or an admin. On failure the response has already been written.
func (h *ReviewHandler) fetchOwned(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*domain.Review, error) {
	review, err := h.reviews.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return nil, err
	}

	user, ok := shared.Principal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "You are not logged in. Please log in to get access.")
		return nil, domain.ErrUnauthorized
	}
	if user.Role != domain.RoleAdmin && review.UserID != user.ID {
		HandleAPIError(w, r, domain.ErrUnauthorized)
		return nil, domain.ErrUnauthorized
	}

	return review, nil
}
