package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trekora/trek-api/internal/api/shared"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/query"
	"github.com/trekora/trek-api/internal/store"
)

// kmPerMile converts the mile-based geo parameters to the kilometers
// the store works in.
const kmPerMile = 1.60934

// TourHandler handles the tour CRUD and the read-only aggregates.
type TourHandler struct {
	tours    store.TourStore
	validate *validator.Validate
}

// NewTourHandler creates a TourHandler with the given dependencies.
func NewTourHandler(tours store.TourStore) *TourHandler {
	return &TourHandler{tours: tours, validate: validator.New()}
}

// ListTours handles GET /tours.
func (h *TourHandler) ListTours(w http.ResponseWriter, r *http.Request) {
	listAll(w, r, func(ctx context.Context, opts *query.Options) ([]*domain.Tour, int, error) {
		return h.tours.List(ctx, opts)
	})
}

// TopTours handles GET /tours/top-5-cheap: an alias that presets
// limit, sort and projection before the normal listing.
func (h *TourHandler) TopTours(w http.ResponseWriter, r *http.Request) {
	preset := url.Values{
		"limit":  {"5"},
		"sort":   {"-ratings_average,price"},
		"fields": {"name,price,ratings_average,summary,difficulty"},
	}
	r.URL.RawQuery = preset.Encode()
	h.ListTours(w, r)
}

// GetTour handles GET /tours/{id}; reviews are eagerly expanded.
func (h *TourHandler) GetTour(w http.ResponseWriter, r *http.Request) {
	getOne(w, r, "id", h.tours.GetByID)
}

// CreateTour handles POST /tours.
func (h *TourHandler) CreateTour(w http.ResponseWriter, r *http.Request) {
	var req CreateTourRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	tour, err := domain.NewTour(domain.Tour{
		Name:          req.Name,
		Duration:      req.Duration,
		MaxGroupSize:  req.MaxGroupSize,
		Difficulty:    domain.Difficulty(req.Difficulty),
		Price:         req.Price,
		PriceDiscount: req.PriceDiscount,
		Summary:       req.Summary,
		Description:   req.Description,
		ImageCover:    req.ImageCover,
		Images:        req.Images,
		StartDates:    req.StartDates,
		Secret:        req.Secret,
		StartLocation: domain.Location(req.StartLocation),
	})
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.tours.Create(r.Context(), tour); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, tour)
}

// UpdateTour handles PATCH /tours/{id}: a partial merge-update with
// validation re-run; renaming refreshes the slug.
func (h *TourHandler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req UpdateTourRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	tour, err := h.tours.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if req.Name != nil {
		tour.Name = strings.TrimSpace(*req.Name)
		tour.Slug = domain.Slugify(tour.Name)
	}
	if req.Duration != nil {
		tour.Duration = *req.Duration
	}
	if req.MaxGroupSize != nil {
		tour.MaxGroupSize = *req.MaxGroupSize
	}
	if req.Difficulty != nil {
		tour.Difficulty = domain.Difficulty(*req.Difficulty)
	}
	if req.Price != nil {
		tour.Price = *req.Price
	}
	if req.PriceDiscount != nil {
		tour.PriceDiscount = *req.PriceDiscount
	}
	if req.Summary != nil {
		tour.Summary = *req.Summary
	}
	if req.Description != nil {
		tour.Description = *req.Description
	}
	if req.ImageCover != nil {
		tour.ImageCover = *req.ImageCover
	}
	if req.Images != nil {
		tour.Images = req.Images
	}
	if req.StartDates != nil {
		tour.StartDates = req.StartDates
	}
	if req.Secret != nil {
		tour.Secret = *req.Secret
	}
	if req.StartLocation != nil {
		tour.StartLocation = domain.Location(*req.StartLocation)
	}

	tour.Reviews = nil // not part of the stored record

	if err := tour.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.tours.Update(r.Context(), tour); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, tour)
}

// DeleteTour handles DELETE /tours/{id}.
func (h *TourHandler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	deleteOne(w, r, "id", func(ctx context.Context, id uuid.UUID) error {
		return h.tours.Delete(ctx, id)
	})
}

// TourStats handles GET /tours/tour-stats.
func (h *TourHandler) TourStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tours.Stats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, map[string]any{"stats": stats})
}

// MonthlyPlan handles GET /tours/monthly-plan/{year}.
func (h *TourHandler) MonthlyPlan(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid year: must be a positive integer")
		return
	}

	plan, err := h.tours.MonthlyPlan(r.Context(), year)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, map[string]any{"plan": plan})
}

// ToursWithin handles
// GET /tours/tours-within/{distance}/center/{latlng}/unit/{unit}.
func (h *TourHandler) ToursWithin(w http.ResponseWriter, r *http.Request) {
	distance, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil || distance <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid distance: must be a positive number")
		return
	}

	lat, lng, ok := parseLatLng(chi.URLParam(r, "latlng"))
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Please provide latitude and longitude in the format lat,lng")
		return
	}

	unit := chi.URLParam(r, "unit")
	radiusKm := distance
	switch unit {
	case "km":
	case "mi":
		radiusKm = distance * kmPerMile
	default:
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid unit: use km or mi")
		return
	}

	tours, err := h.tours.Within(r.Context(), lat, lng, radiusKm)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithList(w, r, http.StatusOK, map[string]any{"tours": tours}, len(tours))
}

// TourDistances handles GET /tours/distances/{latlng}/unit/{unit}.
func (h *TourHandler) TourDistances(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseLatLng(chi.URLParam(r, "latlng"))
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Please provide latitude and longitude in the format lat,lng")
		return
	}

	unit := chi.URLParam(r, "unit")
	if unit != "km" && unit != "mi" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid unit: use km or mi")
		return
	}

	distances, err := h.tours.Distances(r.Context(), lat, lng)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if unit == "mi" {
		for i := range distances {
			distances[i].Distance /= kmPerMile
		}
	}

	shared.RespondWithData(w, r, http.StatusOK, map[string]any{"distances": distances})
}

// parseLatLng splits a "lat,lng" path segment into coordinates.
func parseLatLng(raw string) (lat, lng float64, ok bool) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}
	loc := domain.Location{Latitude: lat, Longitude: lng}
	return lat, lng, loc.Valid()
}
